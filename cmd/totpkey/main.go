package main

import (
	"fmt"
	"log"

	"github.com/dmitrymomot/credkit/pkg/totp"
)

func main() {
	encodedKey, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encoded encryption key: %v", err)
	}

	fmt.Printf("TOTP_ENCRYPTION_KEY=%s\n", encodedKey)
}
