// Package password provides argon2id password hashing with PHC-encoded output.
package password
