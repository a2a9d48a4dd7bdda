// Package config loads typed configuration structs from environment
// variables using caarlos0/env tags, reading a .env file once per process.
package config
