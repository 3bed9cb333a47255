// Package config loads application configuration from the environment
// (with optional .env file pickup) and validates it at startup.
package config
