// Package config handles application configuration loading and validation.
//
// Built-in defaults cover every setting; an optional YAML file (MVG_CONFIG,
// else ~/.config/mvg/config.yml), a .env file, and environment variables
// override them in that order. The merged result is validated using struct
// tags.
package config
