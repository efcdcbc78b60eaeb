// Package config loads the library's configuration from YAML files and the
// environment. Viper handles file loading and env binding, godotenv loads
// optional .env files, and the FileSystem seam keeps file lookups testable.
// Loaded settings are defaulted and validated before use.
package config
