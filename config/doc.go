// Package config provides configuration loading and validation for
// streamkit applications.
//
// It uses Viper to load configuration from YAML files and environment
// variables, with .env file support via godotenv. Environment variables
// override file values using the STREAMKIT_ prefix with underscore-separated
// paths (e.g. STREAMKIT_SCHEDULER_WORKERS).
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    ...
//	}
//	cfg.Apply()
package config
