// Package config loads the ragchat configuration.
//
// A configuration file is TOML or YAML, picked by extension:
//
//	cfg, err := config.Load("ragchat.toml")
//
// Values are layered: built-in defaults, then the file, then RAGCHAT_*
// environment variables. LoadDotEnv fills the environment from .env files
// first, so keys can live outside the config file. Schema describes the file
// format for editors and validation tools.
package config
