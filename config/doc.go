// Package config loads client configuration from YAML files, .env files
// and environment variables.
//
//	var cfg bridge.Config
//	err := config.Load("syncreq", &cfg, config.WithConfigFile("client.yml"))
//
// Environment variables override file values. TRANSPORT_BASE_URL sets
// transport.base_url; with WithEnvPrefix("SYNCREQ") only SYNCREQ_* variables
// are read and the prefix is stripped. After unmarshalling, Load calls
// ApplyDefaults and Validate when the target implements them.
package config
