package app

import "os"

// DefaultConfigPath is the system-wide config location.
const DefaultConfigPath = "/etc/morph-bang.toml"

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - MORPHBANG_CONFIG_PATH: config file location (default: /etc/morph-bang.toml)
//   - MORPHBANG_LOG_DIR: overrides log_dir from the config file
func GetDefaults() map[string]string {
	defaults := map[string]string{
		"config_path": DefaultConfigPath,
	}
	if path := os.Getenv("MORPHBANG_CONFIG_PATH"); path != "" {
		defaults["config_path"] = path
	}
	if dir := os.Getenv("MORPHBANG_LOG_DIR"); dir != "" {
		defaults["log_dir"] = dir
	}
	return defaults
}
