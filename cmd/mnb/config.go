package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultDBPath = "mnb-state.db"

// GetConfigString returns the value for key from flag, MNB_* env or config
// file, in that order, or defaultValue when none is set
func GetConfigString(key string, defaultValue string) string {
	val := strings.TrimSpace(viper.GetString(key))
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

// GetConfigPath is GetConfigString for file paths. A leading ~/ expands to
// the home directory.
func GetConfigPath(key string, defaultValue string) string {
	p := GetConfigString(key, defaultValue)
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}
