package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// loadConfig binds environment variables (RAGPIPE_ prefix) and an
// optional config file into a single viper instance. Command-line flags
// are not bound into it; each subcommand reads its own flags directly.
func loadConfig(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("RAGPIPE")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ragpipe: failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}
