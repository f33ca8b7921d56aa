// Package config loads the storage core's configuration. The node this
// core is embedded in may have many configuration groups (network,
// database, rpc); this package keeps only the two the core itself
// consults, following the teacher's groups.go layout but backed by
// spf13/viper instead of a hand-rolled TOML reader.
package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved, immutable configuration snapshot the storage
// core is constructed with.
type Config struct {
	Logger  loggerConfiguration
	Storage storageConfiguration
}

const (
	defaultMaxGCRounds        = 100
	defaultLivenessLowerBound = 10 * time.Second
	defaultLivenessUpperBound = 10 * time.Second
)

var (
	once    sync.Once
	current Config
)

// Get returns the process-wide configuration singleton, loading defaults
// on first use. Mirrors the node's config.Get() convention.
func Get() Config {
	once.Do(func() {
		current = defaults()
	})
	return current
}

// Load reads configuration from the given file (if non-empty) layered
// over the defaults, and installs it as the process-wide singleton. It
// is the caller's responsibility to invoke Load before the first Get if
// a non-default configuration is required.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("storage.maxgcrounds", defaultMaxGCRounds)
	v.SetDefault("storage.livenesslowerbound", defaultLivenessLowerBound)
	v.SetDefault("storage.livenessupperbound", defaultLivenessUpperBound)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output", "stdout")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Logger: loggerConfiguration{
			Level:  v.GetString("logger.level"),
			Output: v.GetString("logger.output"),
		},
		Storage: storageConfiguration{
			MaxGCRounds:        v.GetUint64("storage.maxgcrounds"),
			LivenessLowerBound: v.GetDuration("storage.livenesslowerbound"),
			LivenessUpperBound: v.GetDuration("storage.livenessupperbound"),
		},
	}
	// Mark the singleton as initialized so a later Get does not replace
	// the loaded configuration with the defaults.
	once.Do(func() {})
	current = cfg
	return cfg, nil
}

func defaults() Config {
	return Config{
		Logger: loggerConfiguration{Level: "info", Output: "stdout"},
		Storage: storageConfiguration{
			MaxGCRounds:        defaultMaxGCRounds,
			LivenessLowerBound: defaultLivenessLowerBound,
			LivenessUpperBound: defaultLivenessUpperBound,
		},
	}
}
