// Package config loads settings from flags, CAISSA_* environment variables
// and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug              = "debug"
	ConfigConfigFile         = "config-file"
	ConfigMaxDepth           = "max-depth"
	ConfigMaxQuiescencePlies = "max-quiescence-plies"
	ConfigTimeFraction       = "time-fraction"
	ConfigPhaseFloor         = "phase-floor"
	ConfigCacheSizeLog2      = "cache-size-log2"
	ConfigCacheMemFraction   = "cache-memory-fraction"
	ConfigCacheScope         = "cache-scope"
	ConfigBlend              = "blend"
	ConfigEvalTables         = "eval-tables"
	ConfigCPUProfile         = "cpu-profile"
	ConfigMemProfile         = "mem-profile"

	ConfigSelfplayGames        = "selfplay-games"
	ConfigSelfplayThreads      = "selfplay-threads"
	ConfigSelfplayGameTime     = "selfplay-game-time"
	ConfigSelfplayOpeningPlies = "selfplay-opening-plies"
	ConfigSelfplayMaxPlies     = "selfplay-max-plies"
	ConfigSelfplayDB           = "selfplay-db"
	ConfigSelfplayP1Depth      = "selfplay-p1-depth"
	ConfigSelfplayP2Depth      = "selfplay-p2-depth"
	ConfigSelfplayP1Blend      = "selfplay-p1-blend"
	ConfigSelfplayP2Blend      = "selfplay-p2-blend"
)

const (
	CacheScopeGame = "game"
	CacheScopeTurn = "turn"
)

type Config struct {
	*viper.Viper
	// args are the positional arguments left after flag parsing.
	args []string
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("caissa", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigConfigFile, "", "optional config file (yaml, toml, json)")
	fs.Int(ConfigMaxDepth, 20, "maximum iterative deepening depth")
	fs.Int(ConfigMaxQuiescencePlies, 16, "quiescence lines longer than this are cut off")
	fs.Float64(ConfigTimeFraction, 0.25, "share of the remaining clock a move may use")
	fs.Float64(ConfigPhaseFloor, 0.25, "added to endgame progression when scaling the time share")
	fs.Int(ConfigCacheSizeLog2, 20, "score cache buckets as a power of 2; 0 sizes by memory")
	fs.Float64(ConfigCacheMemFraction, 0.05, "score cache size as a fraction of system memory")
	fs.String(ConfigCacheScope, CacheScopeGame, "keep cached scores for the whole game or one turn (game, turn)")
	fs.String(ConfigBlend, "convex", "piece-square blend (convex, literal)")
	fs.String(ConfigEvalTables, "", "yaml file overriding evaluation tables")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")

	fs.Int(ConfigSelfplayGames, 100, "self-play games to run")
	fs.Int(ConfigSelfplayThreads, 4, "self-play games run in parallel")
	fs.Duration(ConfigSelfplayGameTime, time.Minute, "clock per player per game")
	fs.Int(ConfigSelfplayOpeningPlies, 4, "random plies played before the engines take over")
	fs.Int(ConfigSelfplayMaxPlies, 300, "games longer than this are adjudicated drawn")
	fs.String(ConfigSelfplayDB, "", "sqlite file for self-play results")
	fs.Int(ConfigSelfplayP1Depth, 3, "first player's maximum depth")
	fs.Int(ConfigSelfplayP2Depth, 3, "second player's maximum depth")
	fs.String(ConfigSelfplayP1Blend, "convex", "first player's piece-square blend")
	fs.String(ConfigSelfplayP2Blend, "literal", "second player's piece-square blend")
	return fs
}

// Load parses args (without the program name) into c.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix("caissa")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if path := c.GetString(ConfigConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return c.validate()
}

func (c *Config) validate() error {
	if d := c.GetInt(ConfigMaxDepth); d < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", ConfigMaxDepth, d)
	}
	switch s := c.GetString(ConfigCacheScope); s {
	case CacheScopeGame, CacheScopeTurn:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", ConfigCacheScope,
			CacheScopeGame, CacheScopeTurn, s)
	}
	if f := c.GetFloat64(ConfigTimeFraction); f <= 0 {
		return fmt.Errorf("%s must be positive, got %v", ConfigTimeFraction, f)
	}
	return nil
}

// DefaultConfig returns the flag defaults without looking at the
// environment.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	fs := flagSet()
	fs.VisitAll(func(f *pflag.Flag) {
		c.SetDefault(f.Name, f.Value.String())
	})
	return c
}

// Clone copies the current settings into an independent Config.
func (c *Config) Clone() *Config {
	n := DefaultConfig()
	for k, v := range c.AllSettings() {
		n.Set(k, v)
	}
	n.args = c.args
	return n
}

// Args returns the positional arguments Load did not consume as flags.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings is safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
