package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetInt(ConfigMaxDepth), 20)
	is.Equal(cfg.GetFloat64(ConfigTimeFraction), 0.25)
	is.Equal(cfg.GetString(ConfigBlend), "convex")
	is.Equal(cfg.GetString(ConfigCacheScope), CacheScopeGame)
	is.Equal(cfg.GetBool(ConfigDebug), false)
	is.Equal(cfg.GetDuration(ConfigSelfplayGameTime), time.Minute)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{"--max-depth", "6", "--blend=literal", "--debug"})
	is.NoErr(err)
	is.Equal(cfg.GetInt(ConfigMaxDepth), 6)
	is.Equal(cfg.GetString(ConfigBlend), "literal")
	is.True(cfg.GetBool(ConfigDebug))
	// untouched flags keep their defaults
	is.Equal(cfg.GetInt(ConfigMaxQuiescencePlies), 16)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("CAISSA_MAX_DEPTH", "9")
	t.Setenv("CAISSA_CACHE_SCOPE", "turn")
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetInt(ConfigMaxDepth), 9)
	is.Equal(cfg.GetString(ConfigCacheScope), CacheScopeTurn)
}

func TestLoadConfigFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "caissa.yaml")
	is.NoErr(os.WriteFile(path, []byte("time-fraction: 0.5\nselfplay-games: 12\n"), 0644))
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--config-file", path}))
	is.Equal(cfg.GetFloat64(ConfigTimeFraction), 0.5)
	is.Equal(cfg.GetInt(ConfigSelfplayGames), 12)
}

func TestValidation(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.True(cfg.Load([]string{"--max-depth", "0"}) != nil)
	is.True(cfg.Load([]string{"--cache-scope", "forever"}) != nil)
	is.True(cfg.Load([]string{"--no-such-flag"}) != nil)
}

func TestPositionalArgs(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--max-depth", "4", "--", "go", "-depth", "3"}))
	is.Equal(cfg.GetInt(ConfigMaxDepth), 4)
	is.Equal(cfg.Args(), []string{"go", "-depth", "3"})
}

func TestClone(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.Set(ConfigMaxDepth, 7)
	c2 := cfg.Clone()
	c2.Set(ConfigBlend, "literal")
	is.Equal(c2.GetInt(ConfigMaxDepth), 7)
	is.Equal(cfg.GetString(ConfigBlend), "convex")
}
