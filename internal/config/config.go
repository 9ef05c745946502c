// Package config resolves runtime settings. Sources are layered, later
// ones winning: built-in defaults, a .env file, the process environment,
// then command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/gradebook/internal/persist"
)

// Environment variable names.
const (
	EnvBackend   = "GRADEBOOK_BACKEND"
	EnvDB        = "GRADEBOOK_DB"
	EnvRedisAddr = "GRADEBOOK_REDIS_ADDR"
	EnvRedisKey  = "GRADEBOOK_REDIS_KEY"
	EnvLogLevel  = "GRADEBOOK_LOG_LEVEL"
)

// DefaultEnvFile is read when no env file is named. Its absence is not an
// error.
const DefaultEnvFile = ".env"

// Defaults.
const (
	DefaultSQLitePath = "gradebook.db"
	DefaultFilePath   = "gradebook.json"
	DefaultRedisAddr  = "localhost:6379"
)

// Config holds resolved settings.
type Config struct {
	Backend   persist.Kind
	DBPath    string
	RedisAddr string
	RedisKey  string
	LogLevel  slog.Level
}

// LookupFunc reads one environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load resolves the configuration from envFile and the process
// environment. An empty envFile means DefaultEnvFile, which may be absent;
// a named file must exist. The backend is not checked here since a flag may
// still replace it; see Validate.
func Load(envFile string) (Config, error) {
	return load(envFile, os.LookupEnv)
}

func load(envFile string, lookup LookupFunc) (Config, error) {
	fileVars := map[string]string{}
	name := envFile
	if name == "" {
		name = DefaultEnvFile
	}
	vars, err := godotenv.Read(name)
	switch {
	case err == nil:
		fileVars = vars
	case envFile == "" && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read env file %s: %w", name, err)
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok && v != ""
	}

	cfg := Config{
		Backend:   persist.KindSQLite,
		RedisAddr: DefaultRedisAddr,
		RedisKey:  persist.DefaultRedisKey,
		LogLevel:  slog.LevelWarn,
	}
	if v, ok := get(EnvBackend); ok {
		cfg.Backend = persist.Kind(v)
	}
	if v, ok := get(EnvDB); ok {
		cfg.DBPath = v
	}
	if v, ok := get(EnvRedisAddr); ok {
		cfg.RedisAddr = v
	}
	if v, ok := get(EnvRedisKey); ok {
		cfg.RedisKey = v
	}
	if v, ok := get(EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	return cfg, nil
}

// Validate checks the backend kind. Callers run it once every source,
// flags included, has been applied.
func (c Config) Validate() error {
	for _, k := range persist.Kinds {
		if c.Backend == k {
			return nil
		}
	}
	return fmt.Errorf("unknown backend %q: must be one of %v", c.Backend, persist.Kinds)
}

// PersistOptions converts the configuration into backend options, filling
// in the default path for file-based backends.
func (c Config) PersistOptions() persist.Options {
	path := c.DBPath
	if path == "" {
		switch c.Backend {
		case persist.KindSQLite:
			path = DefaultSQLitePath
		case persist.KindFile:
			path = DefaultFilePath
		}
	}
	return persist.Options{Path: path, RedisAddr: c.RedisAddr, RedisKey: c.RedisKey}
}
