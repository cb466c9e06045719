package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
)

// ResolvePath expands environment variables in file and, when the result is
// relative, joins it onto base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory of the main config file path.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// LoadFile loads a configuration file into T with go-zero's conf loader.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Section is a config block that lives in its own file, referenced from the
// main config by a path relative to it.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads File through loader and stores the result in Value. An empty
// File is a no-op.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// ExpandAndOverride returns the value of envKey when it is set, otherwise
// current with ${VAR} references expanded.
func ExpandAndOverride(current, envKey string) string {
	if v, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return os.ExpandEnv(current)
}

// EnvInt reads an integer from envKey, keeping current when unset or malformed.
func EnvInt(current int, envKey string) int {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return current
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return current
	}
	return v
}

// EnvDuration reads a Go duration from envKey, keeping current when unset or
// malformed.
func EnvDuration(current time.Duration, envKey string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return current
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return current
	}
	return d
}
