// Package config provides the flat key-value settings source the TLS
// provisioning subsystem is constructed from.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings is an immutable flat key-value view over a viper instance plus an
// optional base directory against which relative file paths are resolved.
// Settings are read once at construction time and never mutated afterwards.
type Settings struct {
	v       *viper.Viper
	baseDir string
}

// Option configures Settings.
type Option func(*Settings)

// WithBaseDir sets the base directory for relative path resolution.
func WithBaseDir(dir string) Option {
	return func(s *Settings) {
		s.baseDir = dir
	}
}

// New creates Settings backed by the given viper instance. A nil viper is
// replaced with an empty one.
func New(v *viper.Viper, opts ...Option) *Settings {
	if v == nil {
		v = viper.New()
	}
	s := &Settings{v: v}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromMap creates Settings from a literal key-value map. Intended for
// tests and embedded use.
func NewFromMap(values map[string]any, opts ...Option) *Settings {
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	return New(v, opts...)
}

// NewFromFile creates Settings by reading a configuration file.
func NewFromFile(path string, opts ...Option) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return New(v, opts...), nil
}

// BaseDir returns the configured base directory, empty if none.
func (s *Settings) BaseDir() string {
	return s.baseDir
}

// String returns the string value for key, or def when the key is unset.
func (s *Settings) String(key, def string) string {
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetString(key)
}

// Bool returns the boolean value for key, or def when the key is unset.
func (s *Settings) Bool(key string, def bool) bool {
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetBool(key)
}

// Strings returns the list value for key, or def when the key is unset.
// A value set to an empty list is returned as-is; the distinction between
// "unset" and "explicitly empty" is load-bearing for construction-time
// validation.
func (s *Settings) Strings(key string, def []string) []string {
	if !s.v.IsSet(key) {
		return def
	}
	raw := s.v.GetStringSlice(key)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsSet reports whether key carries an explicit value.
func (s *Settings) IsSet(key string) bool {
	return s.v.IsSet(key)
}
