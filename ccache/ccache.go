// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package ccache derives the compiler cache settings handed to the build
// environment and the commands used to inspect and reset the cache.
package ccache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	EnvDir           = "CCACHE_DIR"
	EnvMaxSize       = "CCACHE_MAXSIZE"
	EnvCompress      = "CCACHE_COMPRESS"
	EnvCompressLevel = "CCACHE_COMPRESSLEVEL"

	// Binary is the name of the ccache program.
	Binary = "ccache"

	DefaultMaxSize       = "20G"
	DefaultCompressLevel = 1
)

// ErrInvalidSize is returned when a cache size cannot be parsed.
var ErrInvalidSize = errors.New("invalid cache size")

// Cache describes the compiler cache of a build.
type Cache struct {
	dir           string
	maxSize       string
	compressLevel int
	disabled      bool
}

// CacheOption is a function that modifies a Cache.
type CacheOption func(*Cache) error

// WithDir sets the directory holding the cache as seen by the compiler.
func WithDir(dir string) CacheOption {
	return func(c *Cache) error {
		c.dir = dir
		return nil
	}
}

// WithMaxSize sets the maximum size of the cache, e.g. "20G" or "512MiB".
func WithMaxSize(size string) CacheOption {
	return func(c *Cache) error {
		if _, err := ParseSize(size); err != nil {
			return err
		}

		c.maxSize = size
		return nil
	}
}

// WithCompressLevel sets the compression level.  Zero disables compression.
func WithCompressLevel(level int) CacheOption {
	return func(c *Cache) error {
		if level < 0 || level > 19 {
			return fmt.Errorf("compression level must be between 0 and 19: %d", level)
		}

		c.compressLevel = level
		return nil
	}
}

// WithDisabled disables the cache.
func WithDisabled(disabled bool) CacheOption {
	return func(c *Cache) error {
		c.disabled = disabled
		return nil
	}
}

// New returns the cache description with the provided options applied.
func New(opts ...CacheOption) (*Cache, error) {
	c := &Cache{
		maxSize:       DefaultMaxSize,
		compressLevel: DefaultCompressLevel,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Enabled returns true if builds use the cache.
func (c *Cache) Enabled() bool {
	return !c.disabled
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// MaxSize returns the maximum cache size.
func (c *Cache) MaxSize() string {
	return c.maxSize
}

// Env returns the environment passed to ccache.  It is empty when the cache is
// disabled.
func (c *Cache) Env() map[string]string {
	if c.disabled {
		return map[string]string{}
	}

	env := map[string]string{
		EnvMaxSize: c.maxSize,
	}

	if c.dir != "" {
		env[EnvDir] = c.dir
	}

	if c.compressLevel > 0 {
		env[EnvCompress] = "1"
		env[EnvCompressLevel] = strconv.Itoa(c.compressLevel)
	}

	return env
}

// MakeVars returns the make variables which route compilation through the
// cache for the given cross-compiler prefix.
func (c *Cache) MakeVars(crossCompile string) map[string]string {
	if c.disabled {
		return map[string]string{}
	}

	return map[string]string{
		"CC": fmt.Sprintf("%s %sgcc", Binary, crossCompile),
	}
}

// StatsArgv returns the command which reports cache statistics.
func StatsArgv() []string {
	return []string{Binary, "-s"}
}

// ClearArgv returns the command which removes all cached objects.
func ClearArgv() []string {
	return []string{Binary, "-C"}
}

// ZeroArgv returns the command which resets the statistics counters.
func ZeroArgv() []string {
	return []string{Binary, "-z"}
}

// ParseSize parses a human readable size.  A bare number is a number of
// gigabytes, as ccache interprets it.
func ParseSize(size string) (uint64, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSize)
	}

	if _, err := strconv.ParseFloat(size, 64); err == nil {
		size += "G"
	}

	n, err := humanize.ParseBytes(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}

	return n, nil
}
