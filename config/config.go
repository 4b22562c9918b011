// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

// KMake is the configuration of the kmake CLI.  Every attribute can be set in
// the configuration file (`yaml` tag), through the environment (`env` tag) or,
// when it has a `long` tag, as a global command-line flag.
type KMake struct {
	DefaultArch string `yaml:"default_arch" env:"KMAKE_DEFAULT_ARCH" long:"default-arch" usage:"Architecture to build for when none is specified" default:"arm64"`
	Image       string `yaml:"image" env:"KMAKE_IMAGE" long:"image" usage:"Toolchain container image" default:"kmake:latest"`
	Runtime     string `yaml:"runtime" env:"KMAKE_RUNTIME" long:"runtime" usage:"Where to run the build (docker, local)" default:"docker"`
	Workdir     string `yaml:"workdir" env:"KMAKE_WORKDIR" long:"workdir" usage:"Mount target of the source directory inside the container" default:"/src"`
	MakeFlags   string `yaml:"make_flags,omitempty" env:"KMAKE_MAKEFLAGS" long:"make-flags" usage:"Arguments prepended to every make invocation"`
	CPUs        string `yaml:"cpus" env:"KMAKE_CPUS" long:"cpus" usage:"Number of CPUs available to the container (0 for unlimited)" default:"0"`
	Memory      string `yaml:"memory,omitempty" env:"KMAKE_MEMORY" long:"memory" usage:"Memory limit of the container, e.g. 8GiB"`
	NoPrompt    bool   `yaml:"no_prompt" env:"KMAKE_NO_PROMPT" long:"no-prompt" usage:"Do not attach an interactive terminal" default:"false"`

	Cache struct {
		Disabled      bool   `yaml:"disabled" env:"KMAKE_CACHE_DISABLED" long:"no-cache" usage:"Disable the compiler cache"`
		Dir           string `yaml:"dir" env:"KMAKE_CACHE_DIR" long:"cache-dir" usage:"Directory of the compiler cache, relative to the source tree" default:".ccache"`
		MaxSize       string `yaml:"max_size" env:"KMAKE_CACHE_MAX_SIZE" long:"cache-max-size" usage:"Maximum size of the compiler cache" default:"20G"`
		CompressLevel int    `yaml:"compress_level" env:"KMAKE_CACHE_COMPRESS_LEVEL" usage:"Compression level of the compiler cache (0 disables)" default:"1" noattribute:"true"`
	} `yaml:"cache"`

	Log struct {
		Level      string `yaml:"level" env:"KMAKE_LOG_LEVEL" long:"log-level" usage:"Log level verbosity" default:"info"`
		Timestamps bool   `yaml:"timestamps" env:"KMAKE_LOG_TIMESTAMPS" long:"log-timestamps" usage:"Enable log timestamps"`
		Type       string `yaml:"type" env:"KMAKE_LOG_TYPE" long:"log-type" usage:"Log type" default:"fancy"`
	} `yaml:"log"`
}

const (
	RuntimeDocker = "docker"
	RuntimeLocal  = "local"
)

type ConfigDetail struct {
	Key           string
	Description   string
	AllowedValues []string
}

// Descriptions of each configuration parameter as well as valid values
var configDetails = []ConfigDetail{
	{
		Key:           "default_arch",
		Description:   "the architecture to build for when none is given",
		AllowedValues: []string{"x86_64", "arm64", "arm", "riscv"},
	},
	{
		Key:         "image",
		Description: "the toolchain container image",
	},
	{
		Key:           "runtime",
		Description:   "where builds are executed",
		AllowedValues: []string{RuntimeDocker, RuntimeLocal},
	},
	{
		Key:         "workdir",
		Description: "the mount target of the source tree inside the container",
	},
	{
		Key:         "make_flags",
		Description: "arguments prepended to every make invocation",
	},
	{
		Key:         "cpus",
		Description: "number of CPUs available to the container",
	},
	{
		Key:         "memory",
		Description: "memory limit of the container",
	},
	{
		Key:         "no_prompt",
		Description: "never attach an interactive terminal",
	},
	{
		Key:         "cache.disabled",
		Description: "disable the compiler cache",
	},
	{
		Key:         "cache.dir",
		Description: "directory of the compiler cache, relative to the source tree",
	},
	{
		Key:         "cache.max_size",
		Description: "maximum size of the compiler cache",
	},
	{
		Key:         "cache.compress_level",
		Description: "compression level of the compiler cache",
	},
	{
		Key:         "log.level",
		Description: "Set the logging verbosity",
		AllowedValues: []string{
			"fatal",
			"error",
			"warn",
			"info",
			"debug",
			"trace",
		},
	},
	{
		Key:         "log.type",
		Description: "Set the logging output type",
		AllowedValues: []string{
			"quiet",
			"basic",
			"fancy",
			"json",
		},
	},
	{
		Key:         "log.timestamps",
		Description: "Show timestamps with log output",
	},
}

func ConfigDetails() []ConfigDetail {
	return configDetails
}

// AllowedValues returns the values accepted for the key, or an empty list if
// any value is accepted.
func AllowedValues(key string) []string {
	for _, details := range ConfigDetails() {
		if details.Key == key {
			return details.AllowedValues
		}
	}

	return []string{}
}
