// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"kmake.sh/internal/errs"
)

// ConfigManager holds the configuration and the feeders it is populated from.
// Feeders are applied in order, later feeders taking precedence.
type ConfigManager struct {
	Config     *KMake
	ConfigFile string
	Feeders    []Feeder
}

type ConfigManagerOption func(cm *ConfigManager) error

func WithFeeder(feeder Feeder) ConfigManagerOption {
	return func(cm *ConfigManager) error {
		cm.AddFeeder(feeder)
		return nil
	}
}

// WithFile adds a YAML file as a source of configuration.
func WithFile(file string) ConfigManagerOption {
	return func(cm *ConfigManager) error {
		switch ext := strings.ToLower(file[strings.LastIndex(file, ".")+1:]); ext {
		case "yaml", "yml":
			cm.ConfigFile = file
			return WithFeeder(YamlFeeder{File: file})(cm)
		default:
			return fmt.Errorf("unsupported config file extension: %s", file)
		}
	}
}

// WithDefaultConfigFile adds the default configuration file, if it exists,
// followed by the environment.
func WithDefaultConfigFile() ConfigManagerOption {
	return func(cm *ConfigManager) error {
		if err := WithFile(DefaultConfigFile())(cm); err != nil {
			return err
		}

		return WithFeeder(EnvFeeder{})(cm)
	}
}

func NewConfigManager(opts ...ConfigManagerOption) (*ConfigManager, error) {
	c, err := NewDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("could not seed default values for config: %w", err)
	}

	cm := &ConfigManager{Config: c}

	for _, o := range opts {
		if err := o(cm); err != nil {
			return nil, fmt.Errorf("could not apply config manager option: %w", err)
		}
	}

	// Feed the config, pass the manager anyway if this fails, we still have
	// defaults
	if err := cm.Feed(); err != nil {
		return cm, fmt.Errorf("could not feed config: %w", err)
	}

	return cm, nil
}

// AddFeeder adds a feeder that provides configuration data.
func (cm *ConfigManager) AddFeeder(f Feeder) *ConfigManager {
	cm.Feeders = append(cm.Feeders, f)
	return cm
}

// Feed populates the configuration from all feeders.
func (cm *ConfigManager) Feed() error {
	for _, f := range cm.Feeders {
		if err := f.Feed(cm.Config); err != nil {
			return err
		}
	}

	return nil
}

// Write persists the configuration through all feeders.
func (cm *ConfigManager) Write(merge bool) error {
	for _, f := range cm.Feeders {
		if err := f.Write(cm.Config, merge); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the string representation of the value at the dotted key, e.g.
// `cache.max_size`.
func (cm *ConfigManager) Get(key string) (string, error) {
	v, ok := lookupValue(reflect.ValueOf(cm.Config).Elem(), key)
	if !ok {
		return "", fmt.Errorf("unknown configuration key %q: %w", key, errs.ErrNotFound)
	}

	return fmt.Sprint(v.Interface()), nil
}

// Set changes the value at the dotted key.  Values are validated against
// AllowedValues.
func (cm *ConfigManager) Set(key, value string) error {
	v, ok := lookupValue(reflect.ValueOf(cm.Config).Elem(), key)
	if !ok {
		return fmt.Errorf("unknown configuration key %q: %w", key, errs.ErrNotFound)
	}

	if allowed := AllowedValues(key); len(allowed) > 0 {
		valid := false
		for _, a := range allowed {
			if a == value {
				valid = true
				break
			}
		}

		if !valid {
			return fmt.Errorf("%q is not one of %s: %w", value, strings.Join(allowed, ", "), errs.ErrInvalid)
		}
	}

	if err := setScalar(v, value); err != nil {
		return fmt.Errorf("%s: %v: %w", key, err, errs.ErrInvalid)
	}

	return nil
}

// Keys returns all dotted configuration keys in declaration order.
func Keys() []string {
	return collectKeys(reflect.TypeOf(KMake{}), "")
}

func collectKeys(t reflect.Type, prefix string) []string {
	var keys []string

	for i := 0; i < t.NumField(); i++ {
		name := yamlName(t.Field(i))
		if name == "" {
			continue
		}

		if prefix != "" {
			name = prefix + "." + name
		}

		if t.Field(i).Type.Kind() == reflect.Struct {
			keys = append(keys, collectKeys(t.Field(i).Type, name)...)
		} else {
			keys = append(keys, name)
		}
	}

	return keys
}

func yamlName(f reflect.StructField) string {
	name := strings.Split(f.Tag.Get("yaml"), ",")[0]
	if name == "-" {
		return ""
	}

	return name
}

func lookupField(v reflect.Value, key string) (reflect.StructField, bool) {
	parts := strings.SplitN(key, ".", 2)

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if yamlName(field) != parts[0] {
			continue
		}

		if len(parts) == 1 {
			return field, v.Field(i).Kind() != reflect.Struct
		}

		if v.Field(i).Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}

		return lookupField(v.Field(i), parts[1])
	}

	return reflect.StructField{}, false
}

func lookupValue(v reflect.Value, key string) (reflect.Value, bool) {
	parts := strings.SplitN(key, ".", 2)

	for i := 0; i < v.NumField(); i++ {
		if yamlName(v.Type().Field(i)) != parts[0] {
			continue
		}

		if len(parts) == 1 {
			return v.Field(i), v.Field(i).Kind() != reflect.Struct
		}

		if v.Field(i).Kind() != reflect.Struct {
			return reflect.Value{}, false
		}

		return lookupValue(v.Field(i), parts[1])
	}

	return reflect.Value{}, false
}
