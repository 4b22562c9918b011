// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"os"
	"reflect"
)

// EnvFeeder feeds using the environment variables named by the `env` tags.
type EnvFeeder struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func (f EnvFeeder) Feed(cfg *KMake) error {
	lookup := f.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return feedEnv(reflect.ValueOf(cfg).Elem(), lookup)
}

func feedEnv(v reflect.Value, lookup func(string) (string, bool)) error {
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)

		if v.Field(i).Kind() == reflect.Struct {
			if err := feedEnv(v.Field(i), lookup); err != nil {
				return err
			}

			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value, ok := lookup(name)
		if !ok {
			continue
		}

		if err := setScalar(v.Field(i), value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// Write does nothing, the environment is never written to.
func (f EnvFeeder) Write(*KMake, bool) error {
	return nil
}
