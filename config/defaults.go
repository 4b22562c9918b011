// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"reflect"
	"strconv"
)

// NewDefaultConfig returns a configuration populated with the values of the
// `default` tags and the default paths.
func NewDefaultConfig() (*KMake, error) {
	c := &KMake{}

	if err := setDefaults(c); err != nil {
		return nil, fmt.Errorf("could not set defaults for config: %w", err)
	}

	return c, nil
}

// Default returns the default value of the key.
func Default(key string) string {
	field, ok := lookupField(reflect.ValueOf(&KMake{}).Elem(), key)
	if !ok {
		return ""
	}

	return field.Tag.Get("default")
}

func setDefaults(s interface{}) error {
	return setDefaultValue(reflect.ValueOf(s), "")
}

func setDefaultValue(v reflect.Value, def string) error {
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("not a pointer value")
	}

	v = reflect.Indirect(v)

	if v.Kind() == reflect.Struct {
		for i := 0; i < v.NumField(); i++ {
			if err := setDefaultValue(
				v.Field(i).Addr(),
				v.Type().Field(i).Tag.Get("default"),
			); err != nil {
				return fmt.Errorf("%s: %w", v.Type().Field(i).Name, err)
			}
		}

		return nil
	}

	if len(def) == 0 {
		return nil
	}

	return setScalar(v, def)
}

// setScalar parses the string representation of a value into v.
func setScalar(v reflect.Value, value string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse integer value: %w", err)
		}
		v.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("could not parse boolean value: %w", err)
		}
		v.SetBool(b)

	default:
		return fmt.Errorf("unsupported type %s", v.Kind())
	}

	return nil
}
