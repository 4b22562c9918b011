// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cmdfactory

import (
	"fmt"
	"strings"
)

// EnumFlag is a pflag.Value which only accepts one of a fixed set of values.
type EnumFlag[T fmt.Stringer] struct {
	Allowed []T
	Value   T
}

// NewEnumFlag give a list of allowed flag parameters, where the second argument
// is the default
func NewEnumFlag[T fmt.Stringer](allowed []T, d T) *EnumFlag[T] {
	return &EnumFlag[T]{
		Allowed: allowed,
		Value:   d,
	}
}

// Names returns the string form of every allowed value.
func (a *EnumFlag[T]) Names() []string {
	names := make([]string, len(a.Allowed))
	for i := range a.Allowed {
		names[i] = a.Allowed[i].String()
	}
	return names
}

func (a *EnumFlag[T]) String() string {
	return a.Value.String()
}

func (a *EnumFlag[T]) Set(p string) error {
	for _, opt := range a.Allowed {
		if opt.String() == p {
			a.Value = opt
			return nil
		}
	}

	return fmt.Errorf("%s is not included in: %s", p, strings.Join(a.Names(), ", "))
}

func (a *EnumFlag[T]) Type() string {
	return "string"
}
