// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

// Feeder is a source of configuration.
type Feeder interface {
	// Feed populates the provided *KMake.
	Feed(cfg *KMake) error

	// Write persists the provided configuration, merging it with what the
	// source already holds when merge is set.
	Write(cfg *KMake, merge bool) error
}
