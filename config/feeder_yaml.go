// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YamlFeeder feeds using a YAML file.
type YamlFeeder struct {
	File string
}

func (yf YamlFeeder) Feed(cfg *KMake) error {
	file, err := os.Open(filepath.Clean(yf.File))
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("cannot open yaml file: %w", err)
	}

	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("cannot feed config file %s: %w", yf.File, err)
	}

	return nil
}

// Write serializes the configuration into the file.  With merge set, keys
// present in the file but unknown to the configuration are preserved.
func (yf YamlFeeder) Write(cfg *KMake, merge bool) error {
	if len(yf.File) == 0 {
		return fmt.Errorf("filename for YAML cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(yf.File), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	f, err := os.OpenFile(yf.File, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("could not open file: %w", err)
	}

	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	var existing yaml.Node
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return fmt.Errorf("could not unmarshal YAML: %w", err)
	}

	var updated yaml.Node
	if err := updated.Encode(cfg); err != nil {
		return err
	}

	if merge && existing.Kind == yaml.DocumentNode && len(existing.Content) > 0 {
		if root := existing.Content[0]; root.Kind == yaml.MappingNode {
			mergeMapping(root, &updated)
		}
	}

	if err := f.Truncate(0); err != nil {
		return err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)

	if err := enc.Encode(&updated); err != nil {
		return err
	}

	return enc.Close()
}

// mergeMapping copies keys of from which are missing in into, recursing into
// mappings present in both.
func mergeMapping(from, into *yaml.Node) {
	for i := 0; i+1 < len(from.Content); i += 2 {
		key, value := from.Content[i], from.Content[i+1]

		found := false
		for j := 0; j+1 < len(into.Content); j += 2 {
			if into.Content[j].Value != key.Value {
				continue
			}

			found = true
			if value.Kind == yaml.MappingNode && into.Content[j+1].Kind == yaml.MappingNode {
				mergeMapping(value, into.Content[j+1])
			}

			break
		}

		if !found {
			into.Content = append(into.Content, key, value)
		}
	}
}
