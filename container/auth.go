// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package container

import (
	"fmt"

	"github.com/distribution/reference"
	cliconfig "github.com/docker/cli/cli/config"
	"github.com/docker/cli/cli/config/configfile"
	"github.com/docker/docker/api/types/registry"
)

const dockerHubAuthKey = "https://index.docker.io/v1/"

func defaultConfigLoader() (*configfile.ConfigFile, error) {
	return cliconfig.Load(cliconfig.Dir())
}

var configLoader = defaultConfigLoader

// RegistryAuth returns the encoded credentials for the registry hosting the
// image, or an empty string when there are none.
func RegistryAuth(named reference.Named) (string, error) {
	cf, err := configLoader()
	if err != nil {
		return "", fmt.Errorf("could not load docker config: %w", err)
	}

	key := reference.Domain(named)
	if key == "docker.io" {
		key = dockerHubAuthKey
	}

	creds, err := cf.GetAuthConfig(key)
	if err != nil {
		return "", fmt.Errorf("could not get credentials for %s: %w", key, err)
	}

	if creds.Username == "" && creds.Password == "" && creds.IdentityToken == "" && creds.RegistryToken == "" {
		return "", nil
	}

	return registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: creds.ServerAddress,
		IdentityToken: creds.IdentityToken,
		RegistryToken: creds.RegistryToken,
	})
}
