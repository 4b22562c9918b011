// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package container

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/containerd/errdefs"
	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"

	"kmake.sh/log"
)

// ImageInfo summarizes a locally present image.
type ImageInfo struct {
	ID           string
	Tags         []string
	Architecture string
	OS           string
	Size         int64
	Created      time.Time
}

// NormalizeReference returns the fully qualified form of an image reference,
// adding the default registry and the `latest` tag where missing.
func NormalizeReference(ref string) (reference.Named, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", ref, err)
	}

	return reference.TagNameOnly(named), nil
}

// ImageExists returns true if the image is present in the local image store.
func (d *Docker) ImageExists(ctx context.Context, ref string) (bool, error) {
	if _, err := d.client.ImageInspect(ctx, ref); err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("could not inspect image %s: %w", ref, err)
	}

	return true, nil
}

// Inspect returns information about a locally present image.
func (d *Docker) Inspect(ctx context.Context, ref string) (*ImageInfo, error) {
	resp, err := d.client.ImageInspect(ctx, ref)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", ref, ErrImageNotFound)
		}

		return nil, fmt.Errorf("could not inspect image %s: %w", ref, err)
	}

	info := &ImageInfo{
		ID:           resp.ID,
		Tags:         resp.RepoTags,
		Architecture: resp.Architecture,
		OS:           resp.Os,
		Size:         resp.Size,
	}

	if created, err := time.Parse(time.RFC3339Nano, resp.Created); err == nil {
		info.Created = created
	}

	return info, nil
}

// ProgressOutput is where image build and pull progress is rendered.
type ProgressOutput struct {
	Out        io.Writer
	Fd         uintptr
	IsTerminal bool
}

func (p ProgressOutput) display(in io.Reader) error {
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	return jsonmessage.DisplayJSONMessagesStream(in, out, p.Fd, p.IsTerminal, nil)
}

// BuildSpec describes an image build.
type BuildSpec struct {
	// ContextDir is the build context sent to the daemon.
	ContextDir string

	// Dockerfile is relative to ContextDir.
	Dockerfile string

	Tags      []string
	BuildArgs map[string]*string
	Platform  string
	NoCache   bool
	Pull      bool

	Progress ProgressOutput
}

// Build builds an image from the provided context.
func (d *Docker) Build(ctx context.Context, spec BuildSpec) error {
	if spec.Dockerfile == "" {
		spec.Dockerfile = DockerfileName
	}

	contextDir, err := filepath.Abs(spec.ContextDir)
	if err != nil {
		return err
	}

	tarball, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("could not archive build context: %w", err)
	}

	defer tarball.Close()

	log.G(ctx).
		WithField("context", contextDir).
		WithField("tags", spec.Tags).
		Debug("building image")

	resp, err := d.client.ImageBuild(ctx, tarball, build.ImageBuildOptions{
		Tags:        spec.Tags,
		Dockerfile:  spec.Dockerfile,
		BuildArgs:   spec.BuildArgs,
		Platform:    spec.Platform,
		NoCache:     spec.NoCache,
		PullParent:  spec.Pull,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return fmt.Errorf("could not build image: %w", err)
	}

	defer resp.Body.Close()

	return spec.Progress.display(resp.Body)
}

// Pull pulls an image, authenticating with the credentials stored by the
// Docker CLI for the image's registry.
func (d *Docker) Pull(ctx context.Context, ref string, platform string, progress ProgressOutput) error {
	named, err := NormalizeReference(ref)
	if err != nil {
		return err
	}

	auth, err := RegistryAuth(named)
	if err != nil {
		log.G(ctx).
			WithError(err).
			Debug("could not load registry credentials, pulling anonymously")
	}

	body, err := d.client.ImagePull(ctx, named.String(), image.PullOptions{
		RegistryAuth: auth,
		Platform:     platform,
	})
	if err != nil {
		return fmt.Errorf("could not pull image %s: %w", reference.FamiliarString(named), err)
	}

	defer body.Close()

	return progress.display(body)
}
