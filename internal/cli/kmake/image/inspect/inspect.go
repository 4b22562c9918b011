// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package inspect

import (
	"context"
	"errors"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/container"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/internal/fancymap"
	"kmake.sh/iostreams"
	"kmake.sh/log"
)

type InspectOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&InspectOptions{}, cobra.Command{
		Short: "Show details of the toolchain image",
		Use:   "inspect [REF]",
		Args:  cmdfactory.MaximumArgs(1, "expected at most one image reference"),
		Long: heredoc.Doc(`
			Show the ID, tags, platform, size and age of a locally present toolchain
			image.  Without a reference the configured image is inspected.
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

// Entries returns the rows shown for an image.
func Entries(info *container.ImageInfo) []fancymap.FancyMapEntry {
	id := strings.TrimPrefix(info.ID, "sha256:")
	if len(id) > 12 {
		id = id[:12]
	}

	tags := strings.Join(info.Tags, ", ")
	if tags == "" {
		tags = "<none>"
	}

	created := "unknown"
	if !info.Created.IsZero() {
		created = humanize.Time(info.Created)
	}

	return []fancymap.FancyMapEntry{
		{Key: "id", Value: id},
		{Key: "tags", Value: tags},
		{Key: "platform", Value: info.OS + "/" + info.Architecture},
		{Key: "size", Value: humanize.Bytes(uint64(max(info.Size, 0)))},
		{Key: "created", Value: created},
	}
}

func (opts *InspectOptions) Run(ctx context.Context, args []string) error {
	ref := config.G(ctx).Image
	if len(args) > 0 && args[0] != "" {
		ref = args[0]
	}

	docker, err := container.NewDocker(ctx)
	if err != nil {
		return err
	}

	defer docker.Close()

	info, err := docker.Inspect(ctx, ref)
	if errors.Is(err, container.ErrImageNotFound) {
		return utils.ImageRemediation(ctx, ref, err)
	} else if err != nil {
		return err
	}

	entries := Entries(info)

	ios := iostreams.G(ctx)
	if !ios.IsStdoutTTY() {
		fields := logrus.Fields{}
		for _, entry := range entries {
			fields[entry.Key] = entry.Value
		}

		log.G(ctx).WithFields(fields).Info(ref)
		return nil
	}

	fancymap.PrintFancyMap(ios.Out, ref, true, entries...)

	return nil
}
