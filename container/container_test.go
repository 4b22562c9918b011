// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/cli/cli/config/configfile"
	clitypes "github.com/docker/cli/cli/config/types"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	images map[string]image.InspectResponse

	stdout   string
	stderr   string
	exitCode int64
	waitErr  error

	created     *container.Config
	hostConfig  *container.HostConfig
	name        string
	started     bool
	removed     []string
	attachOpts  container.AttachOptions
	buildOpts   build.ImageBuildOptions
	buildFiles  []string
	pullRef     string
	pullOptions image.PullOptions
}

func (f *fakeClient) ImageInspect(_ context.Context, ref string, _ ...client.ImageInspectOption) (image.InspectResponse, error) {
	resp, ok := f.images[ref]
	if !ok {
		return image.InspectResponse{}, cerrdefs.ErrNotFound
	}

	return resp, nil
}

func (f *fakeClient) ImageBuild(_ context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	f.buildOpts = options

	data, err := io.ReadAll(buildContext)
	if err != nil {
		return build.ImageBuildResponse{}, err
	}

	// The build context is an uncompressed tarball, file names appear verbatim.
	if bytes.Contains(data, []byte(DockerfileName)) {
		f.buildFiles = append(f.buildFiles, DockerfileName)
	}

	return build.ImageBuildResponse{
		Body: io.NopCloser(strings.NewReader(`{"stream":"Step 1/1 : FROM debian\n"}` + "\n")),
	}, nil
}

func (f *fakeClient) ImagePull(_ context.Context, ref string, options image.PullOptions) (io.ReadCloser, error) {
	f.pullRef = ref
	f.pullOptions = options

	return io.NopCloser(strings.NewReader(`{"status":"Pulling from library/kmake"}` + "\n")), nil
}

func (f *fakeClient) ContainerCreate(_ context.Context, config *container.Config, hostConfig *container.HostConfig, _ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	f.created = config
	f.hostConfig = hostConfig
	f.name = name

	return container.CreateResponse{ID: "abc123"}, nil
}

func (f *fakeClient) ContainerAttach(_ context.Context, _ string, options container.AttachOptions) (types.HijackedResponse, error) {
	f.attachOpts = options

	server, conn := net.Pipe()

	go func() {
		defer server.Close()

		if f.created != nil && f.created.Tty {
			_, _ = server.Write([]byte(f.stdout))
			return
		}

		_, _ = stdcopy.NewStdWriter(server, stdcopy.Stdout).Write([]byte(f.stdout))
		_, _ = stdcopy.NewStdWriter(server, stdcopy.Stderr).Write([]byte(f.stderr))
	}()

	return types.NewHijackedResponse(conn, ""), nil
}

func (f *fakeClient) ContainerStart(context.Context, string, container.StartOptions) error {
	f.started = true
	return nil
}

func (f *fakeClient) ContainerWait(context.Context, string, container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	waitCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)

	if f.waitErr != nil {
		errCh <- f.waitErr
	} else {
		waitCh <- container.WaitResponse{StatusCode: f.exitCode}
	}

	return waitCh, errCh
}

func (f *fakeClient) ContainerResize(context.Context, string, container.ResizeOptions) error {
	return nil
}

func (f *fakeClient) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeClient) Close() error {
	return nil
}

func newFake() *fakeClient {
	return &fakeClient{
		images: map[string]image.InspectResponse{
			"kmake:latest": {
				ID:           "sha256:deadbeef",
				RepoTags:     []string{"kmake:latest"},
				Architecture: "amd64",
				Os:           "linux",
				Size:         1 << 30,
				Created:      "2024-01-02T03:04:05Z",
			},
		},
	}
}

func TestRun(t *testing.T) {
	fake := newFake()
	fake.stdout = "  CC      init/main.o\n"
	fake.stderr = "warning: something\n"
	fake.exitCode = 2

	var stdout, stderr bytes.Buffer

	code, err := NewDockerFromClient(fake).Run(context.Background(), RunSpec{
		Image:   "kmake:latest",
		Argv:    []string{"make", "-j8"},
		Env:     map[string]string{"CROSS_COMPILE": "aarch64-linux-gnu-", "ARCH": "arm64"},
		Source:  "/home/user/linux",
		Workdir: "/src",
		User:    "1000:1000",
		CPUs:    1.5,
		Memory:  8 << 30,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, code)
	assert.Equal(t, "  CC      init/main.o\n", stdout.String())
	assert.Equal(t, "warning: something\n", stderr.String())

	assert.True(t, fake.started)
	assert.True(t, strings.HasPrefix(fake.name, NamePrefix))
	assert.Equal(t, []string{"abc123"}, fake.removed)

	assert.Equal(t, "kmake:latest", fake.created.Image)
	assert.Equal(t, []string{"make", "-j8"}, []string(fake.created.Cmd))
	assert.Equal(t, []string{"ARCH=arm64", "CROSS_COMPILE=aarch64-linux-gnu-"}, fake.created.Env)
	assert.Equal(t, "/src", fake.created.WorkingDir)
	assert.Equal(t, "1000:1000", fake.created.User)
	assert.False(t, fake.created.Tty)
	assert.False(t, fake.attachOpts.Stdin)

	assert.Equal(t, int64(1_500_000_000), fake.hostConfig.NanoCPUs)
	assert.Equal(t, int64(8<<30), fake.hostConfig.Memory)
	require.Len(t, fake.hostConfig.Mounts, 1)
	assert.Equal(t, mount.Mount{
		Type:   mount.TypeBind,
		Source: "/home/user/linux",
		Target: "/src",
	}, fake.hostConfig.Mounts[0])
}

func TestRunInteractive(t *testing.T) {
	fake := newFake()
	fake.stdout = "root@kmake:/src# "

	var stdout bytes.Buffer

	code, err := NewDockerFromClient(fake).Run(context.Background(), RunSpec{
		Image:        "kmake:latest",
		Argv:         []string{"/bin/bash"},
		Interactive:  true,
		TerminalSize: func() (uint, uint) { return 80, 24 },
		Stdin:        strings.NewReader(""),
		Stdout:       &stdout,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, code)
	assert.Equal(t, "root@kmake:/src# ", stdout.String())
	assert.True(t, fake.created.Tty)
	assert.True(t, fake.created.OpenStdin)
	assert.True(t, fake.attachOpts.Stdin)
}

func TestRunImageNotFound(t *testing.T) {
	fake := newFake()

	_, err := NewDockerFromClient(fake).Run(context.Background(), RunSpec{
		Image: "missing:latest",
		Argv:  []string{"make"},
	})

	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Nil(t, fake.created)
	assert.False(t, fake.started)
}

func TestRunWaitError(t *testing.T) {
	fake := newFake()
	fake.waitErr = errors.New("daemon went away")

	_, err := NewDockerFromClient(fake).Run(context.Background(), RunSpec{
		Image: "kmake:latest",
		Argv:  []string{"make"},
	})

	assert.ErrorContains(t, err, "daemon went away")
	assert.Equal(t, []string{"abc123"}, fake.removed)
}

func TestImageExists(t *testing.T) {
	d := NewDockerFromClient(newFake())

	ok, err := d.ImageExists(context.Background(), "kmake:latest")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.ImageExists(context.Background(), "other:latest")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInspect(t *testing.T) {
	d := NewDockerFromClient(newFake())

	info, err := d.Inspect(context.Background(), "kmake:latest")
	require.NoError(t, err)

	assert.Equal(t, "sha256:deadbeef", info.ID)
	assert.Equal(t, "amd64", info.Architecture)
	assert.Equal(t, 2024, info.Created.Year())

	_, err = d.Inspect(context.Background(), "other:latest")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefaultContext(dir))

	fake := newFake()
	var out bytes.Buffer

	err := NewDockerFromClient(fake).Build(context.Background(), BuildSpec{
		ContextDir: dir,
		Tags:       []string{"kmake:latest"},
		BuildArgs:  UserBuildArgs(1000, 100),
		Progress:   ProgressOutput{Out: &out},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"kmake:latest"}, fake.buildOpts.Tags)
	assert.Equal(t, DockerfileName, fake.buildOpts.Dockerfile)
	assert.Equal(t, "1000", *fake.buildOpts.BuildArgs["UID"])
	assert.Equal(t, "100", *fake.buildOpts.BuildArgs["GID"])
	assert.Equal(t, []string{DockerfileName}, fake.buildFiles)
	assert.Contains(t, out.String(), "Step 1/1")
}

func TestPull(t *testing.T) {
	configLoader = func() (*configfile.ConfigFile, error) {
		cf := configfile.New(filepath.Join(t.TempDir(), "config.json"))
		cf.AuthConfigs = map[string]clitypes.AuthConfig{
			"ghcr.io": {Username: "user", Password: "secret", ServerAddress: "ghcr.io"},
		}
		return cf, nil
	}
	t.Cleanup(func() {
		configLoader = defaultConfigLoader
	})

	fake := newFake()
	d := NewDockerFromClient(fake)

	require.NoError(t, d.Pull(context.Background(), "ghcr.io/example/kmake", "", ProgressOutput{}))
	assert.Equal(t, "ghcr.io/example/kmake:latest", fake.pullRef)

	decoded, err := registry.DecodeAuthConfig(fake.pullOptions.RegistryAuth)
	require.NoError(t, err)
	assert.Equal(t, "user", decoded.Username)
	assert.Equal(t, "secret", decoded.Password)

	require.NoError(t, d.Pull(context.Background(), "kmake", "linux/arm64", ProgressOutput{}))
	assert.Equal(t, "docker.io/library/kmake:latest", fake.pullRef)
	assert.Equal(t, "", fake.pullOptions.RegistryAuth)
	assert.Equal(t, "linux/arm64", fake.pullOptions.Platform)
}

func TestNormalizeReference(t *testing.T) {
	named, err := NormalizeReference("kmake")
	require.NoError(t, err)
	assert.Equal(t, "docker.io/library/kmake:latest", named.String())

	_, err = NormalizeReference("Invalid Ref")
	assert.Error(t, err)
}

func TestRunSpecCmdline(t *testing.T) {
	spec := RunSpec{
		Image:   "kmake:latest",
		Argv:    []string{"make", "-j4"},
		Env:     map[string]string{"ARCH": "arm"},
		Source:  "/linux",
		Workdir: "/src",
		User:    "1000:1000",
		CPUs:    2,
	}

	assert.Equal(t,
		"docker run --rm --init -v /linux:/src -w /src -u 1000:1000 --cpus=2 -e ARCH=arm kmake:latest make -j4",
		spec.Cmdline(),
	)
}

func TestDefaultDockerfile(t *testing.T) {
	dockerfile := string(DefaultDockerfile())

	for _, pkg := range []string{"ccache", "gcc-aarch64-linux-gnu", "gcc-arm-linux-gnueabihf", "gcc-riscv64-linux-gnu", "gcc-x86-64-linux-gnu"} {
		assert.Contains(t, dockerfile, pkg)
	}

	dir := t.TempDir()
	require.NoError(t, WriteDefaultContext(dir))

	written, err := os.ReadFile(filepath.Join(dir, DockerfileName))
	require.NoError(t, err)
	assert.Equal(t, DefaultDockerfile(), written)
}
