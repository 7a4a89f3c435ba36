package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
)

// DockerRuntime implements Runtime using the Docker Engine API.
type DockerRuntime struct {
	cli *client.Client
}

// NewDockerRuntime creates a Docker runtime. Connection settings come
// from the environment (DOCKER_HOST etc.) with API version negotiation.
func NewDockerRuntime() (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return &DockerRuntime{cli: cli}, nil
}

// Ping verifies the Docker daemon is reachable.
func (r *DockerRuntime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("pinging docker daemon: %w", err)
	}
	return nil
}

// CreateContainer creates an agent container. The workspace is bind
// mounted at /workspace; Claude configuration from the host home
// directory is mounted read-only when present.
func (r *DockerRuntime) CreateContainer(ctx context.Context, cfg CreateConfig) (string, error) {
	workspace, err := filepath.Abs(cfg.WorkspacePath)
	if err != nil {
		return "", fmt.Errorf("resolving workspace path %s: %w", cfg.WorkspacePath, err)
	}

	mounts := []mount.Mount{{
		Type:   mount.TypeBind,
		Source: workspace,
		Target: "/workspace",
	}}

	// Mount Claude config read-only, both current and legacy layouts.
	if homeDir, err := os.UserHomeDir(); err == nil {
		for _, rel := range []string{".claude", ".claude.json"} {
			src := filepath.Join(homeDir, rel)
			if _, err := os.Stat(src); err == nil {
				mounts = append(mounts, mount.Mount{
					Type:     mount.TypeBind,
					Source:   src,
					Target:   "/mnt/claude-config/" + rel,
					ReadOnly: true,
				})
			}
		}
	}

	hostConfig := &container.HostConfig{
		Privileged: true,
		Mounts:     mounts,
	}

	if cfg.Memory != "" {
		memoryBytes, err := ParseMemoryLimit(cfg.Memory)
		if err != nil {
			return "", err
		}
		hostConfig.Resources.Memory = memoryBytes
	}
	if cfg.CPUs != "" {
		quota, period, err := ParseCPULimit(cfg.CPUs)
		if err != nil {
			return "", err
		}
		hostConfig.Resources.CPUQuota = quota
		hostConfig.Resources.CPUPeriod = period
	}

	log.Debug("creating container", "name", cfg.Name, "image", cfg.Image, "workspace", workspace)

	resp, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image: cfg.Image,
			Env: []string{
				fmt.Sprintf("HOST_UID=%d", os.Getuid()),
				fmt.Sprintf("HOST_GID=%d", os.Getgid()),
			},
			Labels: map[string]string{LabelKey: LabelValue},
		},
		hostConfig,
		nil, // network config
		nil, // platform
		cfg.Name,
	)
	if err != nil {
		return "", fmt.Errorf("creating container %s: %w", cfg.Name, err)
	}
	return resp.ID, nil
}

// StartContainer starts an existing container.
func (r *DockerRuntime) StartContainer(ctx context.Context, ref string) error {
	if err := r.cli.ContainerStart(ctx, ref, container.StartOptions{}); err != nil {
		return fmt.Errorf("starting container: %w", err)
	}
	return nil
}

// StopContainer stops a container. A forced stop kills immediately;
// otherwise the container gets a 5 second grace period.
func (r *DockerRuntime) StopContainer(ctx context.Context, ref string, force bool) error {
	timeout := 5
	if force {
		timeout = 0
	}
	if err := r.cli.ContainerStop(ctx, ref, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stopping container: %w", err)
	}
	return nil
}

// RemoveContainer force-removes a container.
func (r *DockerRuntime) RemoveContainer(ctx context.Context, ref string) error {
	err := r.cli.ContainerRemove(ctx, ref, container.RemoveOptions{Force: true})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("removing container: %w", err)
	}
	return nil
}

// Exec runs a command inside a running container.
func (r *DockerRuntime) Exec(ctx context.Context, ref string, cmd []string, opts ExecOptions) error {
	execResp, err := r.cli.ContainerExecCreate(ctx, ref, container.ExecOptions{
		Cmd:          cmd,
		User:         opts.User,
		Tty:          opts.TTY,
		AttachStdin:  opts.Attach && opts.Stdin != nil,
		AttachStdout: opts.Attach,
		AttachStderr: opts.Attach,
	})
	if err != nil {
		return fmt.Errorf("creating exec: %w", err)
	}

	if !opts.Attach {
		if err := r.cli.ContainerExecStart(ctx, execResp.ID, container.ExecStartOptions{}); err != nil {
			return fmt.Errorf("starting exec: %w", err)
		}
		return nil
	}

	attach, err := r.cli.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{Tty: opts.TTY})
	if err != nil {
		return fmt.Errorf("attaching to exec: %w", err)
	}
	defer attach.Close()

	outputDone := make(chan error, 1)
	go func() {
		var copyErr error
		if opts.TTY {
			// TTY output is raw, a single stream
			_, copyErr = io.Copy(opts.Stdout, attach.Reader)
		} else {
			copyErr = demux(opts.Stdout, opts.Stderr, attach.Reader)
		}
		outputDone <- copyErr
	}()

	if opts.Stdin != nil {
		go func() {
			_, _ = io.Copy(attach.Conn, opts.Stdin)
			_ = attach.CloseWrite()
		}()
	}

	select {
	case err := <-outputDone:
		if err != nil {
			return fmt.Errorf("streaming exec output: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return fmt.Errorf("inspecting exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return fmt.Errorf("command exited with code %d", inspect.ExitCode)
	}
	return nil
}

// Logs returns the container's log stream.
func (r *DockerRuntime) Logs(ctx context.Context, ref string, opts LogOptions) (io.ReadCloser, error) {
	tail := opts.Tail
	if tail == "" {
		tail = "all"
	}
	reader, err := r.cli.ContainerLogs(ctx, ref, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     opts.Follow,
		Tail:       tail,
		Timestamps: opts.Timestamps,
	})
	if err != nil {
		return nil, fmt.Errorf("getting container logs: %w", err)
	}
	return reader, nil
}

// ListContainers returns all crowdcontrol containers, including
// stopped ones.
func (r *DockerRuntime) ListContainers(ctx context.Context) ([]Summary, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelKey+"="+LabelValue)),
	})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	result := make([]Summary, 0, len(containers))
	for _, c := range containers {
		if len(c.Names) == 0 {
			continue
		}
		result = append(result, Summary{
			ID:      c.ID,
			Name:    strings.TrimPrefix(c.Names[0], "/"),
			State:   c.State,
			Created: time.Unix(c.Created, 0),
		})
	}
	return result, nil
}

// Inspect returns the declared name and state for a container reference.
func (r *DockerRuntime) Inspect(ctx context.Context, ref string) (*Details, error) {
	inspect, err := r.cli.ContainerInspect(ctx, ref)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("inspecting container: %w", err)
	}
	return &Details{
		Name:  strings.TrimPrefix(inspect.Name, "/"),
		State: inspect.State.Status,
	}, nil
}

// PullImage pulls an image unless it is already present locally.
func (r *DockerRuntime) PullImage(ctx context.Context, imageName string) error {
	images, err := r.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName || strings.HasPrefix(tag, imageName+":") {
				log.Debug("image already present", "image", imageName)
				return nil
			}
		}
	}

	log.Info("pulling image", "image", imageName)
	reader, err := r.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", imageName, err)
	}
	defer reader.Close()

	// Drain the progress stream so the pull completes.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("reading image pull stream: %w", err)
	}
	return nil
}

// Close releases the Docker client.
func (r *DockerRuntime) Close() error {
	return r.cli.Close()
}
