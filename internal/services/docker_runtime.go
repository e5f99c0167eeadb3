package services

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const workspaceDir = "/workspace"

// DockerRuntime runs sandbox containers through the Docker Engine API.
type DockerRuntime struct {
	client   *client.Client
	memoryMB int
}

// NewDockerRuntime connects using the DOCKER_* environment and fails when
// the daemon does not answer a ping.
func NewDockerRuntime(ctx context.Context, memoryMB int) (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("docker not reachable: %w", err)
	}

	return &DockerRuntime{client: cli, memoryMB: memoryMB}, nil
}

func (d *DockerRuntime) StartContainer(ctx context.Context, img string) (string, error) {
	if err := d.ensureImage(ctx, img); err != nil {
		return "", err
	}

	pidsLimit := int64(64)
	containerCfg := &container.Config{
		Image:           img,
		Cmd:             []string{"sh", "-c", "while true; do sleep 3600; done"},
		WorkingDir:      workspaceDir,
		NetworkDisabled: true,
		Env:             []string{"GOCACHE=/tmp/gocache", "CGO_ENABLED=0"},
		Labels:          map[string]string{"codequest.sandbox": "true"},
	}
	hostCfg := &container.HostConfig{
		Resources: container.Resources{
			Memory:    int64(d.memoryMB) * 1024 * 1024,
			NanoCPUs:  1e9,
			PidsLimit: &pidsLimit,
		},
	}

	resp, err := d.client.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = d.client.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return resp.ID, nil
}

func (d *DockerRuntime) CopyFile(ctx context.Context, containerID, name, content string) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	header := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to write tar content: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar: %w", err)
	}

	return d.client.CopyToContainer(ctx, containerID, workspaceDir, &buf, container.CopyToContainerOptions{})
}

// Exec runs cmd with stdin attached. Hitting timeout is reported through
// ExecResult.TimedOut rather than as an error.
func (d *DockerRuntime) Exec(ctx context.Context, containerID string, cmd []string, stdin string, timeout time.Duration) (*ExecResult, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execResp, err := d.client.ContainerExecCreate(execCtx, containerID, container.ExecOptions{
		Cmd:          cmd,
		WorkingDir:   workspaceDir,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	start := time.Now()

	attachResp, err := d.client.ContainerExecAttach(execCtx, execResp.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach exec: %w", err)
	}
	defer attachResp.Close()

	// the hijacked connection ignores ctx, so close it on deadline
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-execCtx.Done():
			attachResp.Close()
		case <-done:
		}
	}()

	go func() {
		_, _ = io.Copy(attachResp.Conn, strings.NewReader(stdin))
		_ = attachResp.CloseWrite()
	}()

	var stdout, stderr bytes.Buffer
	_, copyErr := stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
	duration := time.Since(start)

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return &ExecResult{TimedOut: true, Stdout: stdout.String(), Stderr: stderr.String(), Duration: duration}, nil
	}
	if copyErr != nil {
		return nil, fmt.Errorf("failed to read exec output: %w", copyErr)
	}

	inspectResp, err := d.client.ContainerExecInspect(execCtx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect exec: %w", err)
	}

	return &ExecResult{
		ExitCode: inspectResp.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}, nil
}

func (d *DockerRuntime) RemoveContainer(ctx context.Context, containerID string) error {
	return d.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
}

func (d *DockerRuntime) Close() error {
	return d.client.Close()
}

func (d *DockerRuntime) ensureImage(ctx context.Context, img string) error {
	if _, err := d.client.ImageInspect(ctx, img); err == nil {
		return nil
	}

	reader, err := d.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", img, err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}
