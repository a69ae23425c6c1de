// package sftpclient uploads export files to an SFTP server
package sftpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/desertthunder/ems/internal/shared"
)

const dialTimeout = 20 * time.Second

// Uploader copies local files to the remote directory of an [shared.SFTPConfig].
type Uploader struct {
	cfg shared.SFTPConfig
}

// NewUploader validates cfg and fills in the default port and remote directory.
func NewUploader(cfg shared.SFTPConfig) (*Uploader, error) {
	if !cfg.Enabled() || cfg.Password == "" {
		return nil, fmt.Errorf("%w: sftp needs host, user and password (EMS_SFTP_HOST / EMS_SFTP_USER / EMS_SFTP_PASSWORD)", shared.ErrMissingConfig)
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	return &Uploader{cfg: cfg}, nil
}

// Addr returns the host:port the uploader dials.
func (u *Uploader) Addr() string {
	return net.JoinHostPort(u.cfg.Host, strconv.Itoa(u.cfg.Port))
}

// RemotePath returns where a file named name lands on the server.
func (u *Uploader) RemotePath(name string) string {
	return path.Join(u.cfg.RemoteDir, name)
}

// Upload copies localPath into the remote directory under its base name and returns the remote path.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	hostKey, err := u.hostKeyCallback()
	if err != nil {
		return "", err
	}

	sshCfg := &ssh.ClientConfig{
		User:            u.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(u.cfg.Password)},
		HostKeyCallback: hostKey,
		Timeout:         dialTimeout,
	}

	sshClient, err := dial(ctx, u.Addr(), sshCfg)
	if err != nil {
		return "", err
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", fmt.Errorf("sftp: new client: %w", err)
	}
	defer client.Close()

	if err := client.MkdirAll(u.cfg.RemoteDir); err != nil {
		return "", fmt.Errorf("sftp: mkdir %s: %w", u.cfg.RemoteDir, err)
	}

	remotePath := u.RemotePath(filepath.Base(localPath))
	dst, err := client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("sftp: create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("sftp: upload copy: %w", err)
	}

	return remotePath, nil
}

func (u *Uploader) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if u.cfg.KnownHosts == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	file := u.cfg.KnownHosts
	if rest, ok := strings.CutPrefix(file, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("sftp: resolve home directory: %w", err)
		}
		file = filepath.Join(home, rest)
	}

	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("%w: sftp known_hosts %s: %v", shared.ErrInvalidConfig, file, err)
	}
	return cb, nil
}

// dial connects in a goroutine so ctx can abandon a slow handshake.
func dial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	type dialRes struct {
		client *ssh.Client
		err    error
	}

	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, cfg)
		ch <- dialRes{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial error: %w", r.err)
		}
		return r.client, nil
	}
}
