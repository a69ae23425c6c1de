package sftpclient

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/desertthunder/ems/internal/shared"
	th "github.com/desertthunder/ems/internal/testing"
)

// startServer runs an in-process SSH server with the sftp subsystem, accepting user/secret.
func startServer(t *testing.T) (string, ssh.PublicKey) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "user" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(conn, cfg)
		}
	}()

	return ln.Addr().String(), signer.PublicKey()
}

func serveConn(conn net.Conn, cfg *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			nc.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := nc.Accept()
		if err != nil {
			return
		}

		go func(in <-chan *ssh.Request) {
			for req := range in {
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				req.Reply(ok, nil)
			}
		}(requests)

		srv, err := sftp.NewServer(ch)
		if err != nil {
			ch.Close()
			continue
		}
		go func() {
			srv.Serve()
			srv.Close()
		}()
	}
}

func testConfig(t *testing.T, addr string) shared.SFTPConfig {
	t.Helper()

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("bad addr %s: %v", addr, err)
	}

	var p int
	fmt.Sscanf(port, "%d", &p)

	return shared.SFTPConfig{Host: host, Port: p, User: "user", Password: "secret"}
}

func writeLocal(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestNewUploader(t *testing.T) {
	t.Run("MissingFields", func(t *testing.T) {
		for _, cfg := range []shared.SFTPConfig{
			{},
			{Host: "example.com", User: "u"},
			{Host: "example.com", Password: "p"},
			{User: "u", Password: "p"},
		} {
			if _, err := NewUploader(cfg); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig for %+v, got %v", cfg, err)
			}
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		u, err := NewUploader(shared.SFTPConfig{Host: "example.com", User: "u", Password: "p"})
		if err != nil {
			t.Fatalf("NewUploader failed: %v", err)
		}

		if u.Addr() != "example.com:22" {
			t.Errorf("expected default port 22, got %s", u.Addr())
		}
		if got := u.RemotePath("employees.csv"); got != "/employees.csv" {
			t.Errorf("expected /employees.csv, got %s", got)
		}
	})

	t.Run("RemoteDir", func(t *testing.T) {
		u, _ := NewUploader(shared.SFTPConfig{Host: "h", Port: 2222, User: "u", Password: "p", RemoteDir: "/exports/hr"})

		if got := u.RemotePath("out.json"); got != "/exports/hr/out.json" {
			t.Errorf("unexpected remote path %s", got)
		}
		if u.Addr() != "h:2222" {
			t.Errorf("unexpected addr %s", u.Addr())
		}
	})
}

func TestUpload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		addr, _ := startServer(t)

		cfg := testConfig(t, addr)
		cfg.RemoteDir = filepath.Join(t.TempDir(), "exports", "daily")

		u, err := NewUploader(cfg)
		if err != nil {
			t.Fatalf("NewUploader failed: %v", err)
		}

		local := writeLocal(t, "employees.csv", "ID,FirstName,LastName,Email\n1,Ramesh,Fadatare,ramesh@example.com\n")

		remote, err := u.Upload(context.Background(), local)
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}

		want := filepath.Join(cfg.RemoteDir, "employees.csv")
		if remote != want {
			t.Errorf("expected remote path %s, got %s", want, remote)
		}

		th.AssertDirExists(t, cfg.RemoteDir)
		if got := th.MustReadFile(t, want); !strings.Contains(got, "Ramesh") {
			t.Errorf("uploaded file missing contents, got %q", got)
		}
	})

	t.Run("KnownHosts", func(t *testing.T) {
		addr, key := startServer(t)

		khPath := filepath.Join(t.TempDir(), "known_hosts")
		line := knownhosts.Line([]string{knownhosts.Normalize(addr)}, key)
		if err := os.WriteFile(khPath, []byte(line+"\n"), 0600); err != nil {
			t.Fatalf("failed to write known_hosts: %v", err)
		}

		cfg := testConfig(t, addr)
		cfg.RemoteDir = t.TempDir()
		cfg.KnownHosts = khPath

		u, _ := NewUploader(cfg)
		if _, err := u.Upload(context.Background(), writeLocal(t, "a.json", "[]")); err != nil {
			t.Fatalf("Upload with known host failed: %v", err)
		}
	})

	t.Run("UnknownHostKey", func(t *testing.T) {
		addr, _ := startServer(t)
		_, other := startServer(t)

		khPath := filepath.Join(t.TempDir(), "known_hosts")
		line := knownhosts.Line([]string{knownhosts.Normalize(addr)}, other)
		if err := os.WriteFile(khPath, []byte(line+"\n"), 0600); err != nil {
			t.Fatalf("failed to write known_hosts: %v", err)
		}

		cfg := testConfig(t, addr)
		cfg.RemoteDir = t.TempDir()
		cfg.KnownHosts = khPath

		u, _ := NewUploader(cfg)
		if _, err := u.Upload(context.Background(), writeLocal(t, "a.json", "[]")); err == nil {
			t.Error("expected host key mismatch to fail")
		}
	})

	t.Run("MissingKnownHostsFile", func(t *testing.T) {
		cfg := shared.SFTPConfig{Host: "h", User: "u", Password: "p", KnownHosts: filepath.Join(t.TempDir(), "nope")}

		u, _ := NewUploader(cfg)
		_, err := u.Upload(context.Background(), writeLocal(t, "a.csv", ""))
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		addr, _ := startServer(t)

		cfg := testConfig(t, addr)
		cfg.Password = "wrong"

		u, _ := NewUploader(cfg)
		_, err := u.Upload(context.Background(), writeLocal(t, "a.csv", ""))
		if err == nil || !strings.Contains(err.Error(), "dial error") {
			t.Errorf("expected dial error, got %v", err)
		}
	})

	t.Run("MissingLocalFile", func(t *testing.T) {
		u, _ := NewUploader(shared.SFTPConfig{Host: "h", User: "u", Password: "p"})

		_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		t.Cleanup(func() { ln.Close() })

		// Accept and hold connections without speaking SSH.
		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				go func() {
					io.Copy(io.Discard, conn)
					conn.Close()
				}()
			}
		}()

		u, _ := NewUploader(testConfig(t, ln.Addr().String()))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err = u.Upload(ctx, writeLocal(t, "a.csv", ""))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
