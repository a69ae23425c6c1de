package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ems/internal/server"
	"github.com/desertthunder/ems/internal/shared"
)

// Serve starts the REST API and blocks until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.Config(cmd)
	if err != nil {
		return err
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	cfg := config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, server.NewRouter(svc, cfg, r.logger), r.logger)

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr(), err)
	}

	url := fmt.Sprintf("http://%s%s", ln.Addr(), server.EmployeesPath)
	r.writePlain("Serving employees at %s\n", url)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	return srv.Serve(ctx, ln)
}
