package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/localrivet/remindersmcp"
	"github.com/localrivet/remindersmcp/internal/config"
	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/localrivet/remindersmcp/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type rootOptions struct {
	stdio      bool
	port       int
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "remindersmcp",
		Short: "MCP server for macOS reminders backed by remindctl",
		Long: "Expose reminders_list, reminders_create, reminders_edit, reminders_complete\n" +
			"and reminders_delete to MCP clients over stdio or HTTP+SSE.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigFilename, "path to the configuration file")
	cmd.Flags().BoolVar(&opts.stdio, "stdio", false, "serve MCP over stdin/stdout instead of HTTP+SSE")
	cmd.Flags().IntVar(&opts.port, "port", 0, "HTTP+SSE listen port (overrides configuration and PORT)")

	cmd.AddCommand(newToolsCommand())
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))

	return cmd
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfigWithPath(opts.configPath)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration")
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := cfg.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(log)

	transport := remindersmcp.TransportSSE
	if opts.stdio {
		transport = remindersmcp.TransportStdio
	}

	srv, err := remindersmcp.NewServer(remindersmcp.ServerOptions{
		Config:    cfg,
		Logger:    log,
		Transport: transport,
	})
	if err != nil {
		errortypes.LogError(log, err)
		return err
	}

	var admin *server.AdminServer
	if cfg.Admin.Address != "" {
		components := srv.Components()
		admin = server.NewAdminServer(cfg.Admin.Address, server.NewAdminRouter(server.AdminOptions{
			Dispatcher: components.Dispatcher,
			Logger:     log,
			Metrics:    components.Metrics.Handler(),
		}), log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if transport == remindersmcp.TransportStdio {
		log.Info("Reminders MCP Server running in STDIO mode")
	} else {
		// gomcp's SSE transport does not report listen errors, so check the
		// port before claiming it in the PID file.
		if err := checkPortAvailable(cfg.ListenAddress()); err != nil {
			if isAddrInUse(err) {
				printPortHint(cmd.ErrOrStderr(), cfg.Server.Port)
			}
			srv.Stop()
			return err
		}
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Error("Failed to write PID file", "path", cfg.Server.PIDFile, "error", err)
		}
		log.Info("Server is running", "port", cfg.Server.Port)
	}

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			if transport != remindersmcp.TransportStdio {
				removePIDFile(cfg.Server.PIDFile)
			}
			if admin != nil {
				if err := admin.Stop(context.Background()); err != nil {
					log.Warn("Admin server shutdown failed", "error", err)
				}
			}
			if err := srv.Stop(); err != nil {
				errortypes.LogError(log, err)
			}
		})
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		log.Info("Received shutdown signal, terminating gracefully...")
		shutdown()
		os.Exit(0)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	if admin != nil {
		g.Go(func() error {
			if err := admin.Start(); err != nil {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}

	// srv.Start does not return on its own in SSE mode, so a failed admin
	// server has to end the run here.
	errc := make(chan error, 1)
	go func() { errc <- g.Wait() }()

	select {
	case err = <-errc:
	case <-gctx.Done():
		if ctx.Err() != nil {
			// Signal; the handler above shuts down and exits.
			err = <-errc
		} else {
			shutdown()
			select {
			case err = <-errc:
			case <-time.After(shutdownGrace):
				err = context.Cause(gctx)
			}
		}
	}
	shutdown()
	return err
}

const shutdownGrace = 5 * time.Second

// checkPortAvailable binds addr and releases it again.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

func printPortHint(w io.Writer, port int) {
	fmt.Fprintf(w, "Error: Port %d is already in use.\n", port)
	fmt.Fprintln(w, `If you are seeing this log via a client, ensure you are using the "--stdio" flag in your configuration to avoid port conflicts with the background service.`)
}
