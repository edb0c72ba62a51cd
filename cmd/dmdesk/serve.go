package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dmdesk/internal/logging"
	"dmdesk/internal/webui"
)

func newServeCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.serve(ctx, nil)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "Listen host (default 127.0.0.1)")
	flags.Int("port", 0, "Listen port (default 7860, or $PORT)")
	flags.Bool("cors", false, "Enable CORS on the JSON API")
	flags.Bool("debug", false, "Run gin in debug mode")
	_ = cli.viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = cli.viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = cli.viper.BindPFlag("server.enable_cors", flags.Lookup("cors"))
	_ = cli.viper.BindPFlag("server.debug", flags.Lookup("debug"))

	return cmd
}

// serve runs the web server until ctx is cancelled. When ln is nil the
// configured address is used.
func (cli *CLI) serve(ctx context.Context, ln net.Listener) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	container, err := cli.buildContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = container.Cleanup(shutdownCtx)
	}()

	fmt.Fprintf(cli.stdout, "Status: %s\n", container.Status.Display)

	server, err := webui.NewServer(cfg.Server, webui.Dependencies{
		Sender:        container.Orchestrator,
		Status:        container.Status,
		Observability: container.Observability,
		Logger:        logging.NewComponentLogger("http"),
		Version:       version,
	})
	if err != nil {
		return err
	}
	container.Observability.StartServers()

	if ln == nil {
		ln, err = net.Listen("tcp", server.Addr())
		if err != nil {
			return fmt.Errorf("listen on %s: %w", server.Addr(), err)
		}
	}
	fmt.Fprintf(cli.stdout, "Starting on %s\n", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
