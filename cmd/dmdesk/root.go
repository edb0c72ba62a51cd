package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dmdesk/internal/config"
	"dmdesk/internal/di"
)

// CLI holds the command line interface state
type CLI struct {
	viper      *viper.Viper
	configPath string

	stdin  io.ReadCloser
	stdout io.Writer
	stderr io.Writer

	// interactive reports whether prompting for missing input is allowed.
	interactive func() bool
	// buildOptions are appended to every container build.
	buildOptions []di.Option
}

func newCLI(stdin io.ReadCloser, stdout, stderr io.Writer) *CLI {
	return &CLI{
		viper:       viper.New(),
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: isTTY,
	}
}

func newRootCommand(cli *CLI) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dmdesk",
		Short:         "Send direct messages to X accounts by handle",
		Long:          "dmdesk resolves a handle to an account and delivers one direct message, from a web form or the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(cli.stdin)
	rootCmd.SetOut(cli.stdout)
	rootCmd.SetErr(cli.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cli.configPath, "config", "", "Config file (default: ./dmdesk.yaml or ~/.dmdesk/dmdesk.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
	_ = cli.viper.BindPFlag("observability.logging.level", flags.Lookup("log-level"))
	_ = cli.viper.BindPFlag("observability.logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(newServeCommand(cli))
	rootCmd.AddCommand(newSendCommand(cli))
	rootCmd.AddCommand(newWhoamiCommand(cli))
	rootCmd.AddCommand(newConfigCommand(cli))
	rootCmd.AddCommand(newVersionCommand(cli))

	return rootCmd
}

func (cli *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(
		config.WithViper(cli.viper),
		config.WithConfigPath(cli.configPath),
	)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Observability.Tracing.ServiceVersion = version
	return cfg, nil
}

func (cli *CLI) buildContainer(ctx context.Context, cfg config.Config, opts ...di.Option) (*di.Container, error) {
	opts = append([]di.Option{di.WithLogOutput(cli.stderr)}, opts...)
	opts = append(opts, cli.buildOptions...)
	return di.BuildContainer(ctx, cfg, opts...)
}
