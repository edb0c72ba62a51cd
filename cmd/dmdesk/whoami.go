package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the connection and show the operating account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			container, err := cli.buildContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = container.Cleanup(cmd.Context()) }()

			status := container.Status
			fmt.Fprintf(cli.stdout, "%s %s\n", bold("Connected as"), resultText(status.Connected, status.Display))
			if status.Err != nil {
				fmt.Fprintln(cli.stdout, gray(status.Err.Error()))
			}
			if !status.Connected {
				return errReported
			}
			return nil
		},
	}
}
