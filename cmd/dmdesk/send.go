package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"dmdesk/internal/di"
)

func newSendCommand(cli *CLI) *cobra.Command {
	var (
		to      string
		message string
	)

	cmd := &cobra.Command{
		Use:   "send [username] [message...]",
		Short: "Send one direct message",
		Example: `  dmdesk send @alice "hello there"
  dmdesk send --to alice --message "hello there"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, body := to, message
			if username == "" && len(args) > 0 {
				username, args = args[0], args[1:]
			}
			if body == "" && len(args) > 0 {
				body = strings.Join(args, " ")
			}

			if cli.interactive() {
				var err error
				if strings.TrimSpace(username) == "" {
					if username, err = cli.prompt("Twitter Username", false); err != nil {
						return err
					}
				}
				if strings.TrimSpace(body) == "" {
					if body, err = cli.prompt("Message", true); err != nil {
						return err
					}
				}
			}

			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			container, err := cli.buildContainer(cmd.Context(), cfg, di.WithoutProbe())
			if err != nil {
				return err
			}
			defer func() { _ = container.Cleanup(cmd.Context()) }()

			result := container.Orchestrator.Process(cmd.Context(), username, body)
			fmt.Fprintln(cli.stdout, resultText(result.OK(), result.Text))
			if !result.OK() {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "Recipient handle, with or without @")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message body")
	return cmd
}

func (cli *CLI) prompt(label string, allowSpaces bool) (string, error) {
	p := promptui.Prompt{
		Label:  label,
		Stdin:  cli.stdin,
		Stdout: nopWriteCloser{cli.stdout},
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("required")
			}
			if !allowSpaces && strings.ContainsAny(strings.TrimSpace(input), " \t") {
				return errors.New("handles have no spaces")
			}
			return nil
		},
	}
	value, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", fmt.Errorf("cancelled")
		}
		return "", err
	}
	return value, nil
}
