package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/task-recurrence/internal/credential"
	"github.com/nhle/task-recurrence/internal/theme"
)

// credentials opens the credential store. Tests replace openCredentials.
func (a *app) credentials() (*credential.Store, error) {
	if a.openCredentials != nil {
		return a.openCredentials()
	}
	return credential.Open()
}

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the Telegram bot token in the system keyring",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [token]",
			Short: "Store the Telegram bot token",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var token string
				if len(args) == 1 {
					token = args[0]
				} else {
					err := huh.NewForm(
						huh.NewGroup(
							huh.NewInput().
								Title("Telegram bot token").
								EchoMode(huh.EchoModePassword).
								Value(&token),
						),
					).Run()
					if err != nil {
						return err
					}
				}

				creds, err := a.credentials()
				if err != nil {
					return err
				}
				if err := creds.Set(credential.TelegramTokenKey, strings.TrimSpace(token)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessStyle.Render("token saved"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored Telegram bot token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				creds, err := a.credentials()
				if err != nil {
					return err
				}
				if err := creds.Delete(credential.TelegramTokenKey); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token deleted")
				return nil
			},
		},
	)
	return cmd
}
