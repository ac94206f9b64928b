package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/session"
)

// NewRegisterCmd creates the register command.
func NewRegisterCmd() *cobra.Command {
	var (
		username        string
		password        string
		passwordConfirm string
	)

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer closer()

			email := args[0]
			if password == "" {
				password, err = promptLine("Password: ")
				if err != nil {
					return err
				}
			}
			if passwordConfirm == "" {
				passwordConfirm, err = promptLine("Confirm password: ")
				if err != nil {
					return err
				}
			}
			// Confirmation mismatch is this layer's precondition, not the
			// manager's.
			if password != passwordConfirm {
				return exitError(2, "passwords do not match")
			}

			res := a.manager.Register(cmd.Context(), session.Registration{
				Email:           email,
				Username:        username,
				Password:        password,
				PasswordConfirm: passwordConfirm,
			})
			return printResult(res, fmt.Sprintf("Registered and logged in as %s", email))
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username for the new account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&passwordConfirm, "password-confirm", "", "Password confirmation (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
