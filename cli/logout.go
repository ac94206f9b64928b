package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closer, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer closer()

			a.manager.Logout()
			fmt.Println("Logged out")
			return nil
		},
	}
}
