package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/session"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closer, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer closer()

			snap := a.manager.Snapshot()
			fmt.Printf("Status:   %s\n", colourStatus(snap.Status))

			if !snap.Authenticated() {
				return nil
			}

			user := utils.Value(snap.User)
			fmt.Printf("User:     %s (%s)\n", user.Email, user.Username)
			fmt.Printf("Issued:   %s\n", snap.IssuedAt.Format(time.RFC3339))
			expiresIn := a.cfg.SessionTTL.Std() - time.Since(snap.IssuedAt)
			fmt.Printf("Expires:  in %s\n", expiresIn.Round(time.Second))

			if snap.ProfileIncomplete {
				fmt.Printf("Profile:  %snot loaded%s\n", Yellow, ResetColor)
			} else {
				fmt.Printf("Profile:  loaded (%d fields)\n", len(snap.Profile))
			}

			if info, isJWT := session.InspectToken(snap.Token); isJWT {
				fmt.Printf("Token:    JWT sub=%s", info.Subject)
				if info.Email != "" {
					fmt.Printf(" email=%s", info.Email)
				}
				if !info.ExpiresAt.IsZero() {
					fmt.Printf(" exp=%s", info.ExpiresAt.Format(time.RFC3339))
				}
				fmt.Println()
			} else {
				fmt.Println("Token:    opaque")
			}
			return nil
		},
	}
}
