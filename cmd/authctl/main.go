package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/cli"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Creator-platform session CLI",
	Long:  "authctl — log in to the creator platform, inspect and monitor the local session, and manage the account profile.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./authctl.yaml, ~/.authctl/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("authctl version %s\n", version))

	rootCmd.AddCommand(cli.NewLoginCmd())
	rootCmd.AddCommand(cli.NewRegisterCmd())
	rootCmd.AddCommand(cli.NewLogoutCmd())
	rootCmd.AddCommand(cli.NewStatusCmd())
	rootCmd.AddCommand(cli.NewProfileCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())
}
