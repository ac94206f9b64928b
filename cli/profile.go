package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewProfileCmd creates the profile command.
func NewProfileCmd() *cobra.Command {
	var (
		refresh bool
		sets    []string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the account profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closer, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer closer()

			if len(sets) > 0 {
				fields, err := parseFields(sets)
				if err != nil {
					return err
				}
				if res := a.manager.UpdateProfile(cmd.Context(), fields); !res.Success {
					return exitError(1, "%s", res.Error)
				}
			} else if refresh {
				if res := a.manager.RefreshProfile(cmd.Context()); !res.Success {
					return exitError(1, "%s", res.Error)
				}
			}

			snap := a.manager.Snapshot()
			if !snap.Authenticated() {
				return exitError(1, "not authenticated")
			}
			if snap.ProfileIncomplete {
				return exitError(1, "profile not loaded; try --refresh")
			}

			keys := make([]string, 0, len(snap.Profile))
			for k := range snap.Profile {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s%s%s: %v\n", Cyan, k, ResetColor, snap.Profile[k])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-fetch the profile before showing it")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Patch a profile field (key=value, repeatable)")
	return cmd
}

func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, exitError(2, "invalid --set %q, expected key=value", pair)
		}
		fields[key] = value
	}
	return fields, nil
}
