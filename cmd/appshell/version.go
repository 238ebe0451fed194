package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/appshell/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			m := buildinfo.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", m.Name, m.Version)
			if m.StorageProfile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "storage profile: %s\n", m.StorageProfile)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packaged: %t\n", m.Packaged)
		},
	}
}
