package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the UI and its IPC channels to a browser",
		Long: `Serve runs the web target: the UI bundle and POST /ipc/:channel on the
asset server, without a native window. Stop it with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd, flags)
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context(), func(origin string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s/index.html\n", origin)
			})
		},
	}
}
