package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or reset the stored config",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective config as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := load(cmd, flags)
				if err != nil {
					return err
				}
				defer a.Close()

				data, err := json.MarshalIndent(a.Store.Snapshot(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := load(cmd, flags)
				if err != nil {
					return err
				}
				defer a.Close()

				fmt.Fprintln(cmd.OutOrStdout(), a.Store.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the stored config and go back to the defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := load(cmd, flags)
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.Store.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Config reset:", a.Store.Path())
				return nil
			},
		},
	)
	return cmd
}
