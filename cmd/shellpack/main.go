// Command shellpack packages the appshell host binary as a named application
// with its own defaults, storage profile and icon.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/user/appshell/internal/bundle"
	"github.com/user/appshell/internal/logging"
)

var version = "0.0.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shellpack",
		Short:         "Package the appshell host as a desktop application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateCmd(), newPlatformsCmd(), newVersionCmd())
	return root
}

func newCreateCmd() *cobra.Command {
	var (
		opts     bundle.Options
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a packaged application",
		Example: `  shellpack create --name Notes --defaults defaults.json --icon notes.png
  shellpack create -n Notes --profile beta -p linux -o dist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, _, err := logging.New(logging.Options{Out: cmd.ErrOrStderr(), Level: logLevel})
			if err != nil {
				return err
			}
			if opts.Stub == "" {
				opts.Stub = defaultStub(opts.Platform)
			}

			res, err := bundle.Generate(opts, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Packaged %s %s\n", res.Manifest.Name, res.Manifest.Version)
			fmt.Fprintf(out, "  output:  %s\n", res.Path)
			fmt.Fprintf(out, "  size:    %s\n", bundle.FormatBytes(res.Size))
			if res.Manifest.StorageProfile != "" {
				fmt.Fprintf(out, "  profile: %s\n", res.Manifest.StorageProfile)
			}
			if res.StampErr != nil {
				fmt.Fprintf(out, "  resources not stamped: %v\n", res.StampErr)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Name, "name", "n", "", "application name (required)")
	f.StringVar(&opts.Version, "version", "", "application version (default 1.0.0)")
	f.StringVar(&opts.StorageProfile, "profile", "", "storage profile, kept apart from other installs")
	f.StringVar(&opts.DefaultConfigFile, "defaults", "", "JSON file with the config defaults")
	f.StringVarP(&opts.Icon, "icon", "i", "", "icon file (.ico, .png, .jpg, .gif)")
	f.StringVarP(&opts.Output, "out", "o", ".", "output directory")
	f.StringVarP(&opts.Platform, "platform", "p", "windows", "target platform")
	f.StringVar(&opts.Stub, "stub", "", "host binary (default: appshell next to shellpack)")
	f.StringVar(&logLevel, "log-level", "info", "log level")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// defaultStub is the appshell binary installed alongside shellpack.
func defaultStub(platform string) string {
	name := "appshell"
	if platform == "windows" || (platform == "" && runtime.GOOS == "windows") {
		name += ".exe"
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func newPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List the target platforms",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range bundle.Platforms {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shellpack version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "shellpack version", version)
		},
	}
}
