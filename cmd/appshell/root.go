package main

import (
	"github.com/spf13/cobra"

	"github.com/user/appshell/internal/app"
	"github.com/user/appshell/internal/buildinfo"
	"github.com/user/appshell/internal/settings"
)

type rootFlags struct {
	userData string
	uiDir    string
	listen   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "appshell",
		Short:         "Desktop shell for the bundled web UI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDesktop(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.userData, "user-data", "", "user data directory (overrides APPSHELL_USER_DATA)")
	pf.StringVar(&flags.uiDir, "ui-dir", "", "directory with the UI bundle (overrides APPSHELL_UI_DIR)")
	pf.StringVar(&flags.listen, "listen", "", "asset server address (overrides APPSHELL_LISTEN)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Open the desktop window (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runDesktop(cmd, flags)
			},
		},
		newServeCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

// load builds the app from the environment, the build manifest and flags.
func load(cmd *cobra.Command, flags *rootFlags) (*app.App, error) {
	s, err := settings.Load()
	if err != nil {
		return nil, err
	}
	if flags.userData != "" {
		s.UserDataDir = flags.userData
	}
	if flags.uiDir != "" {
		s.UIDir = flags.uiDir
	}
	if flags.listen != "" {
		s.Listen = flags.listen
	}
	if flags.logLevel != "" {
		s.LogLevel = flags.logLevel
	}
	return app.New(s, buildinfo.Current(), cmd.ErrOrStderr())
}

func runDesktop(cmd *cobra.Command, flags *rootFlags) error {
	a, err := load(cmd, flags)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
