// Package settings reads process settings from the environment.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Settings struct {
	// DevServerURL points the window at a running dev server instead of the
	// bundled UI. It only applies to unpackaged builds.
	DevServerURL string `env:"WDS_URL" validate:"omitempty,url"`
	Test         bool   `env:"IS_TEST" default:"false"`

	UserDataDir string `env:"APPSHELL_USER_DATA"`
	UIDir       string `env:"APPSHELL_UI_DIR" default:"ui" validate:"required"`
	Listen      string `env:"APPSHELL_LISTEN" default:"127.0.0.1:0" validate:"required"`
	Tray        bool   `env:"APPSHELL_TRAY" default:"false"`

	LogLevel  string `env:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" default:"console" validate:"oneof=console json"`
}

// Development reports whether a dev server is configured.
func (s Settings) Development() bool { return s.DevServerURL != "" }

// DevTools reports whether the inspector is on for development builds.
func (s Settings) DevTools() bool { return s.Development() && !s.Test }

var validate = validator.New()

// Load reads an optional .env file, then the environment.
func Load() (Settings, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Settings, error) {
	var s Settings
	if err := env.Load(&s, nil); err != nil {
		return Settings{}, fmt.Errorf("load environment: %w", err)
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.LogFormat = strings.ToLower(s.LogFormat)

	if err := validate.Struct(s); err != nil {
		return Settings{}, describe(err)
	}
	return s, nil
}

var envNames = map[string]string{
	"DevServerURL": "WDS_URL",
	"UIDir":        "APPSHELL_UI_DIR",
	"Listen":       "APPSHELL_LISTEN",
	"LogLevel":     "LOG_LEVEL",
	"LogFormat":    "LOG_FORMAT",
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %q (%s)", name, fmt.Sprint(fe.Value()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
