package ui

import (
	"fmt"
	"os"

	"github.com/robgonnella/ipscannr/internal/core"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/ui/style"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var originalStdout = os.Stdout
var originalStderr = os.Stderr

func restoreStdout() {
	os.Stdout = originalStdout
	os.Stderr = originalStderr
}

// Options controls how the terminal UI starts
type Options struct {
	Range   string
	UserIP  string
	ScanNow bool
	Compat  bool
}

type UI struct {
	appCore *core.Core
	opts    Options
	view    *view
}

func New(appCore *core.Core, opts Options) *UI {
	return &UI{
		appCore: appCore,
		opts:    opts,
	}
}

func (u *UI) Launch() error {
	log := logger.New()

	level := zerolog.GlobalLevel()

	if level != zerolog.Disabled {
		logFile := viper.GetString("log-file")

		if logFile == "" {
			log.Error().Err(
				fmt.Errorf("invalid log file path: %s", logFile),
			).Msg("disabling logs")
			zerolog.SetGlobalLevel(zerolog.Disabled)
		} else {
			if err := logger.GlobalSetLogFile(logFile); err != nil {
				log.Error().Err(err).Msg("disabling logs")
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}
		}
	}

	style.SetCompat(u.opts.Compat)

	u.view = newView(u.appCore, u.opts)

	os.Stdout, _ = os.Open(os.DevNull)
	os.Stderr, _ = os.Open(os.DevNull)

	defer restoreStdout()

	return u.view.run()
}
