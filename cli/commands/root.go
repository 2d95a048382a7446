package commands

import (
	"context"
	"os"
	"os/signal"

	app_info "github.com/robgonnella/ipscannr/internal/app-info"
	"github.com/robgonnella/ipscannr/internal/config"
	"github.com/robgonnella/ipscannr/internal/core"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/metrics"
	"github.com/robgonnella/ipscannr/internal/targets"
	"github.com/robgonnella/ipscannr/internal/ui"
	"github.com/robgonnella/ipscannr/internal/util"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandProps injected props that can be made available to all commands
type CommandProps struct {
	// LoadConfig returns the effective configuration, defaults to reading
	// the user config file
	LoadConfig func() (*config.Config, error)
}

// rootFlags flags accepted by the root command
type rootFlags struct {
	rangeExpr   string
	ports       string
	scan        bool
	compat      bool
	headless    bool
	metricsAddr string
}

// Root builds and returns our root command
func Root(props *CommandProps) *cobra.Command {
	var verbose bool
	var silent bool

	flags := rootFlags{}

	if props.LoadConfig == nil {
		props.LoadConfig = loadUserConfig
	}

	cmd := &cobra.Command{
		Use:     app_info.NAME,
		Short:   "Fast unprivileged LAN scanner",
		Version: app_info.VERSION,
		// This runs before all commands and all sub-commands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// set logging verbosity for all loggers
			zerolog.SetGlobalLevel(zerolog.InfoLevel)

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if silent {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, props, flags)
		},
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	cmd.PersistentFlags().BoolVar(&silent, "silent", false, "disables all logging")

	cmd.Flags().StringVarP(&flags.rangeExpr, "range", "r", "", "Range to scan, e.g. 192.168.1.0/24, 10.0.0.1-50")
	cmd.Flags().StringVarP(&flags.ports, "ports", "p", "", "Ports to scan on live hosts, e.g. 22,80,8000-8100")
	cmd.Flags().BoolVarP(&flags.scan, "scan", "s", false, "Start scanning immediately")
	cmd.Flags().BoolVar(&flags.compat, "compat", false, "Plain ascii rendering for limited terminals")
	cmd.Flags().BoolVar(&flags.headless, "headless", false, "Run a single scan without the interface and print results")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
	cmd.Flags().BoolP("version", "V", false, "Print version info")

	cmd.SetVersionTemplate("{{.Name}}: {{.Version}}\n")

	cmd.AddCommand(version())
	cmd.AddCommand(clear())
	cmd.AddCommand(show())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(wake())
	cmd.AddCommand(configCmd(props))

	return cmd
}

func runRoot(cmd *cobra.Command, props *CommandProps, flags rootFlags) error {
	log := logger.New()

	conf, err := props.LoadConfig()

	if err != nil {
		return err
	}

	if flags.ports != "" {
		ports, err := host.ParsePorts(flags.ports)

		if err != nil {
			return err
		}

		conf.Ports = ports
	}

	rangeExpr := flags.rangeExpr

	if rangeExpr == "" {
		rangeExpr = conf.DefaultRange
	}

	if _, err := targets.Parse(rangeExpr); err != nil {
		return err
	}

	m := metrics.New()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if flags.metricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, flags.metricsAddr); err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	appCore, err := core.CreateNewAppCore(conf, m)

	if err != nil {
		return err
	}

	if flags.headless {
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		defer appCore.Stop()

		return runHeadless(sigCtx, appCore, rangeExpr, cmd.OutOrStdout())
	}

	userIP := ""

	if info, err := util.GetNetworkInfo(); err == nil {
		userIP = info.UserIP.String()
	}

	return ui.New(appCore, ui.Options{
		Range:   rangeExpr,
		UserIP:  userIP,
		ScanNow: flags.scan,
		Compat:  flags.compat,
	}).Launch()
}

// loadUserConfig layers the user config file over defaults detected from
// the local network
func loadUserConfig() (*config.Config, error) {
	defaults := config.Default()
	defaults.DefaultRange = util.DefaultRange()

	return config.Load(viper.GetString("config-file"), defaults)
}
