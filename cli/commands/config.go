package commands

import (
	"github.com/fatih/color"
	"github.com/robgonnella/ipscannr/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/**
 * Command to write the effective configuration to the user config file
 */
func configCmd(props *CommandProps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := props.LoadConfig()

			if err != nil {
				return err
			}

			confPath := viper.GetString("config-file")

			if err := config.Write(confPath, *conf); err != nil {
				return err
			}

			color.Green("wrote config to %s", confPath)

			return nil
		},
	}

	return cmd
}
