package commands

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/fatih/color"
	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/history"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/**
 * Command to print every recorded sighting of a host
 */
func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <ip>",
		Short: "Show when a host was seen online across scans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := netip.ParseAddr(args[0])

			if err != nil {
				return fmt.Errorf("invalid ip %q: %w", args[0], err)
			}

			repo, err := history.NewSqliteDatabase(viper.GetString("database-file"))

			if err != nil {
				return err
			}

			service := history.NewService(repo)

			sightings, err := service.Timeline(ip.String())

			if errors.Is(err, exception.ErrRecordNotFound) {
				color.Yellow("%s has not been seen online", ip)
				return nil
			}

			if err != nil {
				return err
			}

			color.Green("%s seen online %d times", ip, len(sightings))

			printSightings(cmd.OutOrStdout(), sightings)

			return nil
		},
	}

	return cmd
}
