package commands

import (
	"github.com/fatih/color"
	"github.com/robgonnella/ipscannr/internal/wol"
	"github.com/spf13/cobra"
)

/**
 * Command to send a Wake-on-LAN magic packet
 */
func wake() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "wake <mac>",
		Short: "Send a Wake-on-LAN magic packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wol.SendTo(args[0], addr); err != nil {
				return err
			}

			color.Green("magic packet sent to %s", args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", wol.BroadcastAddr, "Broadcast address and port")

	return cmd
}
