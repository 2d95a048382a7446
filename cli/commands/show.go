package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/spf13/cobra"
)

/**
 * Command to print cached scan results without scanning
 */
func show() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [range]",
		Short: "Show cached results, lists cached ranges when no range is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache()

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			now := time.Now()

			if len(args) == 0 {
				keys := store.Keys()

				if len(keys) == 0 {
					color.Yellow("no cached results in %s", store.Path())
					return nil
				}

				table := tablewriter.NewWriter(out)
				table.Header("Range", "Hosts", "Online", "Scanned")

				for _, key := range keys {
					entry, err := store.Get(key)

					if err != nil {
						return err
					}

					_ = table.Append([]string{
						entry.Range,
						fmt.Sprint(len(entry.Hosts)),
						fmt.Sprint(entry.Online()),
						cache.FormatAge(entry.Finished, now),
					})
				}

				_ = table.Render()

				return nil
			}

			entry, records, err := cachedRecords(store, args[0])

			if err != nil {
				return err
			}

			color.Green(
				"%s: %d hosts (%d online), scanned %s",
				entry.Range,
				len(entry.Hosts),
				entry.Online(),
				cache.FormatAge(entry.Finished, now),
			)

			printRecords(out, records)

			return nil
		},
	}

	return cmd
}
