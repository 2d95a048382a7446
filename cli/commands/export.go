package commands

import (
	"time"

	"github.com/robgonnella/ipscannr/internal/export"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/util"
	"github.com/spf13/cobra"
)

/**
 * Command to export cached results to csv or json
 */
func exportCmd() *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export [range]",
		Short: "Export cached results for a range to csv or json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()

			f, err := export.ParseFormat(format)

			if err != nil {
				return err
			}

			store, err := openCache()

			if err != nil {
				return err
			}

			rangeExpr := util.DefaultRange()

			if len(args) == 1 {
				rangeExpr = args[0]
			}

			_, records, err := cachedRecords(store, rangeExpr)

			if err != nil {
				return err
			}

			if out == "-" {
				return export.Write(cmd.OutOrStdout(), f, records)
			}

			if out == "" {
				out = export.FileName(f, time.Now())
			}

			if err := export.WriteFile(out, f, records); err != nil {
				return err
			}

			log.Info().Str("file", out).Int("hosts", len(records)).Msg("exported results")

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "Export format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout")

	return cmd
}
