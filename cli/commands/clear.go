package commands

import (
	"errors"
	"os"

	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/targets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/**
 * Command to remove cached results, scan history, and log files
 */
func clear() *cobra.Command {
	var rangeExpr string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clears cached results, scan history, and log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()

			if rangeExpr != "" {
				key, err := targets.NormalizeKey(rangeExpr)

				if err != nil {
					return err
				}

				store, err := openCache()

				if err != nil {
					return err
				}

				if err := store.Remove(key); err != nil {
					if errors.Is(err, exception.ErrRecordNotFound) {
						log.Info().Str("range", key).Msg("nothing cached for range")
						return nil
					}

					return err
				}

				log.Info().Str("range", key).Msg("removed cached results")

				return nil
			}

			for _, name := range []string{"cache-file", "database-file", "log-file"} {
				file := viper.GetString(name)

				if file == "" {
					continue
				}

				if err := os.RemoveAll(file); err != nil {
					return err
				}

				log.Info().Str("file", file).Msgf("removed %s", name)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeExpr, "range", "r", "", "Only remove cached results for this range")

	return cmd
}
