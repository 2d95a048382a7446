package commands

import (
	"errors"
	"fmt"

	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/targets"
	"github.com/spf13/viper"
)

func openCache() (*cache.JSONStore, error) {
	cachePath, err := cache.ResolvePath(viper.GetString("cache-file"))

	if err != nil {
		return nil, err
	}

	return cache.NewJSONStore(cachePath), nil
}

// cachedRecords returns the cached entry and its records for a range
// expression
func cachedRecords(store cache.Store, expr string) (*cache.Entry, []host.Record, error) {
	key, err := targets.NormalizeKey(expr)

	if err != nil {
		return nil, nil, err
	}

	entry, err := store.Get(key)

	if errors.Is(err, exception.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("no cached results for %s", key)
	}

	if err != nil {
		return nil, nil, err
	}

	records, err := entry.Records()

	if err != nil {
		return nil, nil, err
	}

	return entry, records, nil
}
