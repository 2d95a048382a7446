package cache

//go:generate mockgen -destination=../mock/cache/mock_cache.go -package=mock_cache . Store

// DefaultFileName cache file name used when no path is configured
const DefaultFileName = "ipscannr_cache.json"

// EnvCacheFile environment variable overriding the cache file path
const EnvCacheFile = "IPSCANNR_CACHE_FILE"

// Store interface representing access to cached scan results keyed by
// normalized range
type Store interface {
	Get(key string) (*Entry, error)
	Save(entry *Entry) error
	Remove(key string) error
	Keys() []string
	Path() string
}
