package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/logger"
)

// JSONStore is our Store implementation for a flat json file
type JSONStore struct {
	path    string
	entries map[string]*Entry
	mux     sync.Mutex
	log     logger.Logger
}

// NewJSONStore returns a new store backed by the json file at path. A
// missing or corrupt file results in an empty cache.
func NewJSONStore(path string) *JSONStore {
	store := &JSONStore{
		path:    path,
		entries: map[string]*Entry{},
		mux:     sync.Mutex{},
		log:     logger.New(),
	}

	entries, err := store.read()

	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			store.log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable cache file")
		}
	} else {
		store.entries = entries
	}

	return store
}

// Path returns the location of the cache file
func (s *JSONStore) Path() string {
	return s.path
}

// Get returns the cached entry for a normalized range key
func (s *JSONStore) Get(key string) (*Entry, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	entry, ok := s.entries[key]

	if !ok {
		return nil, exception.ErrRecordNotFound
	}

	return copyEntry(entry), nil
}

// Keys returns all cached range keys sorted
func (s *JSONStore) Keys() []string {
	s.mux.Lock()
	defer s.mux.Unlock()

	keys := make([]string, 0, len(s.entries))

	for k := range s.entries {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Save replaces the entry for entry.Range and atomically rewrites the file.
// Entries written by other processes for other ranges are preserved.
// Entries without hosts are ignored.
func (s *JSONStore) Save(entry *Entry) error {
	if entry == nil || entry.Range == "" {
		return errors.New("cache entry range cannot be empty")
	}

	if len(entry.Hosts) == 0 {
		s.log.Debug().Str("range", entry.Range).Msg("skipping save of empty cache entry")
		return nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	merged := s.mergeWithDisk()
	merged[entry.Range] = copyEntry(entry)

	if err := s.write(merged); err != nil {
		return err
	}

	s.entries = merged

	return nil
}

// Remove deletes a cached entry
func (s *JSONStore) Remove(key string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	merged := s.mergeWithDisk()

	if _, ok := merged[key]; !ok {
		return exception.ErrRecordNotFound
	}

	delete(merged, key)

	if err := s.write(merged); err != nil {
		return err
	}

	s.entries = merged

	return nil
}

func (s *JSONStore) mergeWithDisk() map[string]*Entry {
	merged := make(map[string]*Entry, len(s.entries))

	for k, v := range s.entries {
		merged[k] = v
	}

	onDisk, err := s.read()

	if err == nil {
		for k, v := range onDisk {
			merged[k] = v
		}
	}

	return merged
}

func (s *JSONStore) read() (map[string]*Entry, error) {
	data, err := os.ReadFile(s.path)

	if err != nil {
		return nil, err
	}

	entries := map[string]*Entry{}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt cache file: %w", err)
	}

	for k, v := range entries {
		if v == nil {
			delete(entries, k)
			continue
		}

		v.Range = k
	}

	return entries, nil
}

// write marshals entries to a temp file next to the cache file then
// renames it into place
func (s *JSONStore) write(entries map[string]*Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")

	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")

	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}

	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	s.log.Debug().Str("path", s.path).Int("entries", len(entries)).Msg("wrote cache file")

	return nil
}

// helpers
func copyEntry(e *Entry) *Entry {
	c := *e
	c.Ports = slices.Clone(e.Ports)
	c.Hosts = make([]HostEntry, len(e.Hosts))

	for i, h := range e.Hosts {
		h.OpenPorts = slices.Clone(h.OpenPorts)
		c.Hosts[i] = h
	}

	return &c
}
