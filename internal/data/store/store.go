// Package store persists the clock's settings and the last loaded start
// list as a single JSON document.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/bytedance/sonic"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

const (
	AppSlug    = "go-start-clock"
	StorageKey = "kellokalle-config"
)

// ErrPersistence marks read or write failures of the state file. Callers
// log it and carry on without saved state.
var ErrPersistence = errors.New("persistence failed")

// State is everything remembered between runs
type State struct {
	SourceURL          string           `json:"startListUrl,omitempty"`
	CachedStartList    *model.StartList `json:"cachedStartList,omitempty"`
	LastUpdated        time.Time        `json:"lastUpdated,omitempty"`
	SelectedStartGroup string           `json:"selectedStartName,omitempty"`
	Simulation         *bool            `json:"simulation,omitempty"`
}

// Store loads and saves State
type Store interface {
	Load() (*State, error)
	Save(state State) error
	Update(fn func(*State)) error
	Clear() error
	Path() string
}

// FileStore keeps State in <dir>/kellokalle-config.json
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// DefaultDir is the XDG state directory for the application
func DefaultDir() string {
	return filepath.Join(xdg.StateHome, AppSlug)
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create state directory: %v", ErrPersistence, err)
	}
	return &FileStore{path: filepath.Join(dir, StorageKey+".json")}, nil
}

// Path returns the state file location
func (s *FileStore) Path() string {
	return s.path
}

// Load returns nil without error when nothing has been saved yet. A corrupt
// file yields nil state and an ErrPersistence error.
func (s *FileStore) Load() (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			util.LogDebugf("No saved state at %s", s.path)
			return nil, nil
		}
		return nil, s.fail("read state file", err)
	}

	var state State
	if err := sonic.Unmarshal(data, &state); err != nil {
		return nil, s.fail("decode state file", err)
	}

	if state.CachedStartList != nil {
		util.LogDebugf("Loaded saved state: source=%s, starts=%d, updated=%s",
			state.SourceURL, len(state.CachedStartList.Entries), state.LastUpdated.Format(time.DateTime))
	}
	return &state, nil
}

// Save replaces the stored state, writing through a temp file
func (s *FileStore) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *FileStore) save(state State) error {
	data, err := sonic.MarshalIndent(state, "", "  ")
	if err != nil {
		return s.fail("encode state", err)
	}

	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return s.fail("write state file", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		os.Remove(tmpFile)
		return s.fail("rename state file", err)
	}
	return nil
}

// Update applies fn to the stored state (empty when none or unreadable)
// and saves the result.
func (s *FileStore) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil || state == nil {
		state = &State{}
	}
	fn(state)
	return s.save(*state)
}

// Clear removes the state file
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return s.fail("remove state file", err)
	}
	util.LogInfof("Cleared saved state %s", s.path)
	return nil
}

func (s *FileStore) fail(op string, err error) error {
	wrapped := fmt.Errorf("%w: %s %s: %v", ErrPersistence, op, s.path, err)
	util.LogWarn(wrapped.Error())
	return wrapped
}

// SaveStartList remembers a freshly loaded list and where it came from,
// keeping the other settings.
func SaveStartList(s Store, list *model.StartList, source string, now time.Time) error {
	return s.Update(func(state *State) {
		state.SourceURL = source
		state.CachedStartList = list
		state.LastUpdated = now
	})
}
