package startclock

import (
	"context"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/data/store"
	"github.com/penwyp/go-start-clock/internal/util"
)

// LoadResult is a resolved start list and where it came from
type LoadResult struct {
	List      *model.StartList
	Source    string
	FromCache bool
	// Err is the load failure that made the loader fall back to the cache
	Err error
}

// DataLoader resolves the start list from its source or the saved cache,
// and remembers every successful load.
type DataLoader struct {
	source ScheduleSource
	store  store.Store // nil disables persistence
	now    func() time.Time
}

// NewDataLoader creates a new DataLoader instance
func NewDataLoader(source ScheduleSource, st store.Store, now func() time.Time) *DataLoader {
	if now == nil {
		now = time.Now
	}
	return &DataLoader{source: source, store: st, now: now}
}

// Saved returns the persisted state, or nil when there is none or it is
// unreadable
func (dl *DataLoader) Saved() *store.State {
	if dl.store == nil {
		return nil
	}
	state, err := dl.store.Load()
	if err != nil {
		return nil
	}
	return state
}

// Initial resolves the list shown at startup. With no source the cached
// list is restored, or its source fetched again when only the URL was
// kept. A failed load falls back to the cache of the same source. An empty
// result with a nil error means nothing is available yet.
func (dl *DataLoader) Initial(ctx context.Context, source string) (LoadResult, error) {
	saved := dl.Saved()
	hasCache := saved != nil && saved.CachedStartList != nil

	if source == "" {
		switch {
		case hasCache:
			util.LogInfof("Restored cached start list from %s (saved %s)", saved.SourceURL, saved.LastUpdated.Format(time.DateTime))
			return LoadResult{List: saved.CachedStartList, Source: saved.SourceURL, FromCache: true}, nil
		case saved != nil && saved.SourceURL != "":
			source = saved.SourceURL
		default:
			return LoadResult{}, nil
		}
	}

	list, err := dl.Reload(ctx, source)
	if err != nil {
		if hasCache && saved.SourceURL == source {
			util.LogWarnf("Using cached start list: %v", err)
			return LoadResult{List: saved.CachedStartList, Source: source, FromCache: true, Err: err}, nil
		}
		return LoadResult{}, err
	}
	return LoadResult{List: list, Source: source}, nil
}

// Reload fetches source and caches the result
func (dl *DataLoader) Reload(ctx context.Context, source string) (*model.StartList, error) {
	list, err := dl.source.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if dl.store != nil {
		// failures are logged by the store and never fatal
		_ = store.SaveStartList(dl.store, list, source, dl.now())
	}
	return list, nil
}

// SaveStartGroup remembers the selected start group
func (dl *DataLoader) SaveStartGroup(group string) {
	if dl.store == nil {
		return
	}
	_ = dl.store.Update(func(s *store.State) {
		s.SelectedStartGroup = group
	})
}

// ClearSaved removes all persisted state
func (dl *DataLoader) ClearSaved() error {
	if dl.store == nil {
		return nil
	}
	return dl.store.Clear()
}
