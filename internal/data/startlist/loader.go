package startlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/penwyp/go-start-clock/internal/core/constants"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

// ExampleURL is a public start list used by --example
const ExampleURL = "https://online.tulospalvelu.fi/tulokset-new/xml/startlist_2025_smyo_1_iof.xml"

// ErrLoad marks every failure to fetch or parse a start list
var ErrLoad = errors.New("failed to load start list")

// LoadError records which source failed
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s from %s: %v", ErrLoad, e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// Loader fetches and parses start lists
type Loader struct {
	client   *resty.Client
	location *time.Location
	now      func() time.Time
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLocation sets the zone for start times that carry no offset
func WithLocation(loc *time.Location) LoaderOption {
	return func(l *Loader) { l.location = loc }
}

// WithNow overrides the time used for a missing event date
func WithNow(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// WithTimeout overrides the HTTP timeout
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.client.SetTimeout(d) }
}

// NewLoader creates a loader with a 30s HTTP timeout
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client: resty.New().
			SetTimeout(constants.LoadTimeout).
			SetHeader("Accept", "application/xml, text/xml").
			SetHeader("User-Agent", "go-start-clock"),
		location: util.GetTimeProvider().Location(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsURL reports whether source should be fetched over HTTP
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads source, an http(s) URL or a local file path, and parses it
func (l *Loader) Load(ctx context.Context, source string) (*model.StartList, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, &LoadError{Source: source, Err: errors.New("no source given")}
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	if IsURL(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	list, err := Parse(data, ParseOptions{Location: l.location, Today: l.now()})
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	util.LogInfof("Loaded %d starts in %d classes from %s in %v",
		len(list.Entries), len(list.Classes), source, time.Since(start))
	return list, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status())
	}
	return resp.Body(), nil
}
