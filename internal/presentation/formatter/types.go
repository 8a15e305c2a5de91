package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
)

// Listing is what the list command prints
type Listing struct {
	EventName  string        `json:"eventName"`
	EventDate  time.Time     `json:"eventDate"`
	StartGroup string        `json:"startName,omitempty"`
	Entries    []model.Entry `json:"entries"`
}

// Formatter writes a listing in one output format
type Formatter interface {
	Format(listing Listing) error
}

// Supported output formats
const (
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatSummary = "summary"
)

// Formats lists the accepted --output values
var Formats = []string{FormatTable, FormatJSON, FormatCSV, FormatSummary}

// New returns the formatter for name writing to w (stdout when nil)
func New(name string, w io.Writer) (Formatter, error) {
	if w == nil {
		w = os.Stdout
	}
	switch strings.ToLower(name) {
	case FormatTable, "":
		return NewTableFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatSummary:
		return NewSummaryFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

func formatStart(t time.Time) string {
	return util.FormatClock(t)
}
