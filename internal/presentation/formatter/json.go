package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-start-clock/internal/core/model"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) Format(listing Listing) error {
	if listing.Entries == nil {
		listing.Entries = []model.Entry{}
	}
	data, err := sonic.MarshalIndent(listing, "", "  ")
	if err != nil {
		return err
	}
	if _, err := f.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
