package formatter

import (
	"encoding/csv"
	"io"
	"time"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) Format(listing Listing) error {
	w := csv.NewWriter(f.w)

	headers := []string{
		"StartTime", "Name", "Class", "Organisation", "BibNumber", "ControlCard", "StartName",
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, e := range listing.Entries {
		record := []string{
			e.StartTime.Format(time.RFC3339),
			e.PersonName,
			e.ClassName,
			e.Organisation,
			e.BibNumber,
			e.ControlCard,
			e.StartGroup,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
