package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"parquet-meta/internal/domain"
)

// WriteJSON writes records as an indented JSON array. A nil slice is
// written as an empty array.
func WriteJSON(w io.Writer, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

// WriteTable writes records as aligned columns under an upper-cased header.
func WriteTable(w io.Writer, records []domain.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	upper := make([]string, len(Header))
	for i, h := range Header {
		upper[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(tw, strings.Join(upper, "\t"))
	for _, r := range records {
		fmt.Fprintln(tw, strings.Join([]string{
			r.File, r.Column, r.Type.String(), r.Observations.String(), r.Description,
		}, "\t"))
	}
	return tw.Flush()
}
