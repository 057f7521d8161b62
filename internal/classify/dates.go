package classify

import (
	"time"

	"github.com/araddon/dateparse"
)

// dateFormat pairs a strftime-style format (the form shown in reports)
// with the equivalent Go layout.
type dateFormat struct {
	Format string
	Layout string
}

// explicitDateFormats are tried in order against a single sample value.
var explicitDateFormats = []dateFormat{
	{Format: "%Y-%m-%d", Layout: "2006-1-2"},
	{Format: "%d/%m/%Y", Layout: "2/1/2006"},
	{Format: "%m/%d/%Y", Layout: "1/2/2006"},
	{Format: "%Y%m%d", Layout: "20060102"},
}

// parseDateTime is the lenient parser used to decide whether a whole
// textual column holds date/time values.
func parseDateTime(s string) bool {
	_, err := dateparse.ParseIn(s, time.UTC)
	return err == nil
}

// allDateTimes reports whether every value is a string the lenient parser
// accepts. values must be non-empty.
func allDateTimes(values []any) bool {
	for _, v := range values {
		s, ok := v.(string)
		if !ok || !parseDateTime(s) {
			return false
		}
	}
	return true
}

// matchDateFormat returns the first explicit format that parses sample.
func matchDateFormat(sample string) (string, bool) {
	for _, f := range explicitDateFormats {
		if _, err := time.Parse(f.Layout, sample); err == nil {
			return f.Format, true
		}
	}
	return "", false
}
