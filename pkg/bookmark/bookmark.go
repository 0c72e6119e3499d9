// Package bookmark resolves the replay positions of the recall streams.
// A bookmark is a UTC instant with 100ns precision; a missing or broken
// bookmark degrades to "no filter" so recovery always proceeds.
package bookmark

import (
	"strings"
	"time"

	"rrs/pkg/xlog"
)

var logger = xlog.GetLogger()

const layout = "20060102T150405.0000000Z0700"

// Parse decodes a bookmark timestamp of the form
// YYYYMMDDThhmmss.fffffffZ. A trailing comma segment is truncated. The
// second return is false when there is no usable filter: empty input, or
// a parse failure which is logged at WARN and never fatal.
func Parse(s string) (t time.Time, ok bool) {
	if s == "" {
		return
	}

	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		logger.Warningf("bookmark parse failed, recovering without filter, raw:%s err:%s", s, err)
		return time.Time{}, false
	}

	return t, true
}

// Format renders an instant in the bookmark wire form, UTC with seven
// fractional digits.
func Format(t time.Time) string {
	return t.UTC().Format(layout)
}
