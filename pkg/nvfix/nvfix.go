// Package nvfix reads and writes the SOH-delimited tag=value wire format
// and the hybrid form: a JSON object followed by an SOH metadata tail.
package nvfix

import (
	"errors"
	"fmt"
	"strings"
)

// SOH is the field delimiter, FIX style.
const SOH = "\x01"

// Field is a single tag=value pair in wire order.
type Field struct {
	Tag   string
	Value string
}

// ParseError reports a malformed message and carries the original text.
// A parse never partially applies: callers get fields or an error.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nvfix parse failed: %s, raw:%s", e.Err, e.Raw)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(raw string, msg string) *ParseError {
	return &ParseError{Raw: raw, Err: errors.New(msg)}
}

// Split parses an SOH-delimited sequence of tag=value pairs, preserving
// wire order. Empty segments (e.g. a trailing SOH) are skipped.
func Split(s string) (fields []Field, err error) {
	segs := strings.Split(s, SOH)
	for _, seg := range segs {
		if seg == "" {
			continue
		}

		i := strings.IndexByte(seg, '=')
		if i <= 0 {
			err = newParseError(s, "segment without tag=value: "+seg)
			return nil, err
		}

		fields = append(fields, Field{Tag: seg[:i], Value: seg[i+1:]})
	}

	return
}

// Join renders fields back to the wire form, each pair terminated by SOH.
func Join(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.Tag)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteString(SOH)
	}
	return b.String()
}

// Get returns the first value of the tag in wire order.
func Get(fields []Field, tag string) (v string, ok bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return
}
