package xlog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// consoleWriter mirrors the JSON log stream to stdout in a compact,
// optionally colored, human format.
type consoleWriter struct {
	Enabled bool
	Color   bool
}

var console consoleWriter

func (l *consoleWriter) Write(p []byte) (n int, err error) {
	if !l.Enabled {
		return
	}

	entry := map[string]interface{}{}
	err = json.Unmarshal(p, &entry)
	if err != nil {
		return
	}

	s := ""
	for k, v := range entry {
		if strings.HasPrefix(k, "x-") {
			s += k + ":" + fmt.Sprint(v) + " "
		}
	}
	if len(s) > 0 {
		s = "{ " + s + "}"
	}
	pre, sub := "", ""
	if l.Color {
		pre, sub = FixColor(fmt.Sprintf("%s", entry["level"]))
	}
	tStr := fmt.Sprintf("%s", entry["time"])
	t, err := time.Parse("2006-01-02T15:04:05.999Z07:00", tStr)
	if err == nil {
		tStr = t.Format("2006/01/02 15:04:05")
	}

	fname := ""
	f, ok := entry["file"]
	if ok {
		fname, _ = f.(string)
	}

	if len(fname) < 20 {
		fname = fname + strings.Repeat(" ", 20-len(fname))
	}
	if len(fname) > 20 {
		fname = fname[len(fname)-20:]
	}

	fmt.Printf(pre+"[%s] %s %s: %s %s"+sub+"\n", entry["app"], tStr, fname, entry["msg"], s)

	return n, err
}
