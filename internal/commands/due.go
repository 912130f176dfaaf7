package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dueParser understands English phrases ("tomorrow", "next friday at 5pm",
// "in 3 days") and dd/mm/yyyy dates.
var dueParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDue parses a due date relative to now. ISO dates (2006-01-02) are
// accepted as local midnight.
func parseDue(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("invalid due date: %q", text)
	}
	if t, err := time.ParseInLocation("2006-01-02", text, now.Location()); err == nil {
		return t, nil
	}

	r, err := dueParser.Parse(text, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date: %s: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid due date: %s", text)
	}
	return r.Time, nil
}

// clearsValue reports whether an edit flag value means "remove the field".
func clearsValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "-":
		return true
	}
	return false
}
