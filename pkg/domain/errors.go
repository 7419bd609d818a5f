package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrClosed is returned by channel operations after the channel was closed.
var ErrClosed = errors.New("channel is closed")

// Failure names the probe reports in its error envelope.
const (
	InvalidWidgetPath      = "InvalidWidgetPath"
	NotRegisteredObject    = "NotRegisteredObject"
	NoActiveWindow         = "NoActiveWindow"
	MissingModel           = "MissingModel"
	NotAModel              = "NotAModel"
	MissingModelItem       = "MissingModelItem"
	MissingItemAction      = "MissingItemAction"
	MissingGraphicsItem    = "MissingGraphicsItem"
	GraphicsItemNotObject  = "GraphicsItemNotObject"
	MissingHeaderViewText  = "MissingHeaderViewText"
	InvalidHeaderView      = "InvalidHeaderView"
	InvalidHeaderViewIndex = "InvalidHeaderViewIndex"
	NoMethodInvoked        = "NoMethodInvoked"
	InvalidDirection       = "InvalidDirection"
	InvalidQuickItem       = "InvalidQuickItem"
	NoWindowForQuickItem   = "NoWindowForQuickItem"

	// MissingEditor is raised locally when no editor widget is open inside
	// an item view. It uses the probe's error shape so callers handle both
	// origins uniformly.
	MissingEditor = "MissingEditor"
)

// RemoteError is a failure reported by the probe. It crosses the channel
// untouched: nothing in this module catches or rewrites one.
type RemoteError struct {
	Name        string
	Description string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Description)
}

// IsRemote reports whether err is a probe failure with the given name.
func IsRemote(err error, name string) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Name == name
}

// InvalidArgumentError reports a value that failed local validation.
// No command has been sent when one is returned.
type InvalidArgumentError struct {
	Argument string
	Value    string
	Allowed  []string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q, expected one of: %s",
		e.Argument, e.Value, strings.Join(e.Allowed, ", "))
}

// NotFoundError reports a lookup that enumerated real candidates and found
// no match for the requested value.
type NotFoundError struct {
	Entity     string   // what was looked up: "combobox text", "tab", "item", ...
	Value      string   // the requested value
	Location   string   // where the lookup ran, usually a widget path
	Candidates []string // the values that were actually there
	Err        error    // optional underlying cause
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q not found", e.Entity, e.Value)
	if e.Location != "" {
		fmt.Fprintf(&b, " in %s", e.Location)
	}
	if hint := closestMatch(e.Value, e.Candidates); hint != "" {
		fmt.Fprintf(&b, " (closest match: %q)", hint)
	} else if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (have: %s)", strings.Join(capped(e.Candidates, 6), ", "))
	}
	return b.String()
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// closestMatch returns the candidate nearest to value by edit distance,
// ignoring case, when that distance is small relative to the length.
func closestMatch(value string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToUpper(value), strings.ToUpper(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	longest := max(len(value), len(best))
	if longest == 0 || float64(bestDist)/float64(longest) >= 0.4 {
		return ""
	}
	return best
}

func capped(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return append(values[:n:n], "...")
}
