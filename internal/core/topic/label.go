// Package topic defines topic labels, their extraction from captions, and the
// directory that maps labels to destination threads.
package topic

import (
	"regexp"
	"strings"
)

// MaxLabelLength is the longest label, in code points, a forum thread name may carry.
const MaxLabelLength = 128

// Label is a trimmed, case-sensitive topic name taken from a message caption.
type Label string

var markerRe = regexp.MustCompile(`(?i)topic:`)

// Extract returns the label following the first "Topic:" marker in text.
//
// The label is the rest of the marker's line with surrounding whitespace removed.
// ok is false when text is empty, has no marker, or the marker's line is blank.
// Markers after the first one are never considered.
func Extract(text string) (label Label, ok bool) {
	if text == "" {
		return "", false
	}

	loc := markerRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return Label(rest), true
}

// Truncate cuts l to MaxLabelLength code points.
func Truncate(l Label) Label {
	n := 0
	for i := range string(l) {
		if n == MaxLabelLength {
			return l[:i]
		}
		n++
	}
	return l
}
