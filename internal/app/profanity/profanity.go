/*
Package profanity adapts a third-party profanity detector to the single predicate
the chat protocol needs: whether a piece of text should be rejected.
*/
package profanity

import (
	goaway "github.com/TwiN/go-away"
)

// Detector wraps a go-away profanity detector.
type Detector struct {
	detector *goaway.ProfanityDetector
}

// NewFilter returns a Detector using go-away's default dictionaries.
func NewFilter() *Detector {
	return &Detector{detector: goaway.NewProfanityDetector()}
}

// IsProfane reports whether text contains profanity.
func (d *Detector) IsProfane(text string) bool {
	return d.detector.IsProfane(text)
}

type disabled struct{}

func (disabled) IsProfane(string) bool { return false }

// Disabled never flags any text.
var Disabled = disabled{}
