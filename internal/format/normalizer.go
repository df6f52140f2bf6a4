// Package format turns raw model text into presentation text.
package format

import (
	"fmt"
	"strings"
)

type Policy string

const (
	PolicySpacing    Policy = "spacing"
	PolicyStructured Policy = "structured"
)

const (
	HeadingMarker  = "Heading:"
	ContentMarker  = "Content:"
	FollowUpMarker = "Follow-up Question:"
)

// Normalizer is a pure function of the raw text.
type Normalizer func(raw string) string

func New(policy Policy) Normalizer {
	if policy == PolicyStructured {
		return Structured
	}
	return Spacing
}

// Spacing expands every line break into a paragraph break.
func Spacing(raw string) string {
	return strings.ReplaceAll(raw, "\n", "\n\n")
}

// Structured composes heading, content and follow-up when all three labeled
// lines are present, and otherwise applies Spacing to the whole input.
func Structured(raw string) string {
	heading, content, followUp, ok := extract(raw)
	if !ok {
		return Spacing(raw)
	}
	return fmt.Sprintf("**%s**\n\n%s\n\n**%s**", heading, content, followUp)
}

func extract(raw string) (heading, content, followUp string, ok bool) {
	var found [3]bool
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimLeft(line, " \t")
		switch {
		case !found[0] && strings.HasPrefix(line, HeadingMarker):
			heading = strings.TrimSpace(strings.TrimPrefix(line, HeadingMarker))
			found[0] = true
		case !found[1] && strings.HasPrefix(line, ContentMarker):
			content = strings.TrimSpace(strings.TrimPrefix(line, ContentMarker))
			found[1] = true
		case !found[2] && strings.HasPrefix(line, FollowUpMarker):
			followUp = strings.TrimSpace(strings.TrimPrefix(line, FollowUpMarker))
			found[2] = true
		}
	}
	return heading, content, followUp, found[0] && found[1] && found[2]
}
