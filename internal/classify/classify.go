// Package classify flags likely person photographs in fetched pages using
// lexical heuristics over filenames, alt text, and captions. Ties resolve
// to "not a person".
package classify

import "strings"

// personCues suggest a photo of a person.
var personCues = []string{
	"team", "staff", "employee", "founder", "ceo", "president",
	"director", "manager", "headshot", "profile", "people",
	"leadership", "executive", "member", "portrait",
}

// negativeCues suggest anything but a person and veto the classification.
var negativeCues = []string{
	"logo", "icon", "banner", "background", "product",
	"chart", "graph", "diagram", "screenshot",
}

// Result is a classification verdict. Matched carries the cues that fired,
// as the confidence signal.
type Result struct {
	IsPersonLikely bool
	Matched        []string
}

// Classify judges one image from its source path, alt text, and caption.
// Negative cues win over positive ones.
func Classify(src, alt, caption string) Result {
	text := strings.ToLower(src + " " + alt + " " + caption)

	for _, cue := range negativeCues {
		if strings.Contains(text, cue) {
			return Result{Matched: []string{cue}}
		}
	}

	var matched []string
	for _, cue := range personCues {
		if strings.Contains(text, cue) {
			matched = append(matched, cue)
		}
	}
	return Result{IsPersonLikely: len(matched) > 0, Matched: matched}
}
