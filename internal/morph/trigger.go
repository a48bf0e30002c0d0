package morph

import (
	"path/filepath"
	"strings"
)

// Trigger is a conversion command parsed from a filename's final extension.
type Trigger struct {
	TargetExt   string
	Destructive bool
}

// ParseTrigger parses a raw extension (the part after the final '.') against the
// trigger grammar: "!!ext" is a destructive command, "!ext" a non-destructive one.
// Matching is case-insensitive. Anything else is not a command.
func ParseTrigger(rawExt string) (Trigger, bool) {
	lower := strings.ToLower(rawExt)

	var t Trigger
	switch {
	case strings.HasPrefix(lower, "!!"):
		t = Trigger{TargetExt: lower[2:], Destructive: true}
	case strings.HasPrefix(lower, "!"):
		t = Trigger{TargetExt: lower[1:]}
	default:
		return Trigger{}, false
	}

	if t.TargetExt == "" || strings.ContainsAny(t.TargetExt, "!./") {
		return Trigger{}, false
	}
	return t, true
}

// SplitTrigger locates a trigger inside a file name. The trigger lives in the final
// name token (after the last '.', or the whole name when there is none) and starts
// at that token's first '!'. It returns the stem the destination is built from.
//
//	report.docx!pdf -> stem "report", target "pdf"
//	notes.!!md      -> stem "notes",  target "md" (destructive)
//	album!pdf       -> stem "album",  target "pdf"
func SplitTrigger(name string) (stem string, trigger Trigger, ok bool) {
	if name == "" || strings.HasPrefix(name, ".") {
		return "", Trigger{}, false
	}

	token := name
	stem = ""
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		stem = name[:dot]
		token = name[dot+1:]
	}

	bang := strings.Index(token, "!")
	if bang < 0 {
		return "", Trigger{}, false
	}
	if stem == "" {
		stem = token[:bang]
	}
	if stem == "" {
		return "", Trigger{}, false
	}

	trigger, ok = ParseTrigger(token[bang:])
	if !ok {
		return "", Trigger{}, false
	}
	return stem, trigger, true
}

// DestinationFor returns the clean path a triggered path converts to, e.g.
// /home/u/notes.md!pdf -> /home/u/notes.pdf.
func DestinationFor(path string) (string, Trigger, bool) {
	stem, trigger, ok := SplitTrigger(filepath.Base(path))
	if !ok {
		return "", Trigger{}, false
	}
	return filepath.Join(filepath.Dir(path), stem+"."+trigger.TargetExt), trigger, true
}
