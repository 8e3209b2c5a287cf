package importer

import (
	"regexp"
	"strings"
)

// PatchStatus describes what PatchModel did to a footprint.
type PatchStatus int

const (
	// ModelReplaced means existing (model ...) references were rewritten.
	ModelReplaced PatchStatus = iota
	// ModelAdded means a new (model ...) block was appended.
	ModelAdded
	// ModelUnmatched means a (model token was present but no reference could be parsed.
	ModelUnmatched
)

func (s PatchStatus) String() string {
	switch s {
	case ModelReplaced:
		return "replaced"
	case ModelAdded:
		return "added"
	default:
		return "unmatched"
	}
}

// modelRef matches the path argument of a (model ...) expression, quoted or not.
var modelRef = regexp.MustCompile(`(\(model\s+)("[^"]*"|[^()\s"]+)(\s)`)

// PatchModel points every (model ...) reference in a footprint at
// modelPath. A footprint without a model gets a block with zero offset, unit
// scale and zero rotation inserted before its final closing parenthesis.
func PatchModel(content, modelPath string) (string, PatchStatus) {
	quoted := `"` + modelPath + `"`

	if strings.Contains(content, "(model") {
		if !modelRef.MatchString(content) {
			return content, ModelUnmatched
		}
		// A func replacement keeps "${VAR}" in modelPath from being expanded.
		out := modelRef.ReplaceAllStringFunc(content, func(m string) string {
			sub := modelRef.FindStringSubmatch(m)
			return sub[1] + quoted + sub[3]
		})
		return out, ModelReplaced
	}

	block := "\n  (model " + quoted + "\n" +
		"    (offset (xyz 0 0 0))\n" +
		"    (scale (xyz 1 1 1))\n" +
		"    (rotate (xyz 0 0 0))\n" +
		"  )"

	trimmed := strings.TrimRight(content, " \t\r\n")
	idx := strings.LastIndex(trimmed, ")")
	if idx == -1 {
		return content + block + "\n", ModelAdded
	}
	return trimmed[:idx] + block + "\n)\n", ModelAdded
}
