package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreRules is an ordered list of fnmatch-style patterns. A path is
// ignored when any pattern matches it.
type IgnoreRules struct {
	patterns []string
	compiled []*regexp.Regexp
}

// NewIgnoreRules compiles the given patterns.
func NewIgnoreRules(patterns []string) (*IgnoreRules, error) {
	r := &IgnoreRules{}
	for _, p := range patterns {
		re, err := regexp.Compile(translate(p))
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, p)
		r.compiled = append(r.compiled, re)
	}
	return r, nil
}

// LoadIgnoreRules reads fileName from repoRoot. A missing file yields an
// empty rule set. Blank lines and lines starting with # are skipped.
func LoadIgnoreRules(repoRoot, fileName string) (*IgnoreRules, error) {
	path := filepath.Join(repoRoot, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &IgnoreRules{}, nil
		}
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}

	content := strings.TrimPrefix(string(data), "\ufeff")
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return NewIgnoreRules(patterns)
}

// Patterns returns the patterns in file order.
func (r *IgnoreRules) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// Len returns the number of patterns.
func (r *IgnoreRules) Len() int { return len(r.patterns) }

// Match reports whether rel, a slash-separated path relative to the
// repository root, is matched by any pattern.
func (r *IgnoreRules) Match(rel string) bool {
	if r == nil {
		return false
	}
	for _, re := range r.compiled {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// translate converts an fnmatch pattern into an anchored regular expression.
// '*' and '?' match any character including '/'; "[...]" is a character
// class and "[!...]" its negation. An unterminated '[' is literal.
func translate(pat string) string {
	var b strings.Builder
	b.WriteString(`(?s)\A`)

	for i := 0; i < len(pat); i++ {
		c := pat[i]
		switch c {
		case '*':
			// Collapse runs of '*'.
			for i+1 < len(pat) && pat[i+1] == '*' {
				i++
			}
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(pat) && pat[j] == '!' {
				j++
			}
			if j < len(pat) && pat[j] == ']' {
				j++
			}
			for j < len(pat) && pat[j] != ']' {
				j++
			}
			if j >= len(pat) {
				b.WriteString(`\[`)
				continue
			}
			class := pat[i+1 : j]
			i = j
			negate := strings.HasPrefix(class, "!")
			if negate {
				class = class[1:]
			}
			b.WriteString(translateClass(class, negate))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(`\z`)
	return b.String()
}

// translateClass renders the body of a "[...]" class. Reversed ranges such as
// "z-a" match nothing and are dropped; a class left empty never matches, or
// matches any character when negated.
func translateClass(class string, negate bool) string {
	chars := []rune(class)
	var items strings.Builder
	for k := 0; k < len(chars); k++ {
		lo := chars[k]
		if k+2 < len(chars) && chars[k+1] == '-' {
			hi := chars[k+2]
			k += 2
			if lo > hi {
				continue
			}
			items.WriteString(classChar(lo) + "-" + classChar(hi))
			continue
		}
		items.WriteString(classChar(lo))
	}

	if items.Len() == 0 {
		if negate {
			return "."
		}
		return `[^\x00-\x{10FFFF}]`
	}
	if negate {
		return "[^" + items.String() + "]"
	}
	return "[" + items.String() + "]"
}

// classChar escapes a rune for use inside a regexp character class.
func classChar(r rune) string {
	switch r {
	case '\\', ']', '[', '^', '-':
		return `\` + string(r)
	}
	return string(r)
}
