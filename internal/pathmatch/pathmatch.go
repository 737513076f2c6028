// Package pathmatch implements shell-style glob matching over site-relative paths.
//
// Patterns follow fnmatch semantics: `*` matches any run of characters including the
// path separator, `?` matches a single character and `[...]` matches a character class.
// Paths are always compared in slash form.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether a relative path matches any of a set of glob patterns.
type Matcher struct {
	patterns []string
	compiled []*regexp.Regexp
}

// Compile builds a Matcher from glob patterns. Blank patterns are skipped.
func Compile(globs []string) (*Matcher, error) {
	m := &Matcher{}
	for _, g := range globs {
		if strings.TrimSpace(g) == "" {
			continue
		}
		r, err := regexp.Compile(globToRegex(g))
		if err != nil {
			return nil, fmt.Errorf("compile glob %s: %w", g, err)
		}
		m.patterns = append(m.patterns, g)
		m.compiled = append(m.compiled, r)
	}
	return m, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and constants.
func MustCompile(globs ...string) *Matcher {
	m, err := Compile(globs)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether rel matches any pattern. A nil Matcher matches nothing.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	for _, rx := range m.compiled {
		if rx.MatchString(rel) {
			return true
		}
	}
	return false
}

// Patterns returns the source globs in configuration order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// globToRegex converts a shell-style glob to an anchored regex string.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			b.WriteByte('[')
			if strings.HasPrefix(class, "!") {
				b.WriteByte('^')
				class = class[1:]
			}
			b.WriteString(strings.ReplaceAll(class, `\`, `\\`))
			b.WriteByte(']')
			i += end + 1
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return b.String()
}
