// Package extraction pulls structured image prompt segments out of chat text.
package extraction

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/timmy/picprompt/internal/domain"
)

// ErrMalformedPattern is matched by every pattern parse or compile failure.
var ErrMalformedPattern = errors.New("malformed extraction pattern")

// PatternError describes a pattern that could not be used.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("extraction pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Is reports every PatternError as ErrMalformedPattern.
func (e *PatternError) Is(target error) bool { return target == ErrMalformedPattern }

// Pattern is a compiled extraction expression.
type Pattern struct {
	source string
	re     *regexp.Regexp
	global bool
}

// ParsePattern compiles a serialized expression. The "/body/flags" form
// accepts the flags g (collect every match), i, m and s; u and d are
// accepted and ignored. Any other string is compiled as a bare body that
// stops at the first match.
// Parameters:
//   - s: serialized expression.
// Returns:
//   - *Pattern: compiled pattern.
//   - error: a *PatternError when s is empty or fails to compile.
func ParsePattern(s string) (*Pattern, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, &PatternError{Pattern: s, Err: errors.New("empty pattern")}
	}

	body, flags := raw, ""
	if strings.HasPrefix(raw, "/") {
		if end := strings.LastIndex(raw, "/"); end > 0 {
			body, flags = raw[1:end], raw[end+1:]
		}
	}

	var inline strings.Builder
	global := false
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		case 'u', 'd':
		default:
			return nil, &PatternError{Pattern: s, Err: fmt.Errorf("unsupported flag %q", f)}
		}
	}
	if inline.Len() > 0 {
		body = "(?" + inline.String() + ")" + body
	}

	re, err := regexp.Compile(body)
	if err != nil {
		return nil, &PatternError{Pattern: s, Err: err}
	}
	return &Pattern{source: raw, re: re, global: global}, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) *Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the serialized form the pattern was parsed from.
func (p *Pattern) String() string { return p.source }

// Global reports whether every match is collected.
func (p *Pattern) Global() bool { return p.global }

// Structured reports whether the pattern captures camera, scene and prompt groups.
func (p *Pattern) Structured() bool { return p.re.NumSubexp() >= 3 }

// Extract applies p to text. Each match becomes one PromptSegments: a match
// whose third group took part yields camera, scene and characters from
// groups 1 to 3, otherwise group 1 is the characters. Matches with empty
// characters are skipped. No match is a normal, empty result.
func (p *Pattern) Extract(text string) []domain.PromptSegments {
	n := 1
	if p.global {
		n = -1
	}

	matches := p.re.FindAllStringSubmatchIndex(text, n)
	out := make([]domain.PromptSegments, 0, len(matches))
	for _, m := range matches {
		seg := segmentsFromMatch(text, m)
		if seg.Characters == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// group returns the trimmed text of capture group i and whether it took part in the match.
func group(text string, m []int, i int) (string, bool) {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return "", false
	}
	return strings.TrimSpace(text[m[2*i]:m[2*i+1]]), true
}

func segmentsFromMatch(text string, m []int) domain.PromptSegments {
	if chars, ok := group(text, m, 3); ok {
		camera, _ := group(text, m, 1)
		scene, _ := group(text, m, 2)
		return domain.PromptSegments{Camera: camera, Scene: scene, Characters: chars}
	}
	chars, _ := group(text, m, 1)
	return domain.PromptSegments{Characters: chars}
}
