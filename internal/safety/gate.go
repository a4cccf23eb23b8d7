// Package safety screens user prompts and generated text for content that
// is not suitable for children before any generation work is spent on it.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"imagibox-server/internal/models"
)

// defaultBlockedTerms covers both English and Vietnamese. Matching is
// whole-word so harmless words like "skill" or "súng sính" in longer
// compounds do not trip the gate.
var defaultBlockedTerms = []string{
	"kill",
	"death",
	"violence",
	"weapon",
	"gun",
	"blood",
	"chết",
	"giết",
	"bạo lực",
	"vũ khí",
	"súng",
	"máu",
}

// Gate checks text against a blocked-term list.
type Gate struct {
	patterns []*regexp.Regexp
	terms    []string
	logger   *zap.Logger
}

// NewGate builds a gate from the default term list plus any extra terms
// from configuration. Blank extra terms are ignored.
func NewGate(extraTerms []string, logger *zap.Logger) (*Gate, error) {
	terms := make([]string, 0, len(defaultBlockedTerms)+len(extraTerms))
	terms = append(terms, defaultBlockedTerms...)
	for _, term := range extraTerms {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		pattern, err := compileTermPattern(term)
		if err != nil {
			return nil, fmt.Errorf("failed to compile blocked term %q: %w", term, err)
		}
		patterns = append(patterns, pattern)
	}

	return &Gate{
		patterns: patterns,
		terms:    terms,
		logger:   logger.Named("SafetyGate"),
	}, nil
}

// compileTermPattern anchors the term at word boundaries. \b is ASCII-only
// in RE2, so boundaries are expressed as "not a letter, digit or
// underscore" to work for Vietnamese text.
func compileTermPattern(term string) (*regexp.Regexp, error) {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	// Multi-word terms tolerate any run of whitespace between words.
	body := strings.Join(words, `\s+`)
	return regexp.Compile(`(?i)(^|[^\p{L}\p{N}_])` + body + `([^\p{L}\p{N}_]|$)`)
}

// Check returns models.ErrContentUnsafe when the text contains a blocked
// term. Empty text passes.
func (g *Gate) Check(text string) error {
	for i, pattern := range g.patterns {
		if pattern.MatchString(text) {
			g.logger.Info("Blocked unsafe content", zap.String("term", g.terms[i]))
			return models.ErrContentUnsafe
		}
	}
	return nil
}
