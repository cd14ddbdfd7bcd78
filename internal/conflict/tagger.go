package conflict

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

// DomainRule tags every component whose "type:name" or bare name matches one
// of the glob patterns.
type DomainRule struct {
	Name     string   `yaml:"name" validate:"required"`
	Patterns []string `yaml:"patterns" validate:"required,min=1,dive,required"`
}

// Tagger assigns domain tags to components. Components no rule covers fall
// back to their namespace ("plugin:name") or the leading token of the name.
type Tagger struct {
	rules []DomainRule
}

func NewTagger(rules []DomainRule) (*Tagger, error) {
	for _, r := range rules {
		for _, p := range r.Patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("domain %s: invalid pattern %q", r.Name, p)
			}
		}
	}
	return &Tagger{rules: rules}, nil
}

func (t *Tagger) Domains(ref models.ComponentRef) []string {
	var tags []string
	for _, r := range t.rules {
		if t.matches(r, ref) {
			tags = append(tags, r.Name)
		}
	}
	if len(tags) > 0 {
		return tags
	}
	if fallback := fallbackDomain(ref.Name); fallback != "" {
		return []string{fallback}
	}
	return nil
}

// SameDomain reports whether the two components share at least one tag.
func (t *Tagger) SameDomain(a, b models.ComponentRef) bool {
	left := t.Domains(a)
	if len(left) == 0 {
		return false
	}
	right := make(map[string]bool)
	for _, tag := range t.Domains(b) {
		right[tag] = true
	}
	for _, tag := range left {
		if right[tag] {
			return true
		}
	}
	return false
}

func (t *Tagger) matches(r DomainRule, ref models.ComponentRef) bool {
	for _, p := range r.Patterns {
		if ok, _ := doublestar.Match(p, ref.String()); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, ref.Name); ok {
			return true
		}
	}
	return false
}

func fallbackDomain(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if ns, _, found := strings.Cut(name, ":"); found && ns != "" {
		return ns
	}
	token := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(token) == 0 {
		return ""
	}
	return token[0]
}
