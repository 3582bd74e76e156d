package transcript

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one literal find/replace pair. Rules are applied sequentially in
// declaration order, each as a global substring substitution, so earlier
// rules can feed later ones. Order matters and is preserved everywhere.
type Rule struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// defaultRules are the stock corrections for common mis-transcriptions in
// recorded academic discussion. The table is intentionally left exactly as
// shipped, including the entry that deletes its match outright.
var defaultRules = []Rule{
	{"Asian face", "agent-based"},
	{"open-ass", "OpenAI's"},
	{"co-pilot ship", "co-pilot shit"},
	{"make-e", "makey"},
	{"wilded", "all the"},
	{"COE", "GUI"},
	{"hundred and first", ""},
	{"we're happening", "happening"},
	{"Bond and Reading", "The Babysitters Club"},
	{"deep personalized", "depersonalized"},
}

// confirmationRe matches short confirmation tokens: the whole trimmed string,
// case-insensitive, with an optional trailing period.
var confirmationRe = regexp.MustCompile(`(?i)^(Right|Yeah|Yes|No|Okay|Mm-hmm|Uh-huh)\.?$`)

// Corrector rewrites segment text with an ordered rule table and flags
// interjections.
type Corrector struct {
	rules []Rule
}

// NewCorrector returns a corrector with the default rule table.
func NewCorrector() *Corrector {
	return &Corrector{rules: defaultRules}
}

// NewCorrectorWithRules returns a corrector with a caller-supplied table.
func NewCorrectorWithRules(rules []Rule) *Corrector {
	return &Corrector{rules: rules}
}

// LoadRules reads a rule table from a YAML file. The file holds a list of
// {find, replace} entries; list order becomes application order.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for i, r := range rules {
		if r.Find == "" {
			return nil, fmt.Errorf("rule %d: empty find pattern", i)
		}
	}
	return rules, nil
}

// Rules returns the active rule table.
func (c *Corrector) Rules() []Rule {
	return c.rules
}

// Apply rewrites every segment's text through the rule table and sets the
// interjection flag on the corrected text. Segments are mutated in place;
// none are added, removed or reordered, and Start/End/Speaker are untouched.
func (c *Corrector) Apply(t *Transcript) {
	for i := range t.Segments {
		text := t.Segments[i].Text
		for _, r := range c.rules {
			text = strings.ReplaceAll(text, r.Find, r.Replace)
		}
		t.Segments[i].Text = text
		if IsInterjection(text) {
			t.Segments[i].Interjection = true
		}
	}
}

// IsInterjection reports whether text is likely an interjection: a short
// confirmation token, or three or fewer whitespace-delimited words. An empty
// string has zero words and therefore classifies as one.
func IsInterjection(text string) bool {
	text = strings.TrimSpace(text)
	if confirmationRe.MatchString(text) {
		return true
	}
	return len(strings.Fields(text)) <= 3
}
