// Package classify maps workflow node type identifiers to rendering
// categories.
//
// Classification is a case-insensitive substring match against an ordered
// rule list. The first rule with a matching keyword wins, so a type such as
// "agentTrigger" resolves to [Trigger] rather than [Agent]. The category is
// advisory: it picks an icon and a color and never blocks conversion.
package classify

import "strings"

// Category is a coarse rendering classification for a node.
type Category string

const (
	Trigger Category = "trigger"
	Agent   Category = "agent"
	Tool    Category = "tool"
	Default Category = "default"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Trigger, Agent, Tool, Default:
		return true
	}
	return false
}

// Rule assigns Category to any type containing one of Keywords.
// Keywords must be lower case.
type Rule struct {
	Category Category
	Keywords []string
}

// Matches reports whether the lower-cased type identifier contains any keyword.
func (r Rule) Matches(lowerType string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(lowerType, k) {
			return true
		}
	}
	return false
}

// DefaultRules is the built-in rule list, in priority order.
var DefaultRules = []Rule{
	{Category: Trigger, Keywords: []string{"trigger", "webhook", "schedule"}},
	{Category: Agent, Keywords: []string{"agent", "langchain"}},
	{Category: Tool, Keywords: []string{"tool", "openai", "memory", "model"}},
}

// Classifier evaluates an ordered rule list.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier over rules. A nil slice selects [DefaultRules].
func New(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the category of the first matching rule, or [Default].
func (c *Classifier) Classify(typeID string) Category {
	lower := strings.ToLower(typeID)
	for _, r := range c.rules {
		if r.Matches(lower) {
			return r.Category
		}
	}
	return Default
}

// Rules returns a copy of the classifier's rule list.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

var std = New(nil)

// Classify classifies typeID with [DefaultRules].
func Classify(typeID string) Category { return std.Classify(typeID) }
