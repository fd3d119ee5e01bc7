// Package models provides the data structures used throughout the application.
package models

// Category represents a transaction category with an optional explanation of
// how it was assigned.
type Category struct {
	Name        string
	Description string
}

// CategoryRule maps a category name to the keywords that select it.
// Rules are evaluated in declaration order and the first match wins, so the
// order of a rule slice is part of the categorization contract: if two
// categories' keywords both match, the earlier-declared category always wins.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// RulesConfig is the structure of the category rules YAML file.
type RulesConfig struct {
	Categories []CategoryRule `yaml:"categories"`
}

// OverridesConfig is the structure of the merchant overrides YAML file,
// mapping an exact (case-insensitive) merchant name to a category.
type OverridesConfig struct {
	Merchants map[string]string `yaml:"merchants"`
}

// DefaultRules returns the built-in ordered rule table used when no rules
// file is configured. Keyword matching is case-insensitive substring match
// against the merchant text.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{Name: CategoryFood, Keywords: []string{"mcdonald", "chipotle", "restaurant", "cafe", "starbucks"}},
		{Name: CategoryTransportation, Keywords: []string{"uber", "lyft", "shell", "exxon", "chevron"}},
		{Name: CategorySubscriptions, Keywords: []string{"netflix", "spotify", "amazon prime"}},
		{Name: CategoryUtilities, Keywords: []string{"electric", "water", "internet", "verizon"}},
		{Name: CategoryHousing, Keywords: []string{"rent", "mortgage"}},
	}
}
