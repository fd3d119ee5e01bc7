// Package categorizer provides functionality to categorize transactions
// using multiple methods:
// 1. Learned merchant-to-category overrides from a YAML database
// 2. An ordered keyword rule table
// 3. Confidence-gated escalation to a secondary classifier
package categorizer

import (
	"sort"
	"strings"
	"sync"

	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
	"github.com/kcbailey111/finance-agent/internal/store"
)

// RuleEngine maps a transaction's merchant text to a category using an
// ordered keyword table. The table is scanned in declaration order and the
// first rule whose keyword appears as a substring of the merchant text wins;
// there is no scoring among categories. That ordering is a deliberate
// tie-break policy, not an accident, and reorderings change results.
type RuleEngine struct {
	rules     []models.CategoryRule
	overrides map[string]string // learned exact merchant -> category
	mu        sync.RWMutex
	dirty     bool
	store     *store.RuleStore
	logger    logging.Logger
}

// NewRuleEngine creates a RuleEngine backed by the given store. Rules and
// overrides are loaded once at construction; load failures degrade to the
// built-in defaults rather than aborting.
func NewRuleEngine(st *store.RuleStore, logger logging.Logger) *RuleEngine {
	e := &RuleEngine{
		rules:     models.DefaultRules(),
		overrides: make(map[string]string),
		store:     st,
		logger:    logger,
	}

	if st != nil {
		rules, err := st.LoadRules()
		if err != nil {
			e.logger.WithError(err).Warn("Failed to load category rules, using defaults")
		} else {
			e.rules = rules
		}

		overrides, err := st.LoadOverrides()
		if err != nil {
			e.logger.WithError(err).Warn("Failed to load merchant overrides")
		} else {
			// Normalize keys to lowercase for case-insensitive lookup
			for key, value := range overrides {
				e.overrides[strings.ToLower(key)] = value
			}
		}
	}

	return e
}

// Categorize returns the category and confidence for a transaction's
// merchant text. A learned override or keyword match yields confidence 0.9;
// no match yields the Uncategorized sentinel with confidence 0.3.
func (e *RuleEngine) Categorize(tx *models.Transaction) (models.Category, float64) {
	text := strings.ToLower(tx.PartyText())
	if strings.TrimSpace(text) == "" {
		return models.Category{
			Name:        models.CategoryUncategorized,
			Description: "No merchant text provided",
		}, models.RuleMissConfidence
	}

	if category, found := e.lookupOverride(text); found {
		return category, models.RuleMatchConfidence
	}

	if category, found := e.matchKeywords(text); found {
		return category, models.RuleMatchConfidence
	}

	return models.Category{
		Name:        models.CategoryUncategorized,
		Description: "No rule matched",
	}, models.RuleMissConfidence
}

// lookupOverride checks the learned merchant mapping database for an exact
// (case-insensitive) merchant match.
func (e *RuleEngine) lookupOverride(textLower string) (models.Category, bool) {
	e.mu.RLock()
	categoryName, found := e.overrides[textLower]
	e.mu.RUnlock()

	if !found {
		return models.Category{}, false
	}

	return models.Category{
		Name:        categoryName,
		Description: "Learned merchant mapping",
	}, true
}

// matchKeywords scans the ordered rule table. Keywords are stored
// lower-cased, so a single Contains per keyword suffices.
func (e *RuleEngine) matchKeywords(textLower string) (models.Category, bool) {
	for _, rule := range e.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(textLower, keyword) {
				e.logger.WithFields(
					logging.Field{Key: logging.FieldCategory, Value: rule.Name},
					logging.Field{Key: "keyword", Value: keyword},
				).Debug("Transaction categorized by keyword rule")
				return models.Category{
					Name:        rule.Name,
					Description: "Matched keyword: " + keyword,
				}, true
			}
		}
	}
	return models.Category{}, false
}

// LearnOverride records a merchant->category mapping so similar
// transactions skip escalation on future runs.
func (e *RuleEngine) LearnOverride(merchant, categoryName string) {
	merchant = strings.ToLower(strings.TrimSpace(merchant))
	if merchant == "" || categoryName == "" || categoryName == models.CategoryUncategorized {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides[merchant] = categoryName
	e.dirty = true
}

// SaveOverrides persists learned merchant mappings if they changed.
func (e *RuleEngine) SaveOverrides() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dirty || e.store == nil {
		return nil
	}
	if err := e.store.SaveOverrides(e.overrides); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// CategoryNames returns the allowed category names in rule declaration
// order, with the Uncategorized sentinel appended. The secondary classifier
// prompt is built from this list.
func (e *RuleEngine) CategoryNames() []string {
	names := make([]string, 0, len(e.rules)+1)
	seen := make(map[string]bool, len(e.rules)+1)
	for _, rule := range e.rules {
		if !seen[rule.Name] {
			names = append(names, rule.Name)
			seen[rule.Name] = true
		}
	}
	if !seen[models.CategoryUncategorized] {
		names = append(names, models.CategoryUncategorized)
	}
	return names
}

// OverrideCount reports how many merchant overrides are loaded, sorted
// access for deterministic test output is left to callers.
func (e *RuleEngine) OverrideCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.overrides)
}

// Overrides returns a sorted snapshot of the learned merchant mappings.
func (e *RuleEngine) Overrides() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.overrides))
	for k := range e.overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
