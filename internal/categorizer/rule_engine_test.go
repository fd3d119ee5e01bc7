package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

func newTestEngine() *RuleEngine {
	return NewRuleEngine(nil, &logging.MockLogger{})
}

func TestCategorizeByKeyword(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name         string
		merchant     string
		wantCategory string
		wantConf     float64
	}{
		{
			name:         "exact keyword",
			merchant:     "netflix",
			wantCategory: models.CategorySubscriptions,
			wantConf:     0.9,
		},
		{
			name:         "keyword as substring",
			merchant:     "NETFLIX.COM 866-579-7172",
			wantCategory: models.CategorySubscriptions,
			wantConf:     0.9,
		},
		{
			name:         "case insensitive",
			merchant:     "Starbucks Store #1234",
			wantCategory: models.CategoryFood,
			wantConf:     0.9,
		},
		{
			name:         "gas station",
			merchant:     "SHELL OIL 57442",
			wantCategory: models.CategoryTransportation,
			wantConf:     0.9,
		},
		{
			name:         "no match",
			merchant:     "ACME WIDGETS",
			wantCategory: models.CategoryUncategorized,
			wantConf:     0.3,
		},
		{
			name:         "empty merchant",
			merchant:     "",
			wantCategory: models.CategoryUncategorized,
			wantConf:     0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &models.Transaction{Merchant: tt.merchant}
			category, confidence := engine.Categorize(tx)
			assert.Equal(t, tt.wantCategory, category.Name)
			assert.InDelta(t, tt.wantConf, confidence, 1e-9)
		})
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	engine := newTestEngine()

	// "uber" (Transportation) appears before any Subscriptions keyword, but
	// the Food rule is declared first: "cafe" must win over "uber".
	tx := &models.Transaction{Merchant: "uber cafe"}
	category, _ := engine.Categorize(tx)
	assert.Equal(t, models.CategoryFood, category.Name,
		"earlier-declared rule should win when multiple keywords match")
}

func TestCategorizeFallsBackToDescription(t *testing.T) {
	engine := newTestEngine()

	// No merchant at all: matching falls back to the description text.
	tx := &models.Transaction{
		Description: "spotify premium monthly",
	}
	category, confidence := engine.Categorize(tx)
	assert.Equal(t, models.CategorySubscriptions, category.Name)
	assert.InDelta(t, 0.9, confidence, 1e-9)
}

func TestLearnOverride(t *testing.T) {
	engine := newTestEngine()

	tx := &models.Transaction{Merchant: "Joe's Corner Deli"}
	category, confidence := engine.Categorize(tx)
	assert.Equal(t, models.CategoryUncategorized, category.Name)
	assert.InDelta(t, 0.3, confidence, 1e-9)

	engine.LearnOverride("Joe's Corner Deli", models.CategoryFood)

	category, confidence = engine.Categorize(tx)
	assert.Equal(t, models.CategoryFood, category.Name)
	assert.InDelta(t, 0.9, confidence, 1e-9)
	assert.Equal(t, 1, engine.OverrideCount())
}

func TestLearnOverrideIgnoresUncategorized(t *testing.T) {
	engine := newTestEngine()

	engine.LearnOverride("somewhere", models.CategoryUncategorized)
	engine.LearnOverride("", models.CategoryFood)
	engine.LearnOverride("elsewhere", "")

	assert.Equal(t, 0, engine.OverrideCount())
}

func TestCategoryNames(t *testing.T) {
	engine := newTestEngine()

	names := engine.CategoryNames()
	assert.Equal(t, []string{
		models.CategoryFood,
		models.CategoryTransportation,
		models.CategorySubscriptions,
		models.CategoryUtilities,
		models.CategoryHousing,
		models.CategoryUncategorized,
	}, names)
}
