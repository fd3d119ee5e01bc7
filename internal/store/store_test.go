package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcbailey111/finance-agent/internal/models"
)

func writeTempYAML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRulesDefaultsWhenMissing(t *testing.T) {
	s := NewRuleStore(filepath.Join(t.TempDir(), "nope.yaml"), "")

	rules, err := s.LoadRules()

	require.NoError(t, err)
	assert.Equal(t, models.DefaultRules(), rules)
}

func TestLoadRulesFromFile(t *testing.T) {
	path := writeTempYAML(t, "categories.yaml", `categories:
  - name: Coffee
    keywords: ["STARBUCKS", "Blue Bottle"]
  - name: Food
    keywords: ["starbucks"]
`)
	s := NewRuleStore(path, "")

	rules, err := s.LoadRules()

	require.NoError(t, err)
	require.Len(t, rules, 2)
	// Declaration order is preserved and keywords are lower-cased at load.
	assert.Equal(t, "Coffee", rules[0].Name)
	assert.Equal(t, []string{"starbucks", "blue bottle"}, rules[0].Keywords)
	assert.Equal(t, "Food", rules[1].Name)
}

func TestLoadRulesBareList(t *testing.T) {
	path := writeTempYAML(t, "categories.yaml", `- name: Travel
  keywords: ["airline"]
`)
	s := NewRuleStore(path, "")

	rules, err := s.LoadRules()

	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Travel", rules[0].Name)
}

func TestLoadRulesUnrecognizedFormat(t *testing.T) {
	path := writeTempYAML(t, "categories.yaml", `just a scalar`)
	s := NewRuleStore(path, "")

	_, err := s.LoadRules()

	assert.Error(t, err)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	s := NewRuleStore("", filepath.Join(t.TempDir(), "nope.yaml"))

	overrides, err := s.LoadOverrides()

	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestLoadOverridesFlatMap(t *testing.T) {
	path := writeTempYAML(t, "merchants.yaml", `Netflix: Subscriptions
Shell: Transportation
`)
	s := NewRuleStore("", path)

	overrides, err := s.LoadOverrides()

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Netflix": "Subscriptions",
		"Shell":   "Transportation",
	}, overrides)
}

func TestSaveAndLoadOverridesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merchants.yaml")
	s := NewRuleStore("", path)

	want := map[string]string{"Trader Joes": "Food"}
	require.NoError(t, s.SaveOverrides(want))

	got, err := s.LoadOverrides()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindConfigFileAbsolute(t *testing.T) {
	path := writeTempYAML(t, "categories.yaml", "categories: []\n")
	s := NewRuleStore("", "")

	found, err := s.FindConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = s.FindConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
