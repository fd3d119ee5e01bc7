// Package store provides functionality for storing and retrieving the
// categorization rule tables.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kcbailey111/finance-agent/internal/config"
	"github.com/kcbailey111/finance-agent/internal/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Use the centralized logger from config package
var log = config.Logger

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// RuleStore manages loading and saving of categorization rule data: the
// ordered category->keyword table and the learned merchant overrides.
type RuleStore struct {
	RulesFile     string
	OverridesFile string
}

// NewRuleStore creates a new store for rule-related data
func NewRuleStore(rulesFile, overridesFile string) *RuleStore {
	return &RuleStore{
		RulesFile:     rulesFile,
		OverridesFile: overridesFile,
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,                            // Current directory
		filepath.Join("config", filename),   // ./config/ directory
		filepath.Join("database", filename), // ./database/ directory
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "finance-agent", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadRules loads the ordered category rule table from the YAML file.
// YAML sequences preserve declaration order, and that order is part of the
// categorization contract: the first matching rule wins. Returns the
// built-in default table when no rules file exists.
func (s *RuleStore) LoadRules() ([]models.CategoryRule, error) {
	filename := s.RulesFile
	if filename == "" {
		filename = "categories.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) || err == os.ErrNotExist {
			log.Debugf("Rules file not found: %s, using built-in defaults", filename)
			return models.DefaultRules(), nil
		}
		return nil, fmt.Errorf("error resolving rules file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var rulesConfig models.RulesConfig
	if err := yaml.Unmarshal(data, &rulesConfig); err == nil && len(rulesConfig.Categories) > 0 {
		log.Debugf("Loaded %d category rules from %s", len(rulesConfig.Categories), filePath)
		return normalizeKeywords(rulesConfig.Categories), nil
	}

	// Fallback: file holding a bare list without the top-level key
	var rules []models.CategoryRule
	if err := yaml.Unmarshal(data, &rules); err == nil && len(rules) > 0 {
		log.Debugf("Loaded %d category rules from %s (bare list)", len(rules), filePath)
		return normalizeKeywords(rules), nil
	}

	return nil, fmt.Errorf("error parsing rules file %s: unrecognized format", filePath)
}

// normalizeKeywords lower-cases all keywords once at load time so matching
// never has to case-fold per transaction.
func normalizeKeywords(rules []models.CategoryRule) []models.CategoryRule {
	for i := range rules {
		for j, kw := range rules[i].Keywords {
			rules[i].Keywords[j] = strings.ToLower(kw)
		}
	}
	return rules
}

// LoadOverrides loads learned merchant->category overrides from YAML.
// A missing file is not an error; it simply means nothing has been learned.
func (s *RuleStore) LoadOverrides() (map[string]string, error) {
	filename := s.OverridesFile
	if filename == "" {
		filename = "merchants.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) || err == os.ErrNotExist {
			log.Debugf("Merchant overrides file not found: %s", filename)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error resolving merchant overrides file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading merchant overrides file: %w", err)
	}

	var overridesConfig models.OverridesConfig
	if err := yaml.Unmarshal(data, &overridesConfig); err == nil && overridesConfig.Merchants != nil {
		log.Debugf("Loaded %d merchant overrides from %s", len(overridesConfig.Merchants), filePath)
		return overridesConfig.Merchants, nil
	}

	// Fallback: flat map without the top-level key
	var mappings map[string]string
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("error parsing merchant overrides: %w", err)
	}

	log.Debugf("Loaded %d merchant overrides from %s (flat map)", len(mappings), filePath)
	return mappings, nil
}

// SaveOverrides saves learned merchant->category overrides to YAML.
func (s *RuleStore) SaveOverrides(mappings map[string]string) error {
	filename := s.OverridesFile
	if filename == "" {
		filename = "merchants.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil && err != os.ErrNotExist {
		return fmt.Errorf("error resolving merchant overrides file: %w", err)
	}

	// If file not found, use the database directory by default
	if err == os.ErrNotExist {
		if !filepath.IsAbs(filename) {
			filePath = filepath.Join("database", filename)
		} else {
			filePath = filename
		}
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(models.OverridesConfig{Merchants: mappings})
	if err != nil {
		return fmt.Errorf("error marshaling merchant overrides: %w", err)
	}

	if err := os.WriteFile(filePath, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing merchant overrides: %w", err)
	}

	log.Debugf("Saved %d merchant overrides to %s", len(mappings), filePath)
	return nil
}
