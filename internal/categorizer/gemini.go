package categorizer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// GeminiClassifier is a SecondaryClassifier backed by Google's Gemini API.
// It is consulted only for transactions in the escalation band, so call
// volume stays proportional to rule-table misses rather than batch size.
type GeminiClassifier struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	categories []string
	timeout    time.Duration
	logger     logging.Logger
}

// NewGeminiClassifier creates a classifier using the given API key and model
// name. categories is the allowed answer set included in every prompt.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName string, categories []string, timeout time.Duration, logger logging.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClassifier{
		client:     client,
		model:      client.GenerativeModel(modelName),
		categories: categories,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Name implements SecondaryClassifier.
func (c *GeminiClassifier) Name() string {
	return "gemini"
}

// Close releases the underlying API client.
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify asks Gemini to assign the transaction to one of the allowed
// categories. The response is parsed defensively: a malformed answer yields
// an Uncategorized verdict with zero confidence, not an error. Errors are
// reserved for API failures.
func (c *GeminiClassifier) Classify(ctx context.Context, tx models.Transaction) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := c.buildPrompt(tx)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Verdict{}, fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Verdict{}, fmt.Errorf("no response from Gemini API")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	verdict := c.parseResponse(responseText)

	c.logger.WithFields(
		logging.Field{Key: logging.FieldMerchant, Value: tx.Merchant},
		logging.Field{Key: logging.FieldCategory, Value: verdict.Category},
		logging.Field{Key: logging.FieldConfidence, Value: verdict.Confidence},
	).Debug("Gemini classified transaction")

	return verdict, nil
}

// buildPrompt formats the classification request. The allowed category list
// keeps answers inside the application's vocabulary.
func (c *GeminiClassifier) buildPrompt(tx models.Transaction) string {
	return fmt.Sprintf(`Categorize the following financial transaction:
Merchant: %s
Description: %s
Amount: %s
Date: %s

Please assign this transaction to exactly one of the following categories:
%s

Respond in this format:
Category: [Selected Category Name]
Confidence: [A number between 0.0 and 1.0]
Reason: [Brief explanation of why you chose this category]`,
		tx.Merchant,
		tx.Description,
		tx.Amount.StringFixed(2),
		tx.Date.Format("2006-01-02"),
		strings.Join(c.categories, ", "))
}

// parseResponse extracts the structured fields from the model's reply.
func (c *GeminiClassifier) parseResponse(response string) Verdict {
	var verdict Verdict

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Category:"):
			verdict.Category = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
		case strings.HasPrefix(line, "Confidence:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "Confidence:"))
			if conf, err := strconv.ParseFloat(raw, 64); err == nil {
				verdict.Confidence = conf
			}
		case strings.HasPrefix(line, "Reason:"):
			verdict.Reason = strings.TrimSpace(strings.TrimPrefix(line, "Reason:"))
		}
	}

	// No structured category line: try to find an allowed category name
	// anywhere in the reply before giving up.
	if verdict.Category == "" {
		for _, name := range c.categories {
			if strings.Contains(response, name) {
				verdict.Category = name
				break
			}
		}
	}

	// An answer outside the allowed set is treated as no answer.
	if verdict.Category != "" && verdict.Category != models.CategoryUncategorized && !c.isAllowed(verdict.Category) {
		c.logger.WithField(logging.FieldCategory, verdict.Category).
			Warn("Gemini returned a category outside the allowed set")
		verdict.Category = ""
		verdict.Confidence = 0
	}

	return sanitizeVerdict(verdict)
}

func (c *GeminiClassifier) isAllowed(name string) bool {
	for _, allowed := range c.categories {
		if strings.EqualFold(allowed, name) {
			return true
		}
	}
	return false
}
