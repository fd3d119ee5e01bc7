// Package categorize handles one-off transaction categorization commands
package categorize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcbailey111/finance-agent/cmd/root"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a single transaction from the command line",
	Long: `Categorize a single transaction by merchant name through the rule engine,
escalating to the AI classifier when rules are not confident enough and
AI escalation is enabled.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Merchant, "merchant", "m", "", "Merchant name to categorize")
	Cmd.Flags().StringVarP(&root.Description, "description", "n", "", "Transaction description (optional)")
	Cmd.Flags().StringVarP(&root.Amount, "amount", "a", "", "Transaction amount (optional)")
	_ = Cmd.MarkFlagRequired("merchant")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer(cmd.Context())
	if err != nil {
		return err
	}

	tx := models.Transaction{
		Merchant:    root.Merchant,
		Description: root.Description,
		RawAmount:   root.Amount,
	}
	if root.Amount != "" {
		if amount, ok := models.ParseAmount(root.Amount); ok {
			tx.Amount = amount
			tx.AmountValid = true
		}
	}

	outcome := c.GetRouter().Categorize(cmd.Context(), &tx)

	fmt.Printf("Merchant:   %s\n", tx.Merchant)
	fmt.Printf("Category:   %s\n", outcome.Category)
	fmt.Printf("Confidence: %.2f\n", outcome.Confidence)
	fmt.Printf("Source:     %s\n", outcome.Source)
	if outcome.Reason != "" {
		fmt.Printf("Reason:     %s\n", outcome.Reason)
	}
	return nil
}
