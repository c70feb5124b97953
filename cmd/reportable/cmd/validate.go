package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caseworks/reportable/internal/core/source"
	"github.com/caseworks/reportable/internal/rules"
)

var validateRuleFile string

var validateCmd = &cobra.Command{
	Use:   "validate [path-expression]",
	Short: "Validate a path expression or a rule definition file",
	Long: `Validate checks a single path expression given as an argument, or a
whole rule definition file with --rule. Path warnings (e.g. descendant
wildcards) are advisory and do not fail validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateRuleFile, "rule", "", "rule definition JSON file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateRuleFile != "" {
		return validateRuleFileCmd()
	}
	if len(args) != 1 {
		return fmt.Errorf("either a path expression argument or --rule is required")
	}

	v := rules.ValidatePath(args[0])
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if !v.IsValid {
		return fmt.Errorf("invalid path expression")
	}
	return nil
}

func validateRuleFileCmd() error {
	rule, err := source.LoadRule(validateRuleFile)
	if err != nil {
		return err
	}
	engine := rules.NewEngine()
	if err := engine.ValidateRule(rule); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}
	fmt.Printf("rule %q is valid (%d conditions, %s)\n", rule.Name, len(rule.Conditions), rule.Logic)
	return nil
}
