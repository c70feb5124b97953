package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/caseworks/reportable/internal/core/config"
	"github.com/caseworks/reportable/internal/core/source"
	"github.com/caseworks/reportable/internal/rules"
	"github.com/caseworks/reportable/internal/synth"
	"github.com/caseworks/reportable/internal/types"
)

var (
	evalRuleFile    string
	evalRecordsFile string
	evalSynthetic   bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a rule definition against a record set",
	Long: `Evaluate loads a rule definition (JSON) and a record set (JSON array or
bundle), runs the rule, and prints the full execution result. With
--synthetic, canonical sample records are generated for the resource
types the rule references instead of reading a records file.

The exit code reflects harness success, not the rule outcome: a rule that
evaluates cleanly to false still exits 0.`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalRuleFile, "rule", "", "rule definition JSON file (required)")
	evalCmd.Flags().StringVar(&evalRecordsFile, "records", "", "record set JSON file")
	evalCmd.Flags().BoolVar(&evalSynthetic, "synthetic", false, "generate synthetic records for the rule's resource types")
	_ = evalCmd.MarkFlagRequired("rule")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := rules.NewEngineWithCacheSize(cfg.PathCacheSize)
	if err != nil {
		return err
	}

	rule, err := source.LoadRule(evalRuleFile)
	if err != nil {
		return err
	}
	if err := engine.ValidateRule(rule); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	records, err := loadEvalRecords(rule, cfg)
	if err != nil {
		return err
	}

	log.Debug().
		Str("rule", string(rule.RuleID)).
		Int("conditions", len(rule.Conditions)).
		Int("records", len(records)).
		Msg("evaluating rule")

	result := engine.ExecuteRule(rule, records)

	log.Info().
		Bool("overallResult", result.OverallResult).
		Int64("executionTimeMs", result.ExecutionTimeMs).
		Msg("rule evaluated")

	return printResult(result, cfg.Output)
}

// loadEvalRecords resolves the record set: synthetic catalog records for
// the rule's resource types, or a caller-supplied file.
func loadEvalRecords(rule *types.Rule, cfg *config.Config) ([]types.Record, error) {
	if evalSynthetic {
		seen := make(map[string]bool)
		var resourceTypes []string
		for _, cond := range rule.Conditions {
			if !seen[cond.ResourceType] {
				seen[cond.ResourceType] = true
				resourceTypes = append(resourceTypes, cond.ResourceType)
			}
		}
		return synth.Generate(resourceTypes), nil
	}

	if evalRecordsFile == "" {
		return nil, fmt.Errorf("either --records or --synthetic is required")
	}
	src, err := source.NewFileSource(evalRecordsFile)
	if err != nil {
		return nil, err
	}
	records := src.Records()
	if len(records) > cfg.MaxRecords {
		return nil, fmt.Errorf("record set has %d records, limit is %d", len(records), cfg.MaxRecords)
	}
	return records, nil
}

// printResult writes the execution result to stdout.
func printResult(result rules.ExecutionResult, output string) error {
	enc := json.NewEncoder(os.Stdout)
	if output == "pretty" {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
