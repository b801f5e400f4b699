package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diana-hep/femtocode/internal/column"
	"github.com/diana-hep/femtocode/pkg/model"
)

var (
	addDataset string
	addLeft    string
	addRight   string
	addOutput  string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add two aligned data columns elementwise",
	Long: `Add computes the pairwise sum of two pre-aligned numeric data columns.
The result is int64 only when both operands are int64; any float operand
promotes the output to float64. Integer addition wraps; float addition is
IEEE-754 binary64.`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addDataset, "dataset", "d", "", "Dataset name (required)")
	addCmd.Flags().StringVar(&addLeft, "left", "", "Left operand column (required)")
	addCmd.Flags().StringVar(&addRight, "right", "", "Right operand column (required)")
	addCmd.Flags().StringVarP(&addOutput, "output", "o", "", "Output segment file (optional)")
	addCmd.MarkFlagRequired("dataset")
	addCmd.MarkFlagRequired("left")
	addCmd.MarkFlagRequired("right")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	handles, cleanup, err := initRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := handles.engine.Add(ctx, &model.AddRequest{
		Dataset: addDataset,
		Left:    addLeft,
		Right:   addRight,
	})
	if err != nil {
		return err
	}

	log.Info("Added %s + %s: %d items of %s in %s",
		addLeft, addRight, result.Length, result.Kind, result.Elapsed)
	previewAddResult(result)

	if addOutput != "" {
		var raw []byte
		if result.Kind == model.KindInt64 {
			raw = column.BytesFromInt64s(result.Ints)
		} else {
			raw = column.BytesFromFloat64s(result.Floats)
		}
		if err := os.MkdirAll(filepath.Dir(addOutput), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(addOutput, raw, 0644); err != nil {
			return fmt.Errorf("failed to write output segment: %w", err)
		}
		log.Info("Wrote result segment: %s", addOutput)
	}

	return nil
}

// previewAddResult logs the first few output values.
func previewAddResult(result *model.AddResult) {
	log := GetLogger()
	const previewN = 5

	n := min(result.Length, previewN)
	for i := 0; i < n; i++ {
		if result.Kind == model.KindInt64 {
			log.Info("  [%d] %d", i, result.Ints[i])
		} else {
			log.Info("  [%d] %g", i, result.Floats[i])
		}
	}
	if result.Length > previewN {
		log.Info("  ... and %d more", result.Length-previewN)
	}
}
