package cmd

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diana-hep/femtocode/pkg/compression"
	"github.com/diana-hep/femtocode/pkg/model"
	"github.com/diana-hep/femtocode/pkg/writer"
)

var (
	explodeDataset  string
	explodeLevels   []string
	explodeData     []string
	explodeOutput   string
	explodeCompress string
)

// explodeCmd represents the explode command
var explodeCmd = &cobra.Command{
	Use:   "explode",
	Short: "Materialize the broadcast structure of nested columns",
	Long: `Explode walks the nesting levels of a dataset depth first and writes
the fully materialized jagged shape: the repeat count read at every level,
and, for each requested data column, the leaf items duplicated as the
broadcast dictates.

Levels name size columns, outermost first; naming the same size column at
several levels nests a field inside itself. Each requested data column must
be governed by one of the named size columns, or be unnested when no levels
are given. Multiple data columns run as
independent explosions over the shared shape.`,
	RunE: runExplode,
}

func init() {
	rootCmd.AddCommand(explodeCmd)

	explodeCmd.Flags().StringVarP(&explodeDataset, "dataset", "d", "", "Dataset name (required)")
	explodeCmd.Flags().StringSliceVarP(&explodeLevels, "levels", "l", nil, "Size column per nesting level, outermost first")
	explodeCmd.Flags().StringSliceVar(&explodeData, "data", nil, "Data column(s) to broadcast")
	explodeCmd.Flags().StringVarP(&explodeOutput, "output", "o", "./output", "Output directory")
	explodeCmd.Flags().StringVar(&explodeCompress, "compress", "none", "Compress output segments: none, gzip, zstd")
	explodeCmd.MarkFlagRequired("dataset")
}

func runExplode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	handles, cleanup, err := initRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqs := buildExplodeRequests()

	log.Info("Exploding dataset %s: %d level(s), %d run(s)",
		explodeDataset, len(explodeLevels), len(reqs))

	results, err := handles.engine.ExplodeMany(ctx, reqs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(explodeOutput, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := make(map[string]any)
	for i, result := range results {
		name := "shape"
		if reqs[i].DataColumn != "" {
			name = reqs[i].DataColumn
		}

		files, err := writeExplodeResult(result, reqs[i], name)
		if err != nil {
			return err
		}

		log.Info("%s: %d repeats, %d leaves (%s)", name, result.RepeatCount, result.LeafCount, result.Elapsed)
		summary[name] = map[string]any{
			"repeat_count": result.RepeatCount,
			"leaf_count":   result.LeafCount,
			"elapsed_ns":   result.Elapsed.Nanoseconds(),
			"files":        files,
		}
	}

	summaryPath := filepath.Join(explodeOutput, "summary.json")
	jw := writer.NewPrettyJSONWriter[map[string]any]()
	if err := jw.WriteToFile(summary, summaryPath); err != nil {
		return err
	}

	log.Info("Output files are in: %s", explodeOutput)
	return nil
}

// buildExplodeRequests expands the --data flags into one request per data
// column, or a single shape-only request when none were given.
func buildExplodeRequests() []*model.ExplodeRequest {
	if len(explodeData) == 0 {
		return []*model.ExplodeRequest{{
			Dataset: explodeDataset,
			Levels:  explodeLevels,
		}}
	}

	reqs := make([]*model.ExplodeRequest, len(explodeData))
	for i, data := range explodeData {
		reqs[i] = &model.ExplodeRequest{
			Dataset:    explodeDataset,
			Levels:     explodeLevels,
			DataColumn: strings.TrimSpace(data),
		}
	}
	return reqs
}

// writeExplodeResult persists the repeat sequence and, when present, the
// broadcast items, optionally compressed.
func writeExplodeResult(result *model.ExplodeResult, req *model.ExplodeRequest, name string) ([]string, error) {
	var files []string

	repeats := make([]byte, len(result.Repeats)*8)
	for i, v := range result.Repeats {
		binary.LittleEndian.PutUint64(repeats[i*8:], v)
	}

	path, err := writeSegmentFile(filepath.Join(explodeOutput, name+".sizes"), repeats)
	if err != nil {
		return nil, err
	}
	files = append(files, path)

	if req.DataColumn != "" {
		path, err := writeSegmentFile(filepath.Join(explodeOutput, name+".items"), result.Items)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	return files, nil
}

func writeSegmentFile(path string, raw []byte) (string, error) {
	if explodeCompress != "none" && explodeCompress != "" {
		comp, err := compression.ByName(explodeCompress, compression.LevelDefault)
		if err != nil {
			return "", err
		}
		compressed, err := comp.Compress(raw)
		if err != nil {
			return "", err
		}
		raw = compressed
		path += "." + explodeCompress
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
