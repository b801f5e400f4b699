package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diana-hep/femtocode/pkg/model"
	"github.com/diana-hep/femtocode/pkg/writer"
)

var (
	datasetSpecPath   string
	datasetSegmentDir string
)

// datasetCmd groups catalog operations.
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage the dataset catalog",
}

// datasetRegisterCmd registers a dataset from a spec file and segments.
var datasetRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a dataset from a spec file and a directory of segments",
	Long: `Register reads a dataset spec (JSON form of name, entry count, and
columns) and uploads one segment file per column from the segment
directory. Segment files are named <column>.col and hold the column's raw
little-endian array. Item counts are derived from the files.`,
	RunE: runDatasetRegister,
}

// datasetListCmd lists registered datasets.
var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered datasets",
	RunE:  runDatasetList,
}

// datasetShowCmd prints one dataset spec.
var datasetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a dataset's columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetShow,
}

// datasetDeleteCmd removes a dataset from the catalog.
var datasetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a dataset from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetDelete,
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetRegisterCmd, datasetListCmd, datasetShowCmd, datasetDeleteCmd)

	datasetRegisterCmd.Flags().StringVar(&datasetSpecPath, "spec", "", "Dataset spec file (required)")
	datasetRegisterCmd.Flags().StringVar(&datasetSegmentDir, "dir", "", "Directory of <column>.col segment files (required)")
	datasetRegisterCmd.MarkFlagRequired("spec")
	datasetRegisterCmd.MarkFlagRequired("dir")
}

func runDatasetRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	raw, err := os.ReadFile(datasetSpecPath)
	if err != nil {
		return fmt.Errorf("failed to read spec: %w", err)
	}

	var ds model.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("failed to parse spec: %w", err)
	}

	files := make(map[string]string, len(ds.Columns))
	for _, col := range ds.Columns {
		files[col.Name] = filepath.Join(datasetSegmentDir, col.Name+".col")
	}

	handles, cleanup, err := initRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := handles.engine.RegisterDataset(ctx, &ds, files); err != nil {
		return err
	}

	log.Info("Registered dataset %s (%d entries, %d columns)", ds.Name, ds.NumEntries, len(ds.Columns))
	return nil
}

func runDatasetList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	handles, cleanup, err := initRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	datasets, err := handles.repos.Catalog.ListDatasets(ctx)
	if err != nil {
		return err
	}

	stats, err := handles.repos.Stats.GetStats(ctx)
	if err != nil {
		return err
	}

	for _, ds := range datasets {
		fmt.Printf("%-24s %12d entries  %3d columns\n", ds.Name, ds.NumEntries, len(ds.Columns))
	}
	fmt.Printf("\n%d dataset(s), %d column(s), %d entries total\n",
		stats.Datasets, stats.Columns, stats.TotalEntries)
	return nil
}

func runDatasetShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	handles, cleanup, err := initRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := handles.repos.Catalog.GetDataset(ctx, args[0])
	if err != nil {
		return err
	}

	return writer.NewPrettyJSONWriter[*model.Dataset]().Write(ds, os.Stdout)
}

func runDatasetDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	handles, cleanup, err := initRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := handles.repos.Catalog.DeleteDataset(ctx, args[0]); err != nil {
		return err
	}

	log.Info("Deleted dataset %s", args[0])
	return nil
}
