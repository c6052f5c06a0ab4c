package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"listing-matcher/internal/compare"
	"listing-matcher/internal/fileio"
	"listing-matcher/internal/match/model"
	"listing-matcher/internal/runstore"
)

var (
	compareOutput string
	compareStore  string
)

var compareCmd = &cobra.Command{
	Use:   "compare A B",
	Short: "Diff two result sets",
	Long: "Compares two results files (or two stored runs with --store) and writes, per product, " +
		"listings only in A as '- title' and listings only in B as '+ title'.",
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "compare.diff", "diff file, - for stdout")
	compareCmd.Flags().StringVar(&compareStore, "store", "", "treat A and B as run ids in this run store")
}

func runCompare(cmd *cobra.Command, args []string) error {
	var a, b []model.ProductResult
	var err error
	if compareStore != "" {
		a, b, err = loadStoredPair(compareStore, args[0], args[1])
	} else {
		a, b, err = loadFilePair(args[0], args[1])
	}
	if err != nil {
		return err
	}

	diffs, err := compare.Diff(a, b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if compareOutput != "-" {
		f, err := os.Create(compareOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := compare.WriteDiff(out, diffs); err != nil {
		return err
	}
	logger.Info().Int("products", len(diffs)).Str("output", compareOutput).Msg("compare done")
	return nil
}

func loadFilePair(pa, pb string) ([]model.ProductResult, []model.ProductResult, error) {
	a, err := readResultsFile(pa)
	if err != nil {
		return nil, nil, err
	}
	b, err := readResultsFile(pb)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func readResultsFile(path string) ([]model.ProductResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := fileio.ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}

func loadStoredPair(path, ida, idb string) ([]model.ProductResult, []model.ProductResult, error) {
	store, err := runstore.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()
	a, err := store.Load(ida)
	if err != nil {
		return nil, nil, err
	}
	b, err := store.Load(idb)
	if err != nil {
		return nil, nil, err
	}
	return a.Products, b.Products, nil
}
