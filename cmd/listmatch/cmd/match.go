package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"listing-matcher/internal/fileio"
	"listing-matcher/internal/match/model"
	"listing-matcher/internal/match/service"
	"listing-matcher/internal/runstore"
)

var (
	matchProducts      string
	matchListings      string
	matchResults       string
	matchSuppressEmpty bool
	matchStore         string
	matchWorkers       int
	matchHeaderRow     int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match listings against products and write results",
	Long: "Reads products and listings (JSON Lines, CSV, XLS or XLSX), writes one JSON object per product " +
		"with the listings assigned to it. With --store the run is also saved for later compare.",
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.StringVarP(&matchProducts, "products", "p", "products.txt", "products file")
	f.StringVarP(&matchListings, "listings", "l", "listings.txt", "listings file")
	f.StringVarP(&matchResults, "results", "r", "results.txt", "results file, - for stdout")
	f.BoolVar(&matchSuppressEmpty, "suppress-empty", false, "omit products without listings")
	f.StringVar(&matchStore, "store", "", "save the run into this run store")
	f.IntVar(&matchWorkers, "workers", 0, "matching workers (default MATCH_WORKERS)")
	f.IntVar(&matchHeaderRow, "header-row", 1, "header row for CSV/XLS/XLSX inputs")
}

func runMatch(cmd *cobra.Command, args []string) error {
	productRecs, err := fileio.ReadFileMaps(matchProducts, matchHeaderRow)
	if err != nil {
		return err
	}
	listingRecs, err := fileio.ReadFileMaps(matchListings, matchHeaderRow)
	if err != nil {
		return err
	}

	workers := matchWorkers
	if workers <= 0 {
		workers = cfg.MatchWorkers
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := service.MatchRecords(logger.WithContext(ctx), productRecs, listingRecs, model.Options{
		Workers:       workers,
		SuppressEmpty: matchSuppressEmpty,
	})
	if err != nil {
		return err
	}

	if err := writeResultsFile(matchResults, res.Products, matchSuppressEmpty); err != nil {
		return err
	}

	if matchStore != "" {
		store, err := runstore.Open(matchStore)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Save(&res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s saved to %s\n", id, matchStore)
	}

	logger.Info().
		Int("matched", res.Stats.Matched).
		Int("listings", res.Stats.Listings).
		Str("results", matchResults).
		Msg("done")
	return nil
}

func writeResultsFile(path string, results []model.ProductResult, suppressEmpty bool) error {
	if path == "-" {
		return fileio.WriteResults(os.Stdout, results, suppressEmpty)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fileio.WriteResults(f, results, suppressEmpty); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
