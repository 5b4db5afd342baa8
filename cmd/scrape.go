package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/policy/simple"
	"github.com/JakeFAU/spirits-scraper/internal/scraper"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// scrapeSummary is printed when a scrape finishes.
type scrapeSummary struct {
	Category   string               `json:"category"`
	Counters   spirits.JobCounters  `json:"counters"`
	Efficiency float64              `json:"efficiency"`
	Stored     []scrapeSummaryEntry `json:"stored"`
}

type scrapeSummaryEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

func newScrapeCmd() *cobra.Command {
	var params spirits.JobParameters
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one discovery pass in the foreground",
		Long: `Searches for the category's generated queries (or --query values), extracts
spirits from results and catalog pages, and stores the non-duplicates. Prints
a JSON summary of the run.`,
		Annotations: map[string]string{needsApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			params.Category = strings.ToLower(strings.TrimSpace(params.Category))
			if params.Category == "" {
				return errors.New("--category is required")
			}
			if policy := simple.New(appInstance.Config.Scraper.Categories); !policy.AllowCategory(params.Category) {
				return fmt.Errorf("category %q not enabled (allowed: %s)",
					params.Category, strings.Join(policy.Categories(), ", "))
			}
			if params.MaxQueries == 0 {
				params.MaxQueries = appInstance.Config.Scraper.MaxQueries
			}
			s, err := appInstance.Scraper()
			if err != nil {
				return err
			}
			summary, err := runScrape(cmd, s, params)
			if err != nil {
				return err
			}
			appInstance.Logger.Info("scrape finished",
				zap.String("category", summary.Category),
				zap.Int("stored", summary.Counters.Stored),
				zap.Int("api_calls", summary.Counters.APICalls),
			)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVar(&params.Category, "category", "", "spirit category to scrape (bourbon, scotch, ...)")
	cmd.Flags().IntVar(&params.Limit, "limit", scraper.DefaultLimit, "stop after this many spirits are stored")
	cmd.Flags().StringSliceVar(&params.Queries, "query", nil, "explicit search query (repeatable)")
	cmd.Flags().IntVar(&params.MaxQueries, "max-queries", 0, "cap on generated queries (defaults to scraper.max_queries)")
	return cmd
}

func runScrape(cmd *cobra.Command, s *scraper.Scraper, params spirits.JobParameters) (scrapeSummary, error) {
	summary := scrapeSummary{Category: params.Category, Stored: []scrapeSummaryEntry{}}
	err := s.Run(cmd.Context(), params, &summary.Counters, func(rec spirits.Record) {
		summary.Stored = append(summary.Stored, scrapeSummaryEntry{ID: rec.ID, Name: rec.Name, Brand: rec.Brand})
	})
	summary.Efficiency = summary.Counters.Efficiency()
	if err != nil {
		return summary, fmt.Errorf("scrape %s: %w", params.Category, err)
	}
	return summary, nil
}
