package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/spirits-scraper/internal/brand"
	"github.com/JakeFAU/spirits-scraper/internal/cleaner"
	"github.com/JakeFAU/spirits-scraper/internal/dedup"
	"github.com/JakeFAU/spirits-scraper/internal/extract"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func newDedupeCmd() *cobra.Command {
	var (
		threshold  float64
		abvA, abvB float64
	)
	cmd := &cobra.Command{
		Use:   "dedupe NAME_A NAME_B",
		Short: "Reports whether two product names describe the same spirit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold <= 0 || threshold > 1 {
				return fmt.Errorf("--threshold must be in (0, 1], got %v", threshold)
			}
			a := spirits.Candidate{Name: args[0], ABV: abvA}
			b := spirits.Candidate{Name: args[1], ABV: abvB}
			verdict := dedup.IsDuplicate(a, b, threshold)
			return printJSON(cmd.OutOrStdout(), struct {
				spirits.Verdict
				KeyA string `json:"key_a"`
				KeyB string `json:"key_b"`
			}{verdict, dedup.NormalizeKey(a.Name), dedup.NormalizeKey(b.Name)})
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", dedup.DefaultThreshold, "similarity needed to call a duplicate")
	cmd.Flags().Float64Var(&abvA, "abv-a", 0, "ABV of the first product (0 = unknown)")
	cmd.Flags().Float64Var(&abvB, "abv-b", 0, "ABV of the second product (0 = unknown)")
	return cmd
}

func newBrandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brand NAME...",
		Short: "Extracts the brand from product names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Name  string `json:"name"`
				Brand string `json:"brand"`
				Known bool   `json:"known"`
			}
			rows := make([]row, 0, len(args))
			for _, name := range args {
				b := brand.Extract(name)
				rows = append(rows, row{Name: name, Brand: b, Known: brand.IsValid(b)})
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize NAME...",
		Short: "Cleans product names and shows their dedup key and detected type",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Input   string `json:"input"`
				Name    string `json:"name"`
				Key     string `json:"key"`
				Brand   string `json:"brand"`
				Type    string `json:"type"`
				SubType string `json:"sub_type,omitempty"`
				Age     string `json:"age,omitempty"`
			}
			rows := make([]row, 0, len(args))
			for _, input := range args {
				name := cleaner.CleanProductName(input)
				b := brand.Extract(name)
				d := extract.DetectType(name, b, "")
				age, _ := extract.ParseAge(name)
				rows = append(rows, row{
					Input:   input,
					Name:    name,
					Key:     dedup.NormalizeKey(name),
					Brand:   b,
					Type:    d.Type,
					SubType: d.SubType,
					Age:     age,
				})
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
}
