package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Download and cache census blocks for the given regions",
	Long: `Runs cache-or-fetch for each region: a region with a cache file is skipped,
otherwise its archive is downloaded, every block shape is reduced to a 16 byte record
and the region cache file is written in one step.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		regionsStr, _ := cmd.Flags().GetString("regions")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency > 0 {
			cfg.Tiger.PrefetchConcurrency = concurrency
		}

		loader, err := newLoader(cfg, regionsStr)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		if err := loader.Prefetch(ctx); err != nil {
			return eris.Wrap(err, "extract")
		}

		total := 0
		for _, r := range loader.Regions() {
			blocks, err := loader.LoadRegion(ctx, r)
			if err != nil {
				return eris.Wrap(err, "extract")
			}
			total += len(blocks)
			fmt.Printf("%-10s %10d blocks\n", r, len(blocks))
		}

		fmt.Printf("%d blocks in %d regions\n", total, len(loader.Regions()))
		return nil
	},
}

func init() {
	extractCmd.Flags().String("regions", "", "comma-separated state abbreviations or FIPS codes (default: all 50 + DC)")
	extractCmd.Flags().Int("concurrency", 0, "parallel archive downloads (default: from config or 1)")
	rootCmd.AddCommand(extractCmd)
}
