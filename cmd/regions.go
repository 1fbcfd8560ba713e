package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show region archive URLs and cache status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		regionsStr, _ := cmd.Flags().GetString("regions")

		loader, err := newLoader(cfg, regionsStr)
		if err != nil {
			return eris.Wrap(err, "regions")
		}
		rows, err := loader.Status()
		if err != nil {
			return eris.Wrap(err, "regions: get status")
		}

		fmt.Printf("%-4s %-5s %10s %-16s %s\n", "FIPS", "State", "Blocks", "Cached At", "URL")
		fmt.Println(strings.Repeat("-", 100))

		cached := 0
		for _, r := range rows {
			blocks, at := "-", "-"
			if r.Cached {
				cached++
				blocks = fmt.Sprintf("%d", r.Blocks)
				at = r.Modified.Format("2006-01-02 15:04")
			}
			fmt.Printf("%02d   %-5s %10s %-16s %s\n", r.Region.Index, r.Region.Abbr, blocks, at, r.URL)
		}

		fmt.Printf("%d of %d regions cached\n", cached, len(rows))
		return nil
	},
}

func init() {
	regionsCmd.Flags().String("regions", "", "comma-separated state abbreviations or FIPS codes (default: all 50 + DC)")
	rootCmd.AddCommand(regionsCmd)
}
