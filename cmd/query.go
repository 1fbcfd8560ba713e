package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/blockpop/internal/city"
	"github.com/sells-group/blockpop/internal/matcher"
	"github.com/sells-group/blockpop/internal/pipeline"
	"github.com/sells-group/blockpop/internal/report"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List the census blocks around one coordinate",
	Long: `Loads the given regions and prints every block inside the search box around
--lat/--lon. Longitude uses the city list convention: degrees West, positive.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		radius, _ := cmd.Flags().GetFloat64("radius")
		regionsStr, _ := cmd.Flags().GetString("regions")
		formatStr, _ := cmd.Flags().GetString("format")

		if lat < -90 || lat > 90 {
			return eris.Errorf("query: latitude %v out of range", lat)
		}
		if radius == 0 {
			radius = cfg.Match.RadiusMeters
		}

		loader, err := newLoader(cfg, regionsStr)
		if err != nil {
			return eris.Wrap(err, "query")
		}
		store, err := pipeline.New(loader, pipeline.Options{}).BuildStore(ctx)
		if err != nil {
			return eris.Wrap(err, "query")
		}

		res := matcher.New(store, radius).Match(city.Record{
			Name:      "query",
			Latitude:  lat,
			Longitude: lon,
		})

		if formatStr != "" {
			format, err := report.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			return report.Write(os.Stdout, []matcher.Result{res}, report.Options{Format: format, Indent: true})
		}

		blocks, err := matcher.DecodeBlocks(res.Blocks)
		if err != nil {
			return eris.Wrap(err, "query")
		}

		fmt.Printf("%12s %12s %10s %14s\n", "Longitude", "Latitude", "Population", "Area (m2)")
		fmt.Println(strings.Repeat("-", 51))
		for _, b := range blocks {
			fmt.Printf("%12.6f %12.6f %10d %14.0f\n", b.Longitude, b.Latitude, b.Population, b.Area)
		}
		fmt.Printf("%d blocks, population %d, within %.0f m of (%.6f, %.6f)\n",
			res.BlockCount, res.BlockPopulation, radius, res.Longitude, lat)
		return nil
	},
}

func init() {
	queryCmd.Flags().Float64("lat", 0, "latitude in degrees")
	queryCmd.Flags().Float64("lon", 0, "longitude in degrees West, positive")
	queryCmd.Flags().Float64("radius", 0, "search radius in meters (default: from config or 80000)")
	queryCmd.Flags().String("regions", "", "comma-separated state abbreviations or FIPS codes (default: all 50 + DC)")
	queryCmd.Flags().String("format", "", "print the result record as json, yaml or msgpack instead of a table")
	_ = queryCmd.MarkFlagRequired("lat")
	_ = queryCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(queryCmd)
}
