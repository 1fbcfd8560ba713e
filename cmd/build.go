package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/blockpop/internal/pipeline"
	"github.com/sells-group/blockpop/internal/report"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Attach nearby census blocks to every city and write the report",
	Long: `Ingests every configured region (cache-or-fetch), sorts all blocks by longitude
once, then finds the blocks within --radius meters of each of the first --max-cities
cities and writes one document with a base64 "blocks" field per city.

City longitudes are read as degrees West, positive.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		citiesPath, _ := cmd.Flags().GetString("cities")
		out, _ := cmd.Flags().GetString("out")
		formatStr, _ := cmd.Flags().GetString("format")
		compressionStr, _ := cmd.Flags().GetString("compression")
		indent, _ := cmd.Flags().GetBool("indent")
		maxCities, _ := cmd.Flags().GetInt("max-cities")
		radius, _ := cmd.Flags().GetFloat64("radius")
		regionsStr, _ := cmd.Flags().GetString("regions")

		// Use config values as defaults.
		if out == "" {
			out = cfg.Output.Path
		}
		if formatStr == "" {
			formatStr = cfg.Output.Format
		}
		if compressionStr == "" {
			compressionStr = cfg.Output.Compression
		}
		if !cmd.Flags().Changed("indent") {
			indent = cfg.Output.Indent
		}
		if maxCities == 0 {
			maxCities = cfg.Match.MaxCities
		}
		if radius == 0 {
			radius = cfg.Match.RadiusMeters
		}

		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		compression, err := report.ParseCompression(compressionStr)
		if err != nil {
			return err
		}

		loader, err := newLoader(cfg, regionsStr)
		if err != nil {
			return eris.Wrap(err, "build")
		}

		zap.L().Info("starting build",
			zap.String("command", "build"),
			zap.String("cities", citiesPath),
			zap.String("out", out),
			zap.String("format", string(format)),
			zap.String("compression", string(compression)),
			zap.Int("max_cities", maxCities),
			zap.Float64("radius_meters", radius),
			zap.Int("regions", len(loader.Regions())),
		)

		sum, err := pipeline.New(loader, pipeline.Options{
			CitiesPath: citiesPath,
			MaxCities:  maxCities,
			Radius:     radius,
			OutputPath: out,
			Report: report.Options{
				Format:      format,
				Compression: compression,
				Indent:      indent,
			},
		}).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "build")
		}

		fmt.Printf("%d cities (%d with blocks) from %d blocks in %d regions -> %s (%s)\n",
			sum.Cities, sum.MatchedCities, sum.Blocks, sum.Regions, sum.OutputPath,
			sum.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	buildCmd.Flags().String("cities", "", "city list CSV (name, state, latitude, longitude, pop* columns)")
	buildCmd.Flags().String("out", "", "output file (default: from config or cities.json)")
	buildCmd.Flags().String("format", "", "output format: json, yaml or msgpack (default: from config)")
	buildCmd.Flags().String("compression", "", "output compression: none, gzip or zstd (default: from config)")
	buildCmd.Flags().Bool("indent", false, "indent JSON output")
	buildCmd.Flags().Int("max-cities", 0, "process at most this many cities (default: from config or 1000)")
	buildCmd.Flags().Float64("radius", 0, "search radius in meters (default: from config or 80000)")
	buildCmd.Flags().String("regions", "", "comma-separated state abbreviations or FIPS codes (default: all 50 + DC)")
	_ = buildCmd.MarkFlagRequired("cities")
	rootCmd.AddCommand(buildCmd)
}
