package cmd

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/go-coastline/coastline/internal/config"
	"github.com/go-coastline/coastline/internal/logger"
	"github.com/go-coastline/coastline/internal/metrics"
	"github.com/go-coastline/coastline/internal/output"
	"github.com/go-coastline/coastline/internal/proj"
)

var (
	checkBBoxStr   string
	checkProjStr   string
	checkStyleFile string
	checkMaxGap    float64
	checkPolicy    string
)

var checkCmd = &cobra.Command{
	Use:   "check <input.osm.pbf>",
	Short: "Run the coastline pipeline and report defects without writing to PostgreSQL",
	Long: `Run the same assembly pipeline as "assemble" (read, stitch, sweep,
gap-close, emit) but stop short of any database or Parquet output. Prints
a defect summary and exits non-zero if any ring failed to close, any
polygon was invalid and unrepairable, or the sweep found a crossing.

Useful for validating a style file or gap threshold against an extract
before committing to a full import.`,
	Args: cobra.ExactArgs(1),
	Run:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkBBoxStr, "bbox", "b", "", "Bounding box filter: minlon,minlat,maxlon,maxlat")
	checkCmd.Flags().StringVarP(&checkProjStr, "projection", "E", "4326", "Target projection SRID (4326 or 3857)")
	checkCmd.Flags().StringVarP(&checkStyleFile, "style", "S", "", "Style YAML file selecting which ways count as coastline input")
	checkCmd.Flags().Float64Var(&checkMaxGap, "max-gap", 0.001, "Maximum gap-closing distance in degrees")
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "Optional Lua script overriding the gap distance by region")
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg.InputFile = args[0]
	log := logger.Get()

	if checkBBoxStr != "" {
		bbox, err := config.ParseBBox(checkBBoxStr)
		if err != nil {
			exitWithError("invalid bbox", err)
		}
		cfg.BBox = bbox
	}

	srid, err := proj.ParseSRID(checkProjStr)
	if err != nil {
		exitWithError("invalid projection", err)
	}
	cfg.Projection = srid
	cfg.StyleFile = checkStyleFile
	cfg.MaxGapDistance = checkMaxGap
	cfg.PolicyFile = checkPolicy
	cfg.StageDir = ""

	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	totalStart := time.Now()
	ctx := context.Background()

	mc := metrics.NewCollector(cfg.MetricsInterval, log)
	go mc.Start(ctx)

	log.Info("starting coastline check",
		zap.String("input", cfg.InputFile),
		zap.Int("projection", cfg.Projection),
		zap.Float64("max_gap", cfg.MaxGapDistance),
	)

	res, nodeCount, wayCount, collection := runPipeline(ctx, log, mc)

	notClosed := 0
	for _, l := range res.ErrorLines {
		if l.Reason == output.ReasonNotClosed {
			notClosed++
		}
	}
	crossings := 0
	for _, p := range res.ErrorPoints {
		if p.Reason == output.ReasonIntersection {
			crossings++
		}
	}

	totalElapsed := time.Since(totalStart)
	log.Info("check complete",
		zap.Duration("total_time", totalElapsed.Round(time.Second)),
		zap.Int64("nodes", nodeCount),
		zap.Int64("ways", wayCount),
		zap.Int("rings_emitted", res.Stats.RingsEmitted),
		zap.Int("rings_still_open", notClosed),
		zap.Int("self_intersections", crossings),
		zap.Int("invalid_polygons", res.Stats.InvalidPolygons-res.Stats.RepairedPolygons),
		zap.Int("ways_total", collection.Ways()),
	)

	if notClosed > 0 || crossings > 0 || res.Stats.InvalidPolygons > res.Stats.RepairedPolygons {
		log.Error("coastline check found unresolved defects")
		os.Exit(1)
	}
}
