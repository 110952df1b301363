package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/go-coastline/coastline/internal/config"
	"github.com/go-coastline/coastline/internal/gapcloser"
	"github.com/go-coastline/coastline/internal/logger"
	"github.com/go-coastline/coastline/internal/metrics"
	"github.com/go-coastline/coastline/internal/nodeindex"
	"github.com/go-coastline/coastline/internal/output"
	"github.com/go-coastline/coastline/internal/parquet"
	"github.com/go-coastline/coastline/internal/policy"
	"github.com/go-coastline/coastline/internal/proj"
	"github.com/go-coastline/coastline/internal/reader"
	"github.com/go-coastline/coastline/internal/ring"
	"github.com/go-coastline/coastline/internal/ringcollection"
	"github.com/go-coastline/coastline/internal/sink"
	"github.com/go-coastline/coastline/internal/style"
	"github.com/go-coastline/coastline/internal/sweep"
	"github.com/go-coastline/coastline/internal/wkb"
)

var (
	bboxStr       string
	projectionStr string
	styleFile     string
	maxGapStr     float64
	policyFile    string
	stageDir      string
	dryRun        bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <input.osm.pbf>",
	Short: "Assemble coastline ways into closed rings and commit the result",
	Long: `Run the full coastline pipeline against an OSM PBF extract:

  1. Pass 1: index every node's coordinates into a memory-mapped lookup
  2. Pass 2: stream coastline ways, stitching them into rings as they arrive
  3. Sweep the finished rings for self-intersections and overlaps
  4. Close small gaps between open rings within the configured threshold
  5. Emit rings/error_points/error_lines and commit them to PostgreSQL
     (optionally staging to Parquet first with --stage-dir)`,
	Args: cobra.ExactArgs(1),
	Run:  runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringVarP(&bboxStr, "bbox", "b", "", "Bounding box filter: minlon,minlat,maxlon,maxlat")
	assembleCmd.Flags().StringVarP(&projectionStr, "projection", "E", "4326", "Target projection SRID (4326 or 3857)")
	assembleCmd.Flags().StringVarP(&styleFile, "style", "S", "", "Style YAML file selecting which ways count as coastline input")
	assembleCmd.Flags().Float64Var(&maxGapStr, "max-gap", 0.001, "Maximum gap-closing distance in degrees")
	assembleCmd.Flags().StringVar(&policyFile, "policy", "", "Optional Lua script overriding the gap distance by region")
	assembleCmd.Flags().StringVar(&stageDir, "stage-dir", "", "Stage features to a Parquet file in this directory before committing")
	assembleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline and report statistics without committing to PostgreSQL")
}

func runAssemble(cmd *cobra.Command, args []string) {
	cfg.InputFile = args[0]
	log := logger.Get()

	if bboxStr != "" {
		bbox, err := config.ParseBBox(bboxStr)
		if err != nil {
			exitWithError("invalid bbox", err)
		}
		cfg.BBox = bbox
	}

	srid, err := proj.ParseSRID(projectionStr)
	if err != nil {
		exitWithError("invalid projection", err)
	}
	cfg.Projection = srid
	cfg.StyleFile = styleFile
	cfg.MaxGapDistance = maxGapStr
	cfg.PolicyFile = policyFile
	cfg.StageDir = stageDir

	if err := cfg.Validate(); err != nil {
		exitWithError("invalid configuration", err)
	}

	totalStart := time.Now()
	ctx := context.Background()

	mc := metrics.NewCollector(cfg.MetricsInterval, log)
	go mc.Start(ctx)

	log.Info("starting coastline assembly",
		zap.String("input", cfg.InputFile),
		zap.Int("projection", cfg.Projection),
		zap.Float64("max_gap", cfg.MaxGapDistance),
		zap.Bool("dry_run", dryRun),
	)

	res, nodeCount, wayCount, _ := runPipeline(ctx, log, mc)

	if cfg.StageDir != "" {
		stagePath := fmt.Sprintf("%s/coastline-%d.parquet", cfg.StageDir, time.Now().UnixNano())
		if err := stageResult(stagePath, res); err != nil {
			exitWithError("failed to stage features to parquet", err)
		}
		log.Info("staged features to parquet", zap.String("path", stagePath))
	}

	if dryRun {
		log.Info("dry run: skipping database commit")
		return
	}

	sk, err := sink.New(ctx, cfg)
	if err != nil {
		exitWithError("failed to connect to database", err)
	}
	defer sk.Close()

	if err := sk.CommitAll(ctx, res); err != nil {
		exitWithError("failed to commit features", err)
	}

	totalElapsed := time.Since(totalStart)
	log.Info("assemble complete",
		zap.Duration("total_time", totalElapsed.Round(time.Second)),
		zap.Int64("nodes", nodeCount),
		zap.Int64("ways", wayCount),
	)
}

// runPipeline runs pass 1/2 reading, ring stitching, sweeping, gap
// closing, and output emission against the already-validated cfg. Both
// assembleCmd and checkCmd share this: assemble additionally commits the
// result to PostgreSQL (and optionally stages it to Parquet first),
// while check only reports the statistics it produces.
func runPipeline(ctx context.Context, log *zap.Logger, mc *metrics.Collector) (*output.Result, int64, int64, *ringcollection.Collection) {
	var err error

	styleCfg := style.DefaultConfig()
	if cfg.StyleFile != "" {
		styleCfg, err = style.LoadConfig(cfg.StyleFile)
		if err != nil {
			exitWithError("failed to load style", err)
		}
	}
	filter := styleCfg.CoastlineFilter()

	var pol *policy.Policy
	if cfg.PolicyFile != "" {
		pol, err = policy.Load(cfg.PolicyFile)
		if err != nil {
			exitWithError("failed to load policy script", err)
		}
		defer pol.Close()
	}

	r, err := reader.Open(cfg.InputFile, filter)
	if err != nil {
		exitWithError("failed to open input", err)
	}
	r = r.WithBBox(cfg.BBox).WithWorkers(cfg.Workers)

	idxPath := cfg.InputFile + ".nodeidx"
	idx, err := nodeindex.New(idxPath)
	if err != nil {
		exitWithError("failed to create node index", err)
	}
	defer idx.Close()

	mc.SetStage("index")
	nodeCount, err := r.IndexNodes(ctx, idx)
	if err != nil {
		exitWithError("pass 1 (node indexing) failed", err)
	}
	logger.Stage("index").Info("pass 1 complete", zap.Int64("nodes", nodeCount))

	mc.SetStage("stitch")
	collection := ringcollection.New()
	ways, errs := r.Ways(ctx, idx)
	var wayCount int64
	for w := range ways {
		if err := collection.AddWay(w); err != nil {
			exitWithError("failed to stitch way into ring", err)
		}
		wayCount++
	}
	if err := <-errs; err != nil {
		exitWithError("pass 2 (way streaming) failed", err)
	}
	logger.Stage("stitch").Info("pass 2 complete", zap.Int64("ways", wayCount))

	mc.SetStage("sweep")
	sweepResult := sweep.Run(collection.Rings())
	logger.Stage("sweep").Info("sweep complete",
		zap.Int("overlaps", len(sweepResult.Overlaps)),
		zap.Int("crossings", len(sweepResult.Crossings)),
	)

	mc.SetStage("gapclose")
	var gapReport gapcloser.Report
	if pol != nil {
		gapReport, err = gapcloser.CloseRingsWithPolicy(collection, cfg.MaxGapDistance, pol)
		if err != nil {
			logger.Stage("gapclose").Warn("policy gap_distance hook failed; falling back to --max-gap", zap.Error(err))
		}
	} else {
		gapReport = gapcloser.CloseRings(collection, cfg.MaxGapDistance)
	}
	logger.Stage("gapclose").Info("gap closing complete",
		zap.Int("fixed_endpoints", len(gapReport.FixedEndpoints)),
		zap.Int("added_lines", len(gapReport.AddedLines)),
		zap.Int("fixed_rings", collection.FixedRings()),
	)

	mc.SetStage("emit")
	res := output.EmitRings(collection.Rings())

	candidates, classifyErrPoints, classifyStats, validity := output.EmitPolygonsForClassifier(logger.Stage("validate"), collection.Rings())
	res.ErrorPoints = append(res.ErrorPoints, classifyErrPoints...)
	res.Stats.InvalidPolygons += classifyStats.InvalidPolygons
	res.Stats.RepairedPolygons += classifyStats.RepairedPolygons
	output.ApplyValidity(res, validity)

	// The real land/water classification (containment nesting) is an
	// external collaborator (spec.md §5's "higher-level polygon layer");
	// in its absence the largest ring by node count is treated as the
	// outer boundary so emit_questionable has something to compare
	// against.
	classifyOuterByLargest(candidates)

	res.ErrorLines = append(res.ErrorLines, output.EmitQuestionable(candidates)...)

	sweepLines, sweepPoints := output.EmitSweepResult(sweepResult)
	res.ErrorLines = append(res.ErrorLines, sweepLines...)
	res.ErrorPoints = append(res.ErrorPoints, sweepPoints...)

	gapPoints, gapLines := output.EmitGapCloserReport(gapReport)
	res.ErrorPoints = append(res.ErrorPoints, gapPoints...)
	res.ErrorLines = append(res.ErrorLines, gapLines...)

	if cfg.Projection != proj.SRID4326 {
		transformer, err := proj.NewTransformer(proj.SRID4326, cfg.Projection)
		if err != nil {
			exitWithError("failed to build projection transformer", err)
		}
		for i := range res.Rings {
			transformer.TransformPositions(res.Rings[i].Positions)
		}
		for i := range res.ErrorLines {
			transformer.TransformPositions(res.ErrorLines[i].Positions)
		}
		for i := range res.ErrorPoints {
			res.ErrorPoints[i].Position = transformer.TransformPosition(res.ErrorPoints[i].Position)
		}
	}

	counters := output.Counters(collection)
	log.Info("assembly complete",
		zap.Int("rings_emitted", res.Stats.RingsEmitted),
		zap.Int("error_points", len(res.ErrorPoints)),
		zap.Int("error_lines", len(res.ErrorLines)),
		zap.Int("warnings", res.Stats.Warnings),
		zap.Int("invalid_polygons", res.Stats.InvalidPolygons),
		zap.Int("repaired_polygons", res.Stats.RepairedPolygons),
		zap.Int("ways", counters.Ways),
		zap.Int("rings_from_single_way", counters.RingsFromSingleWay),
		zap.Int("fixed_rings", counters.FixedRings),
	)

	return res, nodeCount, wayCount, collection
}

// classifyOuterByLargest marks the ring with the most nodes in each
// unclassified set as outer. A placeholder for the external polygon
// classifier spec.md §5 declares out of scope.
func classifyOuterByLargest(rings []*ring.CoastlineRing) {
	if len(rings) == 0 {
		return
	}
	sorted := append([]*ring.CoastlineRing(nil), rings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Length() > sorted[j].Length() })
	sorted[0].SetOuter()
}

func stageResult(path string, res *output.Result) error {
	w, err := parquet.NewWriter(path, cfg.BatchSize)
	if err != nil {
		return err
	}
	for _, r := range res.Rings {
		if err := w.Write(parquet.Row{
			Kind: parquet.KindRing, OSMID: int64(r.RingID),
			NWays: int32(r.NWays), NPoints: int32(r.NPoints), Fixed: r.Fixed,
			WKB: encodeRingWKB(r),
		}); err != nil {
			w.Close()
			return err
		}
	}
	for _, p := range res.ErrorPoints {
		if err := w.Write(parquet.Row{
			Kind: parquet.KindErrorPoint, OSMID: int64(p.OSMID), Reason: p.Reason,
			WKB: encodePointWKB(p),
		}); err != nil {
			w.Close()
			return err
		}
	}
	for _, l := range res.ErrorLines {
		if err := w.Write(parquet.Row{
			Kind: parquet.KindErrorLine, OSMID: int64(l.OSMID), Reason: l.Reason,
			WKB: encodeLineWKB(l),
		}); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func encodeRingWKB(r output.RingFeature) []byte {
	return wkb.NewEncoderWithSRID(256, cfg.Projection).EncodeRingPolygon(r.Positions)
}

func encodePointWKB(p output.ErrorPoint) []byte {
	return wkb.NewEncoderWithSRID(64, cfg.Projection).EncodeRingPoint(p.Position)
}

func encodeLineWKB(l output.ErrorLine) []byte {
	return wkb.NewEncoderWithSRID(256, cfg.Projection).EncodeRingLineString(l.Positions)
}
