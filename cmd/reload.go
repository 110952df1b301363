package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/go-coastline/coastline/internal/loader"
	"github.com/go-coastline/coastline/internal/logger"
	"github.com/go-coastline/coastline/internal/proj"
)

var reloadProjectionStr string

var reloadCmd = &cobra.Command{
	Use:   "reload <staged.parquet>",
	Short: "Commit features staged by a previous --stage-dir run to PostgreSQL",
	Long: `Read a Parquet file produced by "assemble --stage-dir" and COPY its
rings/error_points/error_lines rows into the same three tables a direct
commit would have written, without re-running the core pipeline.

Useful when a run was staged on one machine and needs to be committed
from another, or when a staged run's commit failed partway and needs to
be retried.`,
	Args: cobra.ExactArgs(1),
	Run:  runReload,
}

func init() {
	rootCmd.AddCommand(reloadCmd)

	reloadCmd.Flags().StringVarP(&reloadProjectionStr, "projection", "E", "4326", "SRID the staged geometries were written in (4326 or 3857)")
}

func runReload(cmd *cobra.Command, args []string) {
	path := args[0]
	log := logger.Get()

	srid, err := proj.ParseSRID(reloadProjectionStr)
	if err != nil {
		exitWithError("invalid projection", err)
	}
	cfg.Projection = srid

	totalStart := time.Now()
	ctx := context.Background()

	log.Info("starting coastline reload", zap.String("source", path), zap.Int("projection", cfg.Projection))

	l, err := loader.New(ctx, cfg)
	if err != nil {
		exitWithError("failed to connect to database", err)
	}
	defer l.Close()

	stats, err := l.ReloadFile(ctx, path)
	if err != nil {
		exitWithError("failed to reload staged features", err)
	}

	log.Info("reload complete",
		zap.Duration("total_time", time.Since(totalStart).Round(time.Second)),
		zap.Int64("rows_loaded", stats.RowsLoaded),
	)
}
