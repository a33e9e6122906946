// Command ratecard-import loads a franchise rate card workbook into the
// billing database, or exports a stored franchise configuration as a workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/courier-billing/internal/config"
	"github.com/garyjia/courier-billing/internal/container"
	"github.com/garyjia/courier-billing/internal/infrastructure/ratecard"
	"github.com/garyjia/courier-billing/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	file := flag.String("file", "", "rate card workbook (.xlsx) to import")
	export := flag.Int64("export", 0, "franchise id to export instead of importing")
	out := flag.String("out", "", "output path for -export")
	withCompany := flag.Bool("with-company", true, "include the CompanyRates sheet on export")
	flag.Parse()

	if err := run(*configPath, *file, *export, *out, *withCompany); err != nil {
		fmt.Fprintf(os.Stderr, "ratecard-import: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, file string, exportID int64, out string, withCompany bool) error {
	if (file == "") == (exportID == 0) {
		return fmt.Errorf("exactly one of -file or -export is required")
	}
	if exportID != 0 && out == "" {
		return fmt.Errorf("-out is required with -export")
	}

	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.ToLoggerConfig())
	if err != nil {
		return err
	}
	defer logger.Sync()

	cc := cfg.ToContainerConfig()
	cc.Worker.ConfigAuditEnabled = false

	c, err := container.NewContainer(cc, logger)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Close()

	if exportID != 0 {
		return exportCard(ctx, c, exportID, out, withCompany, logger)
	}

	res, err := c.Services().Importer.ImportFile(ctx, file)
	if err != nil {
		return err
	}
	fmt.Printf("franchise %d imported: version=%s sectors=%d rates=%d company_rates=%d discounts=%d overlaps=%d\n",
		res.FranchiseID, res.SnapshotVersion, res.Sectors, res.Rates, res.CompanyRates, res.Discounts, res.Overlaps)
	return nil
}

func exportCard(ctx context.Context, c *container.Container, franchiseID int64, out string, withCompany bool, logger *zap.Logger) error {
	fc, err := c.Repositories().Config.LoadFranchiseConfig(ctx, franchiseID)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	if err := ratecard.Write(f, *fc, withCompany); err != nil {
		return err
	}

	logger.Info("Rate card exported",
		zap.Int64("franchise_id", franchiseID),
		zap.String("path", out))
	return f.Close()
}
