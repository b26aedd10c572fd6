package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"price-reconciler/config"
	"price-reconciler/internal/dto"
	"price-reconciler/internal/pricing"
	"price-reconciler/internal/repository"
	"price-reconciler/internal/service"
	"price-reconciler/pkg/cache"
	"price-reconciler/pkg/logger"
	"price-reconciler/pkg/metrics"

	"github.com/spf13/cobra"
)

var (
	reconcileFile    string
	reconcileERPDump string
	reconcileOutput  string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare a price list file against current prices and print the report",
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileFile, "file", "f", "", "price list to compare (.xlsx or .csv)")
	reconcileCmd.Flags().StringVar(&reconcileERPDump, "erp-dump", "", "read current prices from an ERP JSON export instead of the live ERP")
	reconcileCmd.Flags().StringVarP(&reconcileOutput, "output", "o", "", "write the JSON report to this file instead of stdout")
	_ = reconcileCmd.MarkFlagRequired("file")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m := metrics.NewRegistry()
	var priceSource repository.PriceSourceRepository
	if reconcileERPDump != "" {
		priceSource = repository.NewFilePriceRepository(reconcileERPDump)
	} else {
		priceSource = repository.NewERPPriceRepository(cfg.ERP, log, cache.NewCache(cfg.ERP.CacheTTL, time.Minute), m)
	}
	comparisons := service.NewComparisonService(log, pricing.NewEngine(pricing.DefaultRules()), priceSource, nil, m)

	f, err := os.Open(reconcileFile)
	if err != nil {
		return fmt.Errorf("failed to open price list: %w", err)
	}
	defer f.Close()

	resp, err := comparisons.CompareUpload(ctx, dto.CompareUploadParam{FileName: filepath.Base(reconcileFile)}, f)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if reconcileOutput != "" {
		file, err := os.Create(reconcileOutput)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
