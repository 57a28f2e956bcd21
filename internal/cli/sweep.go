package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pagelake/pagelake/internal/config"
	"github.com/pagelake/pagelake/internal/logging"
	"github.com/pagelake/pagelake/internal/storage"
	"github.com/pagelake/pagelake/internal/sweep"
	"github.com/spf13/cobra"
)

// SweepCmd returns the sweep command, a one-shot pass over the pending
// chunk directory. Intended for cron or manual recovery.
func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Upload pending chunk files once and exit",
		Long:  "Scan the local chunk directory, upload every parquet file to remote storage and print a JSON report",
		RunE:  runSweep,
	}

	cmd.Flags().Bool("delete", false, "Delete local files after a confirmed upload")
	cmd.Flags().Int("concurrency", 0, "Max parallel uploads (defaults to SWEEP_CONCURRENCY)")

	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(cfg.Debug, true)

	storeClient := storage.NewClient(storage.ClientConfig{
		Endpoint: cfg.UploadEndpoint,
		Bucket:   cfg.UploadBucket,
		BasePath: cfg.UploadBasePath,
		Token:    cfg.UploadToken,
		Timeout:  cfg.UploadTimeout,
	})

	deleteFlag, _ := cmd.Flags().GetBool("delete")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.SweepConcurrency
	}

	sweeper := sweep.NewSweeper(cfg.DataDir, storeClient, sweep.Config{
		Concurrency:     concurrency,
		DeleteOnSuccess: deleteFlag || cfg.SweepDeleteOnSuccess,
	})

	report, err := sweeper.Run(cmd.Context())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to upload", report.Failed, report.Total)
	}
	return nil
}
