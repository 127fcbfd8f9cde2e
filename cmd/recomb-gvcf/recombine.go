package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maize-genetics/recomb-gvcf/internal/audit"
	"github.com/maize-genetics/recomb-gvcf/internal/bedmap"
	"github.com/maize-genetics/recomb-gvcf/internal/config"
	"github.com/maize-genetics/recomb-gvcf/internal/fasta"
	"github.com/maize-genetics/recomb-gvcf/internal/recombine"
	"github.com/maize-genetics/recomb-gvcf/internal/resize"
)

func newRecombineCmd() *cobra.Command {
	var (
		bedDir       string
		gvcfDir      string
		reference    string
		outGVCFDir   string
		outBEDDir    string
		phaseAWorker int
	)

	cmd := &cobra.Command{
		Use:   "recombine",
		Short: "Build recombined GVCFs from a set of donor GVCFs and per-donor recombination BEDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if phaseAWorker > 0 {
				cfg.PhaseAWorkers = phaseAWorker
			}

			store, auditErr := audit.Open(cfg.AuditDBPath)
			if auditErr != nil {
				logger.Warn("audit store unavailable, continuing without run recording", zap.Error(auditErr))
			}
			if store != nil {
				defer store.Close()
			}

			started := time.Now()
			result, runErr := runRecombine(ctx, bedDir, gvcfDir, reference, outGVCFDir, outBEDDir, cfg.PhaseAWorkers)

			if store != nil {
				if _, err := store.RecordRun(audit.Run{
					Kind:             "recombine",
					StartedAt:        started,
					FinishedAt:       time.Now(),
					BEDDir:           bedDir,
					GVCFDir:          gvcfDir,
					Donors:           result.stats.DonorsProcessed,
					Targets:          result.targets,
					StraddlingIndels: result.straddling,
					SkippedIndels:    result.stats.RecordsSkipped,
					InputDigest:      result.digest,
					Err:              runErr,
				}); err != nil {
					logger.Warn("failed to record run in audit store", zap.Error(err))
				}
			}

			return runErr
		},
	}

	cmd.Flags().StringVar(&bedDir, "bed-dir", "", "directory of per-donor recombination BED files (required)")
	cmd.Flags().StringVar(&gvcfDir, "gvcf-dir", "", "directory of per-donor GVCF files (required)")
	cmd.Flags().StringVar(&reference, "reference", "", "reference FASTA used to fill reference-block bases (required)")
	cmd.Flags().StringVar(&outGVCFDir, "out-gvcf-dir", "", "output directory for per-target recombined GVCFs (required)")
	cmd.Flags().StringVar(&outBEDDir, "out-bed-dir", "", "output directory for resized per-target BED files (required)")
	cmd.Flags().IntVar(&phaseAWorker, "phase-a-workers", 0, "override the configured number of Phase A indel-scan workers")
	for _, f := range []string{"bed-dir", "gvcf-dir", "reference", "out-gvcf-dir", "out-bed-dir"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

type recombineResult struct {
	stats      recombine.Stats
	digest     string
	targets    int
	straddling int
}

func runRecombine(ctx context.Context, bedDir, gvcfDir, referencePath, outGVCFDir, outBEDDir string, phaseAWorkers int) (recombineResult, error) {
	recomb, targets, err := bedmap.Load(bedDir)
	if err != nil {
		return recombineResult{}, err
	}
	digest := bedmap.Digest(recomb)

	straddling, err := resize.CollectStraddling(ctx, recomb, gvcfDir, resize.Options{PhaseAWorkers: phaseAWorkers}, logger)
	if err != nil {
		return recombineResult{}, err
	}
	resized, err := resize.ResizeMaps(recomb, straddling, logger)
	if err != nil {
		return recombineResult{}, err
	}

	ref, err := fasta.Load(referencePath)
	if err != nil {
		return recombineResult{}, err
	}

	stats, err := recombine.Run(ctx, resized, gvcfDir, outGVCFDir, outBEDDir, ref, logger)
	if err != nil {
		return recombineResult{}, err
	}

	return recombineResult{
		stats:      stats,
		digest:     digest,
		targets:    len(targets),
		straddling: len(straddling),
	}, nil
}
