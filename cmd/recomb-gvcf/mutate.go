package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maize-genetics/recomb-gvcf/internal/audit"
	"github.com/maize-genetics/recomb-gvcf/internal/config"
	"github.com/maize-genetics/recomb-gvcf/internal/gvcf"
	"github.com/maize-genetics/recomb-gvcf/internal/mutate"
)

func newMutateCmd() *cobra.Command {
	var (
		baselinePath  string
		mutationsPath string
		sampleName    string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "mutate",
		Short: "Apply a GVCF of ad hoc mutations onto a single recombined baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			store, auditErr := audit.Open(cfg.AuditDBPath)
			if auditErr != nil {
				logger.Warn("audit store unavailable, continuing without run recording", zap.Error(auditErr))
			}
			if store != nil {
				defer store.Close()
			}

			started := time.Now()
			runErr := runMutate(baselinePath, mutationsPath, outPath, sampleName)

			if store != nil {
				if _, err := store.RecordRun(audit.Run{
					Kind:       "mutate",
					StartedAt:  started,
					FinishedAt: time.Now(),
					GVCFDir:    mutationsPath,
					Err:        runErr,
				}); err != nil {
					logger.Warn("failed to record run in audit store", zap.Error(err))
				}
			}

			return runErr
		},
	}

	cmd.Flags().StringVar(&baselinePath, "baseline", "", "baseline GVCF to mutate (required)")
	cmd.Flags().StringVar(&mutationsPath, "mutations", "", "GVCF of mutations to apply onto the baseline (required)")
	cmd.Flags().StringVar(&sampleName, "sample", "", "sample name written into the output GVCF header (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output GVCF path (required)")
	for _, f := range []string{"baseline", "mutations", "sample", "out"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func runMutate(baselinePath, mutationsPath, outPath, sampleName string) error {
	mutations, err := loadMutations(mutationsPath)
	if err != nil {
		return err
	}
	return mutate.ApplyAll(baselinePath, mutations, outPath, sampleName)
}

func loadMutations(path string) ([]mutate.Mutation, error) {
	r, err := gvcf.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var mutations []mutate.Mutation
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		mutations = append(mutations, mutate.Mutation{
			Variant:  rec.Variant(),
			Genotype: rec.Genotype,
		})
	}
	return mutations, nil
}
