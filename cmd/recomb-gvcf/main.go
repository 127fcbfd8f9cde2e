// Package main provides the recomb-gvcf command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maize-genetics/recomb-gvcf/internal/obs"
)

var (
	cfgFile  string
	logLevel string

	logger *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "recomb-gvcf",
		Short: "Recombinant GVCF engine",
		Long:  "Builds recombined GVCFs from per-sample recombination maps and donor GVCFs, and applies ad hoc mutations to a single baseline.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := obs.New(logLevel, "stderr")
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.recomb-gvcf.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRecombineCmd())
	root.AddCommand(newMutateCmd())
	root.AddCommand(newConfigCmd())

	return root
}
