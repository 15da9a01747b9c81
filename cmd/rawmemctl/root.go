package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/tracker"
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&doCpuProfile, "cpu", false, "Enable CPU profiling")
	rootCmd.PersistentFlags().BoolVar(&doMemoryProfile, "memory", false, "Enable memory profiling")
}

var rootCmd = &cobra.Command{
	Use:           strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0])),
	Short:         "Raw memory container toolkit",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		log = l
		hostmem.SetLogger(log.Named("hostmem"))
		tracker.SetLogger(log.Named("tracker"))

		if doCpuProfile {
			cpuProfile = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		}
		if doMemoryProfile {
			memoryProfile = profile.Start(profile.MemProfile, profile.ProfilePath("."))
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cpuProfile != nil {
			cpuProfile.Stop()
		}
		if memoryProfile != nil {
			memoryProfile.Stop()
		}
		_ = log.Sync()
	},
}

var (
	verbose         bool
	doCpuProfile    bool
	cpuProfile      interface{ Stop() }
	doMemoryProfile bool
	memoryProfile   interface{ Stop() }
	log             = zap.NewNop()
)

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return cfg.Build()
	}
	return zap.NewProduction()
}
