package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem/internal/workload"
)

func init() {
	stressCmd.Flags().StringVarP(&stressConfigPath, "config", "c", "", "Workload profile (YAML)")
	stressCmd.Flags().IntVarP(&stressIterations, "iterations", "n", 0, "Override the profile's iteration count")
	stressCmd.Flags().StringVarP(&stressAllocator, "allocator", "a", "", "Override the profile's allocator (heap, native)")
	stressCmd.Flags().BoolVarP(&stressDump, "dump", "d", false, "Dump the processed profile")
	stressCmd.Flags().StringVar(&influxURL, "influx-url", "", "InfluxDB URL; metrics are exported when set")
	stressCmd.Flags().StringVar(&influxOrg, "influx-org", "", "InfluxDB organization")
	stressCmd.Flags().StringVar(&influxBucket, "influx-bucket", "rawmem", "InfluxDB bucket")
	stressCmd.Flags().StringVar(&influxToken, "influx-token", "", "InfluxDB auth token")
	rootCmd.AddCommand(stressCmd)
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run the container stress workload",
	Args:  cobra.NoArgs,
	RunE:  stress,
}

var (
	stressConfigPath string
	stressIterations int
	stressAllocator  string
	stressDump       bool
)

func stress(cmd *cobra.Command, _ []string) error {
	cfg, err := stressConfig()
	if err != nil {
		return err
	}
	if stressDump {
		log.Info("workload profile\n" + cfg.Dump())
	}

	a, closeAllocator, err := cfg.NewAllocator()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeAllocator(); err != nil {
			log.Error("close allocator", zap.Error(err))
		}
	}()

	var observers []workload.Observer
	if influxURL != "" {
		exp := newInfluxExporter(cmd.Context(), influxURL, influxToken, influxOrg, influxBucket, cfg.Allocator)
		defer exp.Close()
		observers = append(observers, exp.Observe)
	}

	rep, err := workload.Run(cfg, a, log.Named("workload"), observers...)
	if err != nil {
		return errors.Wrap(err, "stress")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "iterations  %d\n", rep.Iterations)
	fmt.Fprintf(cmd.OutOrStdout(), "scopes      %d\n", rep.Scopes)
	fmt.Fprintf(cmd.OutOrStdout(), "elements    %d\n", rep.Elements)
	fmt.Fprintf(cmd.OutOrStdout(), "checksum    %.6g\n", rep.Checksum)
	fmt.Fprintf(cmd.OutOrStdout(), "allocations %d\n", rep.Metrics.Allocations)
	fmt.Fprintf(cmd.OutOrStdout(), "peak bytes  %d\n", rep.Metrics.PeakBytes)
	fmt.Fprintf(cmd.OutOrStdout(), "leaked      %d\n", rep.Leaked)
	fmt.Fprintf(cmd.OutOrStdout(), "duration    %s\n", rep.Duration)
	return nil
}

func stressConfig() (workload.Config, error) {
	cfg := workload.DefaultConfig()
	if stressConfigPath != "" {
		var err error
		if cfg, err = workload.LoadConfig(stressConfigPath); err != nil {
			return cfg, err
		}
	}
	if stressIterations > 0 {
		cfg.Iterations = stressIterations
	}
	if stressAllocator != "" {
		cfg.Allocator = stressAllocator
	}
	return cfg, cfg.Validate()
}
