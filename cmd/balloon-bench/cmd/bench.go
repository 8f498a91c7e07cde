package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/go-balloon"
)

const (
	defaultIterations = 32
	defaultMaxMemory  = 32 * 1024 * 1024
	minMemory         = 4 * 1024
)

// tableHeader names the columns printed for every benchmarked configuration.
const tableHeader = "Mix\tComp\tComb\tMCost\tTCost\tNeighb\tThreads\tWall\tBytesTotal\n"

// suite produces the option sets one benchmark walks through, in order.
type suite func(maxMemory uint64) []balloon.Options

func (c *command) initBenchCmds() {
	suites := []struct {
		name  string
		short string
		run   suite
	}{
		{"neighbors", "Vary the neighbor count of the single-buffer strategy", neighborsSuite},
		{"mix", "Compare mixing strategies across memory costs", mixSuite},
		{"hash", "Compare compression primitives across memory costs", hashSuite},
		{"threads", "Vary the worker count of the parallel strategy", threadsSuite},
	}

	for _, s := range suites {
		cmd := &cobra.Command{
			Use:   s.name,
			Short: s.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.bindFlags(cmd); err != nil {
					return err
				}
				logger, err := c.logger(cmd)
				if err != nil {
					return fmt.Errorf("new logger: %w", err)
				}

				iterations := c.config.GetInt(optionNameIterations)
				if iterations <= 0 {
					return fmt.Errorf("iterations must be positive, got %d", iterations)
				}
				maxMemory := c.config.GetUint64(optionNameMaxMemory)

				logger.Infof("running %s benchmark, %d iterations per configuration", cmd.Name(), iterations)
				return runSuite(cmd.OutOrStdout(), logger, s.run(maxMemory), iterations)
			},
		}
		cmd.Flags().Int(optionNameIterations, defaultIterations, "hashes computed per configuration")
		cmd.Flags().Uint64(optionNameMaxMemory, defaultMaxMemory, "largest memory cost in bytes")
		c.root.AddCommand(cmd)
	}
}

// runSuite prints the table header and one row per valid configuration.
// Configurations the engine rejects are skipped.
func runSuite(w io.Writer, logger *logrus.Logger, configs []balloon.Options, iterations int) error {
	if _, err := io.WriteString(w, tableHeader); err != nil {
		return err
	}

	for i := range configs {
		opts := &configs[i]
		if err := opts.Validate(); err != nil {
			logger.Debugf("skipping %v/%v/%v at %d bytes: %v",
				opts.Strategy, opts.Compression, opts.Combine, opts.MemoryCost, err)
			continue
		}
		if err := runOnce(w, logger, opts, iterations); err != nil {
			return err
		}
	}
	return nil
}

// runOnce hashes a fixed input iterations times under opts and prints the
// average wall time per hash.
func runOnce(w io.Writer, logger *logrus.Logger, opts *balloon.Options, iterations int) error {
	secret := []byte("test input")
	salt := []byte("test salt")
	out := make([]byte, 32)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := balloon.Hash(out, secret, salt, opts); err != nil {
			return fmt.Errorf("hash %v at %d bytes: %w", opts.Strategy, opts.MemoryCost, err)
		}
	}
	elapsed := time.Since(start)

	mem := opts.MemoryUsed()
	bytesTotal := mem * opts.TimeCost * uint64(iterations)
	wall := elapsed.Seconds() / float64(iterations)

	logger.WithFields(logrus.Fields{
		"strategy": opts.Strategy,
		"memory":   mem,
		"elapsed":  elapsed,
	}).Trace("configuration done")

	_, err := fmt.Fprintf(w, "%v\t%v\t%v\t%d\t%d\t%d\t%d\t%g\t%d\n",
		opts.Strategy, opts.Compression, opts.Combine, mem, opts.TimeCost,
		opts.Neighbors, opts.Threads, wall, bytesTotal)
	return err
}

// memorySteps returns minMemory, minMemory*factor, ... up to maxMemory.
func memorySteps(maxMemory, factor uint64) []uint64 {
	var steps []uint64
	for m := uint64(minMemory); m <= maxMemory; m *= factor {
		steps = append(steps, m)
	}
	return steps
}

func neighborsSuite(maxMemory uint64) []balloon.Options {
	var configs []balloon.Options
	for _, m := range memorySteps(maxMemory, 8) {
		for n := uint32(1); n < 10; n++ {
			opts := balloon.DefaultOptions()
			opts.MemoryCost = m
			opts.TimeCost = 8
			opts.Neighbors = n
			configs = append(configs, opts)
		}
	}
	return configs
}

func mixSuite(maxMemory uint64) []balloon.Options {
	base := []struct {
		strategy balloon.Strategy
		timeCost uint64
	}{
		{balloon.StrategyScrypt, 1},
		{balloon.StrategyCatenaBRG, 1},
		{balloon.StrategyBalloon, 1},
		{balloon.StrategyArgon2Uniform, 1},
		{balloon.StrategyArgon2Uniform, 8},
		{balloon.StrategyBalloon, 8},
		{balloon.StrategyCatenaDBG, 3},
	}

	var configs []balloon.Options
	for _, b := range base {
		for _, m := range memorySteps(maxMemory, 2) {
			opts := balloon.DefaultOptions()
			opts.Strategy = b.strategy
			opts.TimeCost = b.timeCost
			opts.MemoryCost = m
			opts.Neighbors = 3
			if b.strategy != balloon.StrategyBalloon {
				opts.Neighbors = 1
			}
			configs = append(configs, opts)
		}
	}
	return configs
}

func hashSuite(maxMemory uint64) []balloon.Options {
	var configs []balloon.Options
	for _, m := range memorySteps(maxMemory, 2) {
		for _, comp := range balloon.Compressions {
			opts := balloon.DefaultOptions()
			opts.MemoryCost = m
			opts.Compression = comp
			opts.Neighbors = balloon.NeighborCount(&opts)
			configs = append(configs, opts)
		}
	}
	return configs
}

func threadsSuite(maxMemory uint64) []balloon.Options {
	mem := uint64(1024 * 1024)
	if mem > maxMemory {
		mem = maxMemory
	}

	var configs []balloon.Options
	for threads := uint32(1); threads < 9; threads++ {
		for _, comb := range balloon.Combines {
			opts := balloon.DefaultOptions()
			opts.Strategy = balloon.StrategyBalloonParallel
			opts.Compression = balloon.CompressionKeccak1600
			opts.Combine = comb
			opts.MemoryCost = mem
			opts.Threads = threads
			opts.Neighbors = balloon.NeighborCount(&opts)
			configs = append(configs, opts)
		}
	}
	return configs
}
