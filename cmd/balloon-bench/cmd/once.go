package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opd-ai/go-balloon"
)

func (c *command) initOnceCmd() {
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Hash one secret and salt and print the output in hex",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.bindFlags(cmd); err != nil {
				return err
			}
			logger, err := c.logger(cmd)
			if err != nil {
				return fmt.Errorf("new logger: %w", err)
			}

			opts, err := c.hashOptions()
			if err != nil {
				return err
			}

			size := c.config.GetInt(optionNameSize)
			if size <= 0 {
				return fmt.Errorf("output size must be positive, got %d", size)
			}
			out := make([]byte, size)

			logger.Debugf("hashing with %+v", opts)
			start := time.Now()
			if err := balloon.Hash(out, []byte(c.config.GetString(optionNameSecret)), []byte(c.config.GetString(optionNameSalt)), &opts); err != nil {
				return err
			}
			logger.WithField("elapsed", time.Since(start)).Info("hash computed")

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
			return err
		},
	}

	defaults := balloon.DefaultOptions()
	cmd.Flags().String(optionNameSecret, "test input", "secret to hash")
	cmd.Flags().String(optionNameSalt, "test salt", "salt")
	cmd.Flags().Uint64(optionNameMemory, defaults.MemoryCost, "memory cost in bytes")
	cmd.Flags().Uint64(optionNameTime, defaults.TimeCost, "time cost (mixing passes)")
	cmd.Flags().Uint32(optionNameNeighbors, 0, "neighbors per block (0 picks the recommended count)")
	cmd.Flags().Uint32(optionNameThreads, defaults.Threads, "worker threads for the parallel strategy")
	cmd.Flags().String(optionNameStrategy, defaults.Strategy.String(), "mixing strategy: "+names(balloon.Strategies))
	cmd.Flags().String(optionNameCompression, defaults.Compression.String(), "compression primitive: "+names(balloon.Compressions))
	cmd.Flags().String(optionNameCombine, defaults.Combine.String(), "combine mode: "+names(balloon.Combines))
	cmd.Flags().Bool(optionNameXORThenHash, false, "fold compression inputs with XOR before hashing")
	cmd.Flags().Int(optionNameSize, 32, "output length in bytes")

	c.root.AddCommand(cmd)
}

// hashOptions assembles balloon options from the bound configuration.
func (c *command) hashOptions() (balloon.Options, error) {
	opts := balloon.Options{
		MemoryCost:  c.config.GetUint64(optionNameMemory),
		TimeCost:    c.config.GetUint64(optionNameTime),
		Neighbors:   c.config.GetUint32(optionNameNeighbors),
		Threads:     c.config.GetUint32(optionNameThreads),
		XORThenHash: c.config.GetBool(optionNameXORThenHash),
	}

	var err error
	if opts.Strategy, err = lookup(balloon.Strategies, c.config.GetString(optionNameStrategy)); err != nil {
		return opts, fmt.Errorf("strategy: %w", err)
	}
	if opts.Compression, err = lookup(balloon.Compressions, c.config.GetString(optionNameCompression)); err != nil {
		return opts, fmt.Errorf("compression: %w", err)
	}
	if opts.Combine, err = lookup(balloon.Combines, c.config.GetString(optionNameCombine)); err != nil {
		return opts, fmt.Errorf("combine: %w", err)
	}

	if opts.Neighbors == 0 {
		opts.Neighbors = balloon.NeighborCount(&opts)
	}
	return opts, nil
}

// lookup finds the value whose name matches s, ignoring case.
func lookup[T fmt.Stringer](values []T, s string) (T, error) {
	for _, v := range values {
		if strings.EqualFold(v.String(), s) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown name %q, want one of %s", s, names(values))
}

func names[T fmt.Stringer](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
