// Package cmd implements the balloon-bench command line: benchmark suites
// over the hashing engine's cost parameters and a one-shot hash command.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	optionNameVerbosity   = "verbosity"
	optionNameIterations  = "iterations"
	optionNameMaxMemory   = "max-memory"
	optionNameSecret      = "secret"
	optionNameSalt        = "salt"
	optionNameMemory      = "memory"
	optionNameTime        = "time"
	optionNameNeighbors   = "neighbors"
	optionNameThreads     = "threads"
	optionNameStrategy    = "strategy"
	optionNameCompression = "compression"
	optionNameCombine     = "combine"
	optionNameXORThenHash = "xor-then-hash"
	optionNameSize        = "size"
)

func init() {
	cobra.EnableCommandSorting = false
}

type command struct {
	root    *cobra.Command
	config  *viper.Viper
	cfgFile string
	homeDir string
}

type option func(*command)

func newCommand(opts ...option) (c *command, err error) {
	c = &command{
		root: &cobra.Command{
			Use:           "balloon-bench",
			Short:         "Benchmark the balloon memory-hard hashing engine",
			SilenceErrors: true,
			SilenceUsage:  true,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return c.initConfig()
			},
		},
	}

	for _, o := range opts {
		o(c)
	}

	if err := c.setHomeDir(); err != nil {
		return nil, err
	}

	c.initGlobalFlags()
	c.initBenchCmds()
	c.initOnceCmd()

	return c, nil
}

func (c *command) Execute() (err error) {
	return c.root.Execute()
}

// Execute parses command line arguments and runs appropriate functions.
func Execute() (err error) {
	c, err := newCommand()
	if err != nil {
		return err
	}
	return c.Execute()
}

func (c *command) initGlobalFlags() {
	globalFlags := c.root.PersistentFlags()
	globalFlags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.balloon-bench.yaml)")
	globalFlags.String(optionNameVerbosity, "info", "log verbosity level 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace")
}

func (c *command) initConfig() (err error) {
	config := viper.New()
	configName := ".balloon-bench"
	if c.cfgFile != "" {
		// Use config file from the flag.
		config.SetConfigFile(c.cfgFile)
	} else {
		// Search config in home directory with name ".balloon-bench" (without extension).
		config.AddConfigPath(c.homeDir)
		config.SetConfigName(configName)
	}

	// Environment
	config.SetEnvPrefix("balloon")
	config.AutomaticEnv() // read in environment variables that match
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return err
		}
	}
	c.config = config
	return nil
}

func (c *command) setHomeDir() (err error) {
	if c.homeDir != "" {
		return
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	c.homeDir = filepath.Clean(dir)
	return nil
}

// bindFlags makes the flags of cmd visible through the viper config, so a
// flag, a BALLOON_* variable or a config file entry can set each option.
func (c *command) bindFlags(cmd *cobra.Command) error {
	if err := c.config.BindPFlags(c.root.PersistentFlags()); err != nil {
		return fmt.Errorf("bind global flags: %w", err)
	}
	if err := c.config.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// logger builds the logger for the configured verbosity.
func (c *command) logger(cmd *cobra.Command) (*logrus.Logger, error) {
	return newLogger(cmd, strings.ToLower(c.config.GetString(optionNameVerbosity)))
}

// newLogger writes log lines to the command's error stream so they do not
// mix with the result table on standard output.
func newLogger(cmd *cobra.Command, verbosity string) (*logrus.Logger, error) {
	var logger *logrus.Logger
	switch verbosity {
	case "0", "silent":
		logger = newLogrus(io.Discard, logrus.PanicLevel)
	case "1", "error":
		logger = newLogrus(cmd.ErrOrStderr(), logrus.ErrorLevel)
	case "2", "warn":
		logger = newLogrus(cmd.ErrOrStderr(), logrus.WarnLevel)
	case "3", "info":
		logger = newLogrus(cmd.ErrOrStderr(), logrus.InfoLevel)
	case "4", "debug":
		logger = newLogrus(cmd.ErrOrStderr(), logrus.DebugLevel)
	case "5", "trace":
		logger = newLogrus(cmd.ErrOrStderr(), logrus.TraceLevel)
	default:
		return nil, fmt.Errorf("unknown verbosity level %q", verbosity)
	}
	return logger, nil
}

func newLogrus(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	return l
}
