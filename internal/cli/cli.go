package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version     string
	verbose     bool
	silent      bool
	configPath  string
	config      *fileConfig
	initialized bool
	rootCmd     *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version}
	c.setupCommands()
	return c
}

// setupCommands initializes all CLI commands and their configurations.
func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:          "parallign",
		Short:        "Learn and apply fragment alignments between parallel strings",
		Version:      c.version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.initApp()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	c.rootCmd.PersistentFlags().BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging")
	c.rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML file with default training and store settings")

	c.rootCmd.AddCommand(c.newTrainCommand())
	c.rootCmd.AddCommand(c.newAlignCommand())
	c.rootCmd.AddCommand(c.newEvaluateCommand())
	c.rootCmd.AddCommand(c.newInspectCommand())
	c.rootCmd.AddCommand(c.newModelsCommand())
	c.rootCmd.AddCommand(c.newUpCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	return c.rootCmd.Execute()
}

// initApp initializes logging.
func (c *CLI) initApp() {
	if c.initialized {
		return
	}
	c.initialized = true

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	if c.silent {
		level = slog.Level(100)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// fileConfig is the layout of the --config file. Command-line flags
// override any value set here.
type fileConfig struct {
	Tokenizer     string   `yaml:"tokenizer"`
	Normalize     []string `yaml:"normalize"`
	Repeat        *int     `yaml:"repeat"`
	Significance  *float64 `yaml:"significance"`
	Workers       int      `yaml:"workers"`
	Store         string   `yaml:"store"`
	StoreLocation string   `yaml:"store_location"`
}

func (c *CLI) loadConfig() (*fileConfig, error) {
	if c.config != nil {
		return c.config, nil
	}
	c.config = &fileConfig{}
	if c.configPath == "" {
		return c.config, nil
	}
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c.config); err != nil && !errors.Is(err, io.EOF) {
		c.config = nil
		return nil, fmt.Errorf("parse config %s: %w", c.configPath, err)
	}
	slog.Debug("Config loaded", "path", c.configPath)
	return c.config, nil
}
