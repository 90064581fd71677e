// Package cli provides the command-line interface for tsconvert.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tskit-dev/tsconvert"
	"github.com/tskit-dev/tsconvert/internal/config"
	"github.com/tskit-dev/tsconvert/internal/logging"
	"github.com/tskit-dev/tsconvert/internal/version"
)

// CLI holds the command-line interface configuration.
type CLI struct {
	log     zerolog.Logger
	rootCmd *cobra.Command
	cfg     *config.Config

	in  io.Reader
	out io.Writer

	configFile string
	logLevel   string

	inputFile  string
	outputFile string
	fromFormat string
	toFormat   string
	precision  int
	ploidy     int
	contig     string

	csvFile    string
	idColumn   string
	idProperty string

	formatsOutput string
}

// New creates a new CLI instance reading stdin and writing stdout.
func New(log zerolog.Logger) *CLI {
	return NewWithStreams(log, os.Stdin, os.Stdout)
}

// NewWithStreams creates a CLI whose "-" input and output are bound to
// the given streams. Tests use it to drive conversions in memory.
func NewWithStreams(log zerolog.Logger, in io.Reader, out io.Writer) *CLI {
	cli := &CLI{
		log: log,
		in:  in,
		out: out,
	}

	cli.rootCmd = &cobra.Command{
		Use:     "tsconvert",
		Short:   "Convert genealogical tree sequences between file formats",
		Long:    "A CLI tool that converts tree sequence data between formats such as newick, ms, VCF, nexus, and its own tables, JSON, and YAML renditions.",
		Version: version.Version,
	}
	cli.rootCmd.SetOut(out)

	cli.setupFlags()
	cli.rootCmd.AddCommand(cli.convertCommand())
	cli.rootCmd.AddCommand(cli.annotateCommand())
	cli.rootCmd.AddCommand(cli.formatsCommand())

	return cli
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Path to a YAML config file")
	flags.StringVar(&c.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// setup loads the configuration behind every subcommand and applies
// the log level.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	path := c.configFile
	if path == "" {
		path = config.FindFile()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.log = c.log.Level(level)
	return nil
}

func (c *CLI) registry() *tsconvert.Registry {
	return tsconvert.NewDefaultRegistry(tsconvert.Options{
		Precision: c.cfg.Precision,
		VCF: tsconvert.VCFOptions{
			Ploidy: c.cfg.VCF.Ploidy,
			Contig: c.cfg.VCF.Contig,
		},
	})
}

func (c *CLI) convertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "convert",
		Short:             "Read a tree sequence in one format and write it in another",
		PersistentPreRunE: c.setup,
		RunE:              c.runConvert,
	}
	cmd.Flags().StringVarP(&c.inputFile, "input", "i", "-", "Input file, - for stdin")
	cmd.Flags().StringVarP(&c.outputFile, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVarP(&c.fromFormat, "from", "f", "tables", "Input format")
	cmd.Flags().StringVarP(&c.toFormat, "to", "t", "tables", "Output format")
	cmd.Flags().IntVar(&c.precision, "precision", 14, "Digits after the decimal point in branch lengths")
	cmd.Flags().IntVar(&c.ploidy, "ploidy", 1, "Genomes per individual in VCF output")
	cmd.Flags().StringVar(&c.contig, "contig", "1", "Contig name in VCF output")

	return cmd
}

func (c *CLI) annotateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "annotate",
		Short:             "Merge per-node metadata from a CSV or TSV file",
		PersistentPreRunE: c.setup,
		RunE:              c.runAnnotate,
	}
	cmd.Flags().StringVarP(&c.inputFile, "input", "i", "-", "Input file, - for stdin")
	cmd.Flags().StringVarP(&c.outputFile, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVarP(&c.fromFormat, "from", "f", "tables", "Input format")
	cmd.Flags().StringVarP(&c.toFormat, "to", "t", "tables", "Output format")
	cmd.Flags().StringVar(&c.csvFile, "csv", "", "CSV or TSV file with one row per node (required)")
	cmd.Flags().StringVar(&c.idColumn, "id-column", "name", "Column matching rows to nodes")
	cmd.Flags().StringVar(&c.idProperty, "id-property", "name", "Node metadata property matching nodes to rows")

	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func (c *CLI) formatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "formats",
		Short:             "List the supported formats",
		PersistentPreRunE: c.setup,
		RunE:              c.runFormats,
	}
	cmd.Flags().StringVarP(&c.formatsOutput, "output", "o", "text", "Listing format: text or json")
	return cmd
}

// Execute runs the CLI.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// ExecuteArgs runs the CLI with the given arguments instead of the
// process ones.
func (c *CLI) ExecuteArgs(args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.Execute()
}

func (c *CLI) runConvert(_ *cobra.Command, _ []string) error {
	registry := c.registry()

	c.log.Info().Msgf("Reading %s input from: %s", c.fromFormat, describeFile(c.inputFile))
	input, closeInput, err := c.openInput()
	if err != nil {
		return err
	}
	defer closeInput()

	ts, err := registry.From(c.fromFormat, input)
	if err != nil {
		return fmt.Errorf("failed to read %s input: %w", c.fromFormat, wrapUnsupported(registry, err))
	}

	c.log.Info().Msgf("Loaded tree sequence: %d samples, %d trees, %d sites",
		ts.NumSamples(), ts.NumTrees(), ts.NumSites())
	c.log.Info().Msgf("Converting to %s format...", c.toFormat)

	output, closeOutput, err := c.createOutput()
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := registry.To(c.toFormat, ts, output); err != nil {
		return fmt.Errorf("conversion failed: %w", wrapUnsupported(registry, err))
	}

	c.log.Info().Msgf("Successfully created: %s", describeFile(c.outputFile))
	return nil
}

func (c *CLI) runAnnotate(_ *cobra.Command, _ []string) error {
	registry := c.registry()

	input, closeInput, err := c.openInput()
	if err != nil {
		return err
	}
	defer closeInput()

	ts, err := registry.From(c.fromFormat, input)
	if err != nil {
		return fmt.Errorf("failed to read %s input: %w", c.fromFormat, wrapUnsupported(registry, err))
	}

	csvFile, err := os.Open(c.csvFile)
	if err != nil {
		return fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer csvFile.Close()

	c.log.Info().Msgf("Annotating %d nodes from: %s", ts.NumNodes(), c.csvFile)
	annotated, err := tsconvert.AnnotateNodesCSV(ts, csvFile, c.idColumn, c.idProperty)
	if err != nil {
		return fmt.Errorf("annotation failed: %w", err)
	}

	output, closeOutput, err := c.createOutput()
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := registry.To(c.toFormat, annotated, output); err != nil {
		return fmt.Errorf("conversion failed: %w", wrapUnsupported(registry, err))
	}

	c.log.Info().Msgf("Successfully created: %s", describeFile(c.outputFile))
	return nil
}

func (c *CLI) runFormats(cmd *cobra.Command, _ []string) error {
	descriptors := c.registry().Formats()
	switch c.formatsOutput {
	case "json":
		type formatInfo struct {
			Name        string `json:"name"`
			Description string `json:"description,omitempty"`
			Read        bool   `json:"read"`
			Write       bool   `json:"write"`
		}
		infos := make([]formatInfo, 0, len(descriptors))
		for _, d := range descriptors {
			infos = append(infos, formatInfo{
				Name:        d.Name,
				Description: d.Description,
				Read:        d.Decoder != nil,
				Write:       d.Encoder != nil,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "text":
		for _, d := range descriptors {
			var directions []string
			if d.Decoder != nil {
				directions = append(directions, "read")
			}
			if d.Encoder != nil {
				directions = append(directions, "write")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-12s %s\n",
				d.Name, strings.Join(directions, ", "), d.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown listing format %q, want text or json", c.formatsOutput)
	}
}

// wrapUnsupported extends unknown-format errors with the names the
// registry does know.
func wrapUnsupported(registry *tsconvert.Registry, err error) error {
	var unsupported *tsconvert.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		return err
	}
	var names []string
	for _, d := range registry.Formats() {
		names = append(names, d.Name)
	}
	return fmt.Errorf("%w (known formats: %s)", err, strings.Join(names, ", "))
}

func (c *CLI) openInput() (io.Reader, func(), error) {
	if c.inputFile == "" || c.inputFile == "-" {
		return c.in, func() {}, nil
	}
	f, err := os.Open(c.inputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func (c *CLI) createOutput() (io.Writer, func(), error) {
	if c.outputFile == "" || c.outputFile == "-" {
		return c.out, func() {}, nil
	}
	f, err := os.Create(c.outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func describeFile(path string) string {
	if path == "" || path == "-" {
		return "(standard stream)"
	}
	return path
}
