package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/groundwater-portal/reportload/internal/batch"
	"github.com/groundwater-portal/reportload/internal/config"
	"github.com/groundwater-portal/reportload/internal/files/filesystem"
	"github.com/groundwater-portal/reportload/internal/header"
	"github.com/groundwater-portal/reportload/internal/source"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// batchFlags holds the flags shared by load and schema.
type batchFlags struct {
	config     string
	table      string
	headerMode string
	format     string
	encoding   string
	delimiter  string
}

func addBatchFlags(cmd *cobra.Command, f *batchFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "",
		"Path to reportload.yaml or the directory containing it (default: ./reportload.yaml if present)")
	flags.StringVarP(&f.table, "table", "t", "",
		"Destination table, optionally schema-qualified (default: reports)")
	flags.StringVar(&f.headerMode, "header-mode", "",
		"Header reconciliation: merge (multi-row header) or single (one row plus provenance column)")
	flags.StringVar(&f.format, "format", "",
		"Layout name from the formats section, applied to files given as arguments")
	flags.StringVar(&f.encoding, "encoding", "",
		"Character encoding of CSV inputs, e.g. windows-1252 (default: utf-8)")
	flags.StringVar(&f.delimiter, "delimiter", "",
		"CSV field delimiter (default: ,)")

	_ = cmd.RegisterFlagCompletionFunc("header-mode", completeHeaderModes)
}

// loadProjectConfig loads .env and the project configuration.
// A missing reportload.yaml yields the defaults unless --config named one explicitly.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = "."
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !explicit {
			return config.Default(), nil
		}
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("config %s not found: %w", path, reportload.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, reportload.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// applyBatchFlags overrides the project configuration with non-empty flags
// and validates the result.
func applyBatchFlags(cfg *config.ProjectConfig, f batchFlags) error {
	if f.table != "" {
		cfg.Table = f.table
	}
	if f.headerMode != "" {
		cfg.HeaderMode = reportload.HeaderMode(f.headerMode)
	}
	if f.encoding != "" {
		cfg.CSV.Encoding = f.encoding
	}
	if f.delimiter != "" {
		cfg.CSV.Delimiter = f.delimiter
	}
	if f.format != "" {
		if _, err := cfg.LayoutFor(f.format); err != nil {
			return fmt.Errorf("--format: %w", err)
		}
	}
	cfg.ApplyDefaults()
	return cfg.Validate()
}

// resolveInputs returns the files to process: the arguments when given,
// with the --format layout, otherwise the files listed in the configuration.
func resolveInputs(cfg *config.ProjectConfig, args []string, format string) ([]reportload.InputFile, error) {
	if len(args) > 0 {
		layout, err := cfg.LayoutFor(format)
		if err != nil {
			return nil, err
		}
		inputs := make([]reportload.InputFile, len(args))
		for i, path := range args {
			inputs[i] = reportload.InputFile{Path: path, Layout: layout}
		}
		return inputs, nil
	}

	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("no input files: pass them as arguments or list them under files: in %s: %w",
			config.ConfigFileName, reportload.ErrInvalidConfig)
	}
	inputs := make([]reportload.InputFile, len(cfg.Files))
	for i, f := range cfg.Files {
		name := f.Format
		if name == "" {
			name = format
		}
		layout, err := cfg.LayoutFor(name)
		if err != nil {
			return nil, fmt.Errorf("files[%d] %s: %w", i, f.Path, err)
		}
		inputs[i] = reportload.InputFile{Path: f.Path, Layout: layout}
	}
	return inputs, nil
}

// newAssembler builds the file reader, header reconciler and assembler
// described by the configuration.
func newAssembler(cfg *config.ProjectConfig, fs filesystem.FileSystemProvider, logger reportload.Logger) (*batch.Assembler, error) {
	opts := source.DefaultOptions()
	opts.Delimiter = []rune(cfg.CSV.Delimiter)[0]
	opts.Encoding = cfg.CSV.Encoding
	opts.NAValues = cfg.CSV.NAValues
	opts.Sheet = cfg.CSV.Sheet
	if err := source.ValidateEncoding(opts.Encoding); err != nil {
		return nil, err
	}

	reconciler, err := header.New(cfg.HeaderMode, cfg.Provenance.Column)
	if err != nil {
		return nil, err
	}
	return batch.NewAssembler(source.NewReader(fs, opts), reconciler, cfg.Provenance.Prefix, cfg.Provenance.Suffix, logger), nil
}

// resolveTimeout prefers an explicit --timeout, then reportload.yaml, then the flag default.
func resolveTimeout(cmd *cobra.Command, cfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if cfg != nil && cfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout in %s: %w: %w", config.ConfigFileName, reportload.ErrInvalidConfig, err)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}
