package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up when Load is given a directory.
const ConfigFileName = "reportload.yaml"

// DefaultFormatName names the built-in layout.
const DefaultFormatName = "default"

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// ProvenanceConfig describes how a file name becomes a provenance tag.
type ProvenanceConfig struct {
	// Column names the tag column. Required in single header mode;
	// in merge mode the tag column is only added when Column is set.
	Column string `yaml:"column"`
	Prefix string `yaml:"prefix"`
	// Suffix defaults to the file extension when empty.
	Suffix string `yaml:"suffix"`
}

// CSVConfig controls how report files are parsed.
type CSVConfig struct {
	Delimiter string   `yaml:"delimiter"`
	Encoding  string   `yaml:"encoding"`
	NAValues  []string `yaml:"na_values"`
	// Sheet selects the worksheet of .xlsx inputs; the first sheet when empty.
	Sheet string `yaml:"sheet"`
}

// FileEntry is one input file with an optional format name.
// In YAML it is either a plain path or a mapping with path and format.
type FileEntry struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format,omitempty"`
}

// UnmarshalYAML accepts both "- report.csv" and "- {path: report.csv, format: v2}".
func (f *FileEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		f.Path = value.Value
		f.Format = ""
		return nil
	}
	type plain FileEntry
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = FileEntry(p)
	return nil
}

type ProjectConfig struct {
	Connection    ConnectionConfig             `yaml:"connection"`
	Table         string                       `yaml:"table"`
	Mode          reportload.LoadMode          `yaml:"mode"`
	HeaderMode    reportload.HeaderMode        `yaml:"header_mode"`
	Provenance    ProvenanceConfig             `yaml:"provenance"`
	CSV           CSVConfig                    `yaml:"csv"`
	DefaultFormat string                       `yaml:"default_format"`
	Formats       map[string]reportload.Layout `yaml:"formats"`
	Files         []FileEntry                  `yaml:"files"`
	Timeout       string                       `yaml:"timeout"`
}

// Default returns the configuration used when no reportload.yaml exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads the configuration at path. A directory path is resolved to
// the reportload.yaml inside it. Defaults are applied to unset fields.
func Load(path string) (*ProjectConfig, error) {
	configPath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		configPath = filepath.Join(path, ConfigFileName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with the reportload defaults.
func (c *ProjectConfig) ApplyDefaults() {
	if c.Table == "" {
		c.Table = reportload.DefaultTable
	}
	if c.Mode == "" {
		c.Mode = reportload.DefaultMode
	}
	if c.HeaderMode == "" {
		c.HeaderMode = reportload.DefaultHeaderMode
	}
	if c.HeaderMode == reportload.HeaderModeSingle && c.Provenance.Column == "" {
		c.Provenance.Column = reportload.DefaultProvenanceColumn
	}
	if c.CSV.Delimiter == "" {
		c.CSV.Delimiter = ","
	}
	if c.CSV.NAValues == nil {
		c.CSV.NAValues = append([]string(nil), reportload.DefaultNAValues...)
	}
	if c.Formats == nil {
		c.Formats = map[string]reportload.Layout{}
	}
	if _, ok := c.Formats[DefaultFormatName]; !ok {
		c.Formats[DefaultFormatName] = reportload.DefaultLayout
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = DefaultFormatName
	}
}

// Validate checks the configuration and returns every problem found.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if !c.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("mode %q must be %q or %q: %w",
			c.Mode, reportload.LoadModeReplace, reportload.LoadModeAppend, reportload.ErrInvalidConfig))
	}
	if !c.HeaderMode.IsValid() {
		errs = append(errs, fmt.Errorf("header_mode %q must be %q or %q: %w",
			c.HeaderMode, reportload.HeaderModeMerge, reportload.HeaderModeSingle, reportload.ErrInvalidConfig))
	}
	if c.HeaderMode == reportload.HeaderModeSingle && c.Provenance.Column == "" {
		errs = append(errs, fmt.Errorf("provenance.column is required in single header mode: %w", reportload.ErrInvalidConfig))
	}
	if len([]rune(c.CSV.Delimiter)) != 1 {
		errs = append(errs, fmt.Errorf("csv.delimiter must be a single character, got %q: %w", c.CSV.Delimiter, reportload.ErrInvalidConfig))
	}
	if _, ok := c.Formats[c.DefaultFormat]; !ok {
		errs = append(errs, fmt.Errorf("default_format %q is not defined under formats: %w", c.DefaultFormat, reportload.ErrInvalidConfig))
	}

	names := make([]string, 0, len(c.Formats))
	for name := range c.Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Formats[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("format %q: %w", name, err))
		}
	}

	for i, f := range c.Files {
		if f.Path == "" {
			errs = append(errs, fmt.Errorf("files[%d]: path is required: %w", i, reportload.ErrInvalidConfig))
		}
		if f.Format != "" {
			if _, ok := c.Formats[f.Format]; !ok {
				errs = append(errs, fmt.Errorf("files[%d]: unknown format %q: %w", i, f.Format, reportload.ErrInvalidConfig))
			}
		}
	}

	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("timeout %q: %v: %w", c.Timeout, err, reportload.ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// LayoutFor returns the layout of the named format, or of the default format
// when name is empty.
func (c *ProjectConfig) LayoutFor(name string) (reportload.Layout, error) {
	if name == "" {
		name = c.DefaultFormat
	}
	layout, ok := c.Formats[name]
	if !ok {
		return reportload.Layout{}, fmt.Errorf("unknown format %q: %w", name, reportload.ErrInvalidConfig)
	}
	return layout, nil
}

// FilePaths returns the configured input paths in order.
func (c *ProjectConfig) FilePaths() []string {
	paths := make([]string, len(c.Files))
	for i, f := range c.Files {
		paths[i] = f.Path
	}
	return paths
}
