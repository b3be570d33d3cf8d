package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `connection:
  host: myhost
  port: 5433
  username: myuser
  database: mydb
  sslmode: require
  sslcert: /path/client.crt
  sslkey: /path/client.key
  sslrootcert: /path/ca.crt
  auth_method: aws
  aws_region: eu-west-1

table: staging.reports
mode: append
header_mode: single

provenance:
  column: year
  prefix: CentralReport
  suffix: .csv

csv:
  delimiter: ";"
  encoding: windows-1252
  na_values: ["", "-"]

default_format: v2
formats:
  v2:
    header_line: 2
    header_rows: 1
    data_line: 3

files:
  - CentralReport12-13.csv
  - path: CentralReport13-14.csv
    format: default

timeout: 10m
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "mydb", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "/path/client.crt", cfg.Connection.SSLCert)
	assert.Equal(t, "/path/client.key", cfg.Connection.SSLKey)
	assert.Equal(t, "/path/ca.crt", cfg.Connection.SSLRootCert)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)

	assert.Equal(t, "staging.reports", cfg.Table)
	assert.Equal(t, reportload.LoadModeAppend, cfg.Mode)
	assert.Equal(t, reportload.HeaderModeSingle, cfg.HeaderMode)
	assert.Equal(t, ProvenanceConfig{Column: "year", Prefix: "CentralReport", Suffix: ".csv"}, cfg.Provenance)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "windows-1252", cfg.CSV.Encoding)
	assert.Equal(t, []string{"", "-"}, cfg.CSV.NAValues)

	assert.Equal(t, "v2", cfg.DefaultFormat)
	assert.Equal(t, reportload.Layout{HeaderLine: 2, HeaderRows: 1, DataLine: 3}, cfg.Formats["v2"])
	assert.Equal(t, reportload.DefaultLayout, cfg.Formats[DefaultFormatName])

	assert.Equal(t, []FileEntry{
		{Path: "CentralReport12-13.csv"},
		{Path: "CentralReport13-14.csv", Format: "default"},
	}, cfg.Files)
	assert.Equal(t, "10m", cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MinimalYAMLAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "files:\n  - a.csv\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, reportload.DefaultTable, cfg.Table)
	assert.Equal(t, reportload.LoadModeReplace, cfg.Mode)
	assert.Equal(t, reportload.HeaderModeMerge, cfg.HeaderMode)
	assert.Empty(t, cfg.Provenance.Column, "merge mode adds no provenance column unless configured")
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, reportload.DefaultNAValues, cfg.CSV.NAValues)
	assert.Equal(t, DefaultFormatName, cfg.DefaultFormat)
	assert.Equal(t, []string{"a.csv"}, cfg.FilePaths())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_SingleModeDefaultsProvenanceColumn(t *testing.T) {
	dir := writeConfig(t, "header_mode: single\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, reportload.DefaultProvenanceColumn, cfg.Provenance.Column)
}

func TestLoad_ExplicitFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table: custom\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Table)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "formats: [this is: not valid")

	_, err := Load(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ProjectConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *ProjectConfig) {},
		},
		{
			name:    "unknown mode",
			mutate:  func(c *ProjectConfig) { c.Mode = "upsert" },
			wantErr: `mode "upsert"`,
		},
		{
			name:    "unknown header mode",
			mutate:  func(c *ProjectConfig) { c.HeaderMode = "stacked" },
			wantErr: `header_mode "stacked"`,
		},
		{
			name: "single mode without provenance column",
			mutate: func(c *ProjectConfig) {
				c.HeaderMode = reportload.HeaderModeSingle
				c.Provenance.Column = ""
			},
			wantErr: "provenance.column is required",
		},
		{
			name:    "multi-character delimiter",
			mutate:  func(c *ProjectConfig) { c.CSV.Delimiter = ";;" },
			wantErr: "csv.delimiter",
		},
		{
			name:    "undefined default format",
			mutate:  func(c *ProjectConfig) { c.DefaultFormat = "v9" },
			wantErr: `default_format "v9"`,
		},
		{
			name: "invalid layout",
			mutate: func(c *ProjectConfig) {
				c.Formats["broken"] = reportload.Layout{HeaderLine: 5, HeaderRows: 2, DataLine: 6}
			},
			wantErr: `format "broken"`,
		},
		{
			name:    "file without path",
			mutate:  func(c *ProjectConfig) { c.Files = []FileEntry{{Format: "default"}} },
			wantErr: "files[0]: path is required",
		},
		{
			name:    "file with unknown format",
			mutate:  func(c *ProjectConfig) { c.Files = []FileEntry{{Path: "a.csv", Format: "v9"}} },
			wantErr: `files[0]: unknown format "v9"`,
		},
		{
			name:    "bad timeout",
			mutate:  func(c *ProjectConfig) { c.Timeout = "soon" },
			wantErr: `timeout "soon"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.Is(err, reportload.ErrInvalidConfig))
		})
	}
}

func TestLayoutFor(t *testing.T) {
	cfg := Default()
	cfg.Formats["v2"] = reportload.Layout{HeaderLine: 0, HeaderRows: 1, DataLine: 1}

	layout, err := cfg.LayoutFor("")
	require.NoError(t, err)
	assert.Equal(t, reportload.DefaultLayout, layout)

	layout, err = cfg.LayoutFor("v2")
	require.NoError(t, err)
	assert.Equal(t, 1, layout.DataLine)

	_, err = cfg.LayoutFor("missing")
	assert.ErrorIs(t, err, reportload.ErrInvalidConfig)
}
