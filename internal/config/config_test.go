package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeScan, cfg.Sources.Mode)
	assert.Equal(t, "data", cfg.Sources.ScanDir)
	assert.Equal(t, "filtered_transactions.csv", cfg.Export.FileName)
	assert.Equal(t, DefaultPlaceholder, cfg.Sources.Placeholder)
	assert.Equal(t, "Berkhamsted", cfg.Sources.LocationAliases["berko"])
	assert.Equal(t, "Aylesbury", cfg.Sources.LocationAliases["ayles"])
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
sources:
  mode: scan
  scan_dir: /srv/exports
  location_aliases:
    tring: Tring
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "/srv/exports", cfg.Sources.ScanDir)
				assert.Equal(t, "Tring", cfg.Sources.LocationAliases["tring"])
				assert.Equal(t, "Berkhamsted", cfg.Sources.LocationAliases["berko"])
			},
		},
		{
			name: "env overrides file",
			file: `
server:
  port: 9090
logging:
  level: warn
`,
			env: map[string]string{
				"REVPULSE_SERVER_PORT":   "7070",
				"REVPULSE_LOGGING_LEVEL": "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "env aliases replace the alias map",
			env: map[string]string{
				"REVPULSE_SOURCES_LOCATION_ALIASES": "hemel:Hemel Hempstead",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, map[string]string{"hemel": "Hemel Hempstead"}, cfg.Sources.LocationAliases)
			},
		},
		{
			name: "static sources from file",
			file: `
sources:
  mode: static
  static:
    - location: Berkhamsted
      period: June
      text: |
        Date,Item,Quantity Sold,Amount Inc Tax
        01/06/2025,PT Session,1,50.00
    - location: Aylesbury
      period: June
      file: ayles.csv
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Sources.Static, 2)
				assert.Equal(t, "Berkhamsted", cfg.Sources.Static[0].Location)
				assert.Contains(t, cfg.Sources.Static[0].Text, "PT Session")
				assert.Equal(t, "ayles.csv", cfg.Sources.Static[1].File)
			},
		},
		{
			name: "static mode without sources",
			file: `
sources:
  mode: static
`,
			wantErr: "sources.static must list at least one source",
		},
		{
			name: "static source without period",
			file: `
sources:
  mode: static
  static:
    - location: Berkhamsted
      text: x
`,
			wantErr: "period",
		},
		{
			name:    "invalid mode",
			env:     map[string]string{"REVPULSE_SOURCES_MODE": "sheets"},
			wantErr: "mode",
		},
		{
			name:    "invalid port",
			env:     map[string]string{"REVPULSE_SERVER_PORT": "70000"},
			wantErr: "port",
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			} else {
				path = writeConfigFile(t, "{}")
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidate_FileLoggingNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.file_path")
}

func TestValidate_ScanModeNeedsDir(t *testing.T) {
	cfg := Default()
	cfg.Sources.ScanDir = "  "

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan_dir")
}

func TestExportPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "filtered_transactions.csv", cfg.ExportPath())

	cfg.Export.Dir = "out/"
	assert.Equal(t, "out/filtered_transactions.csv", cfg.ExportPath())
}
