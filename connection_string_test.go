package nacho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseConnectionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		connStr     string
		wantConfig  *ConnectionConfig
		wantErr     bool
		errContains string
	}{
		{
			name:    "simple path",
			connStr: "./test.db",
			wantConfig: &ConnectionConfig{
				FilePath: "./test.db",
				LogLevel: "warn",
				MaxPages: 100,
			},
		},
		{
			name:    "set log level",
			connStr: "./test.db?log_level=DEBUG",
			wantConfig: &ConnectionConfig{
				FilePath: "./test.db",
				LogLevel: "debug",
				MaxPages: 100,
			},
		},
		{
			name:    "set max pages",
			connStr: "./test.db?max_pages=10",
			wantConfig: &ConnectionConfig{
				FilePath: "./test.db",
				LogLevel: "warn",
				MaxPages: 10,
			},
		},
		{
			name:    "all parameters",
			connStr: "/tmp/test.db?log_level=info&max_pages=2000",
			wantConfig: &ConnectionConfig{
				FilePath: "/tmp/test.db",
				LogLevel: "info",
				MaxPages: 2000,
			},
		},
		{
			name:    "unknown parameters are ignored",
			connStr: "./test.db?journal=false",
			wantConfig: &ConnectionConfig{
				FilePath: "./test.db",
				LogLevel: "warn",
				MaxPages: 100,
			},
		},
		{
			name:        "missing path",
			connStr:     "?log_level=info",
			wantErr:     true,
			errContains: "missing the database file path",
		},
		{
			name:        "invalid max_pages - zero",
			connStr:     "./test.db?max_pages=0",
			wantErr:     true,
			errContains: "must be positive",
		},
		{
			name:        "invalid max_pages - too large",
			connStr:     "./test.db?max_pages=1000000000",
			wantErr:     true,
			errContains: "must not exceed",
		},
		{
			name:        "invalid max_pages - not a number",
			connStr:     "./test.db?max_pages=abc",
			wantErr:     true,
			errContains: "must be a positive integer",
		},
		{
			name:        "invalid log level",
			connStr:     "./test.db?log_level=verbose",
			wantErr:     true,
			errContains: "invalid log_level parameter",
		},
		{
			name:        "invalid query",
			connStr:     "./test.db?max_pages=%zz",
			wantErr:     true,
			errContains: "invalid connection string query parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseConnectionString(tt.connStr)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, config)
		})
	}
}

func TestConnectionConfig_GetZapLevel(t *testing.T) {
	t.Parallel()

	config := DefaultConnectionConfig("./test.db")
	assert.Equal(t, zap.WarnLevel, config.GetZapLevel().Level())

	config.LogLevel = "debug"
	assert.Equal(t, zap.DebugLevel, config.GetZapLevel().Level())

	config.LogLevel = "nonsense"
	assert.Equal(t, zap.WarnLevel, config.GetZapLevel().Level())
}
