package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestApplyOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		dsn           string
		opts          Options
		wantMaxConns  int32
		wantAppName   string
		wantStmtLimit string
	}{
		{
			name:         "defaults",
			dsn:          "postgres://app@localhost:5432/medportal",
			wantMaxConns: defaultMaxConns,
			wantAppName:  applicationName,
		},
		{
			name:          "overrides",
			dsn:           "postgres://app@localhost:5432/medportal",
			opts:          Options{MaxConns: 9, StatementTimeout: 2 * time.Second},
			wantMaxConns:  9,
			wantAppName:   applicationName,
			wantStmtLimit: "2000",
		},
		{
			name:         "application name from dsn kept",
			dsn:          "postgres://app@localhost:5432/medportal?application_name=migrations",
			wantMaxConns: defaultMaxConns,
			wantAppName:  "migrations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config, err := pgxpool.ParseConfig(tt.dsn)
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			applyOptions(config, tt.opts)

			if config.MaxConns != tt.wantMaxConns {
				t.Errorf("MaxConns = %d, want %d", config.MaxConns, tt.wantMaxConns)
			}
			params := config.ConnConfig.RuntimeParams
			if params["application_name"] != tt.wantAppName {
				t.Errorf("application_name = %q, want %q", params["application_name"], tt.wantAppName)
			}
			if params["statement_timeout"] != tt.wantStmtLimit {
				t.Errorf("statement_timeout = %q, want %q", params["statement_timeout"], tt.wantStmtLimit)
			}
		})
	}
}
