package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	require.NoError(t, DBPool.Migrate(context.Background()))
}

func TestInitFailures(t *testing.T) {
	cases := []struct {
		name        string
		cfg         func() Config
		expectedErr error
	}{
		{
			name:        "unparseable connection string",
			cfg:         func() Config { return Config{ConnString: "postgres://%zz"} },
			expectedErr: ErrConnectFailed,
		},
		{
			name:        "missing migrations",
			cfg:         func() Config { return Config{ConnString: connStr, MigrationsPath: t.TempDir() + "/none"} },
			expectedErr: ErrMigrateFailed,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Init(context.Background(), tt.cfg())
			assert.Nil(t, db)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
