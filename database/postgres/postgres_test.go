package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_USER", "fg")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "fastgrapher")
	t.Setenv("DB_SSLMODE", "")

	require.Equal(t, "host=db port=5432 user=fg password=pw dbname=fastgrapher sslmode=disable", DSN())
}
