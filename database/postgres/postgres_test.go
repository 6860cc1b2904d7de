package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN_Defaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"} {
		t.Setenv(key, "")
	}

	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=edunabha sslmode=disable", DSN())
}

func TestDSN_FromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "school")
	t.Setenv("DB_SSLMODE", "require")

	assert.Equal(t, "host=db port=6543 user=app password=pw dbname=school sslmode=require", DSN())
}
