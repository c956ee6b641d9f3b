package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_SortedAndEmbedded(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_initial_schema.sql", names[0])
	assert.IsIncreasing(t, names)

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(body)), name)
	}
}

func TestInitialSchema_DeclaresTables(t *testing.T) {
	body, err := migrationFiles.ReadFile("001_initial_schema.sql")
	require.NoError(t, err)
	schema := string(body)

	for _, table := range []string{"products", "holds", "orders", "jobs"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, schema, "UNIQUE REFERENCES holds (id)")
}
