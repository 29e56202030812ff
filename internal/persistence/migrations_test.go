package persistence

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsIncludeDocumentsTable(t *testing.T) {
	source := MigrationSource("")
	files, err := migrationFiles(source)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_documents.sql", files[0])
}

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	source := fstest.MapFS{
		"002_b.sql":    {Data: []byte("select 2")},
		"001_a.sql":    {Data: []byte("select 1")},
		"README.md":    {Data: []byte("notes")},
		"nested/x.sql": {Data: []byte("select 3")},
	}
	files, err := migrationFiles(source)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}
