//go:build unit

package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending(t *testing.T) {
	t.Run("ファイル名順", func(t *testing.T) {
		fsys := fstest.MapFS{
			"010_late.sql":    {Data: []byte("SELECT 1")},
			"002_second.sql":  {Data: []byte("SELECT 1")},
			"001_first.sql":   {Data: []byte("SELECT 1")},
			"README.md":       {Data: []byte("notes")},
			"archive/000.sql": {Data: []byte("SELECT 1")},
		}

		names, err := pending(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_first.sql", "002_second.sql", "010_late.sql"}, names)
	})

	t.Run("埋め込みスキーマ", func(t *testing.T) {
		names, err := pending(files)
		require.NoError(t, err)
		require.NotEmpty(t, names)
		assert.Equal(t, "001_initial_schema.sql", names[0])
	})
}
