package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFileChecksum(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("Stable for identical content", func(t *testing.T) {
		path1 := filepath.Join(tempDir, "a.csv")
		path2 := filepath.Join(tempDir, "b.csv")
		assert.NoError(t, os.WriteFile(path1, []byte("same content"), 0644))
		assert.NoError(t, os.WriteFile(path2, []byte("same content"), 0644))

		sum1, err := GetFileChecksum(path1)
		assert.NoError(t, err)
		sum2, err := GetFileChecksum(path2)
		assert.NoError(t, err)

		assert.NotEmpty(t, sum1)
		assert.Equal(t, sum1, sum2)
	})

	t.Run("Differs for different content", func(t *testing.T) {
		path1 := filepath.Join(tempDir, "c.csv")
		path2 := filepath.Join(tempDir, "d.csv")
		assert.NoError(t, os.WriteFile(path1, []byte("one"), 0644))
		assert.NoError(t, os.WriteFile(path2, []byte("two"), 0644))

		sum1, err := GetFileChecksum(path1)
		assert.NoError(t, err)
		sum2, err := GetFileChecksum(path2)
		assert.NoError(t, err)

		assert.NotEqual(t, sum1, sum2)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := GetFileChecksum(filepath.Join(tempDir, "missing.csv"))
		assert.Error(t, err)
	})
}
