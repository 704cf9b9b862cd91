package media_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/media"
)

func TestDisk_Save(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "uploads")
	d, err := media.NewDisk(root, "/media/", 1024)
	require.NoError(t, err)
	assert.DirExists(t, root)

	url, err := d.Save(context.Background(), "../../etc/My photo.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/media/"), url)
	assert.True(t, strings.HasSuffix(url, "-My_photo.png"), url)
	assert.NotContains(t, url, "..")

	data, err := os.ReadFile(filepath.Join(root, strings.TrimPrefix(url, "/media/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestDisk_SaveRejects(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d, err := media.NewDisk(root, "/media", 4)
	require.NoError(t, err)

	_, err = d.Save(context.Background(), "notes.txt", "text/plain", strings.NewReader("hi"))
	assert.ErrorIs(t, err, media.ErrUnsupportedType)

	_, err = d.Save(context.Background(), "big.jpg", "image/jpeg", bytes.NewReader(make([]byte, 5)))
	assert.ErrorIs(t, err, media.ErrTooLarge)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave nothing behind")
}

func TestDisk_EmptyNameFallsBack(t *testing.T) {
	t.Parallel()

	d, err := media.NewDisk(t.TempDir(), "/media", 0)
	require.NoError(t, err)

	url, err := d.Save(context.Background(), "...", "IMAGE/JPEG", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "-image.jpg"), url)
}
