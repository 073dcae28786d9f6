package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportImageKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	testCases := []struct {
		filename string
		want     string
	}{
		{"field.jpg", "reports/1700000000123_field.jpg"},
		{"my photo (1).png", "reports/1700000000123_my_photo_1_.png"},
		{"../../etc/passwd", "reports/1700000000123_passwd"},
		{`C:\Users\me\slope.jpeg`, "reports/1700000000123_slope.jpeg"},
		{"", "reports/1700000000123_image"},
		{"..", "reports/1700000000123_image"},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			key := ReportImageKey(at, tc.filename)
			assert.Equal(t, tc.want, key)
			assert.NoError(t, validateKey(key))
		})
	}
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", "/abs", "a/../b", "a//b", `a\b`, "./a"} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidKey, "key %q", key)
	}
	assert.NoError(t, validateKey("reports/1_a.png"))
}

func TestLocalImageStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("not really a png")

	url, err := store.Put(ctx, "reports/1_a.png", "image/png", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "reports/1_a.png"))

	onDisk, err := os.ReadFile(filepath.Join(dir, "reports", "1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	got, err := store.Get(ctx, "reports/1_a.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, "reports/1_a.png"))
	_, err = store.Get(ctx, "reports/1_a.png")
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.NoError(t, store.Delete(ctx, "reports/1_a.png"), "deleting twice is harmless")
	assert.ErrorIs(t, store.Delete(ctx, "../escape.png"), ErrInvalidKey)
}

func TestLocalImageStore_Errors(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, "reports/missing.png")
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = store.Put(ctx, "../escape.png", "image/png", []byte{1})
	assert.ErrorIs(t, err, ErrInvalidKey)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Put(cancelled, "reports/x.png", "image/png", []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAzureImageStore_RejectsBadKey(t *testing.T) {
	_, err := NewAzureImageStore("account", "not base64!", "reports")
	assert.Error(t, err)
}
