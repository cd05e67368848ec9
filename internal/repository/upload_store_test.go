package repository

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart.FileHeader by parsing an encoded form.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"][0]
}

func TestUploadStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewUploadStore(dir, 1024)

	saved, err := store.Save(fileHeader(t, "notes.TXT", []byte("hello world")))
	require.NoError(t, err)

	assert.Equal(t, "notes.TXT", saved.OriginalFilename)
	assert.True(t, strings.HasSuffix(saved.StoredFilename, ".txt"))
	assert.NotEqual(t, "notes.TXT", saved.StoredFilename)
	assert.Equal(t, int64(11), saved.Size)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", saved.SHA256)
	assert.True(t, strings.HasPrefix(saved.ContentType, "text/plain"))

	data, err := os.ReadFile(saved.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	require.NoError(t, store.Remove(*saved))
	_, err = os.Stat(saved.StoredPath)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, store.Remove(*saved))
}

func TestUploadStore_StripsDirectories(t *testing.T) {
	store := NewUploadStore(t.TempDir(), 1024)

	saved, err := store.Save(fileHeader(t, `..\..\evil.sh`, []byte("#!/bin/sh")))
	require.NoError(t, err)
	assert.Equal(t, "evil.sh", saved.OriginalFilename)
}

func TestUploadStore_TooLarge(t *testing.T) {
	dir := t.TempDir()
	store := NewUploadStore(dir, 4)

	_, err := store.Save(fileHeader(t, "big.bin", []byte("12345")))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
