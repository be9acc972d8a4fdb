package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FairForge/asyncfs/internal/fserrors"
)

func TestWriteThenRead_RoundTrip(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "t")

	// Act
	n, err := Write(path, []byte("Hello, World!"), false)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	got, err := Read(path, 0, -1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(got))
}

func TestRead_OffsetAndLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t")
	_, err := Write(path, []byte("Hello, World!"), false)
	require.NoError(t, err)

	got, err := Read(path, 7, 5)

	require.NoError(t, err)
	assert.Equal(t, "World", string(got))
}

func TestRead_ZeroByteFileYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	_, err := Write(path, []byte{}, false)
	require.NoError(t, err)

	got, err := Read(path, 0, -1)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_MissingFileIsNotFound(t *testing.T) {
	_, err := Read("/nonexistent/path/xyz", 0, -1)

	require.Error(t, err)
	var nf *fserrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestWrite_CreateDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "f.txt")

	_, err := Write(path, []byte("x"), true)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestWriteTwice_SecondWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t")

	_, err := Write(path, []byte("d1"), false)
	require.NoError(t, err)
	_, err = Write(path, []byte("d2"), false)
	require.NoError(t, err)

	got, err := Read(path, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, "d2", string(got))
}

func TestAppend_AddsToExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")

	_, err := Write(path, []byte("a"), false)
	require.NoError(t, err)
	n, err := Append(path, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := Read(path, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(got))
}

func TestExists_EmptyPathIsFalseNotError(t *testing.T) {
	ok, err := Exists("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExists_MissingAndPresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Write(path, []byte("x"), false)
	require.NoError(t, err)

	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteThenExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t")
	_, err := Write(path, []byte("x"), false)
	require.NoError(t, err)

	require.NoError(t, Delete(path))

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCopyThenRead(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	_, err := Write(src, []byte("payload"), false)
	require.NoError(t, err)

	require.NoError(t, Copy(src, dst))

	got, err := Read(dst, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestRename_SourceGone(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	_, err := Write(src, []byte("payload"), false)
	require.NoError(t, err)

	require.NoError(t, Rename(src, dst))

	exists, err := Exists(src)
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := Read(dst, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestMkdir_ExistingPathAlreadyExists(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, Mkdir(sub, 0o755, false))

	err := Mkdir(sub, 0o755, false)

	require.Error(t, err)
	var ae *fserrors.AlreadyExistsError
	assert.ErrorAs(t, err, &ae)
}

func TestRmdir_MissingPathIsNotFound(t *testing.T) {
	err := Rmdir(filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	var nf *fserrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRmdir_RemovesNonEmptyDirectoryRecursively(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, Mkdir(sub, 0o755, false))
	_, err := Write(filepath.Join(sub, "f"), []byte("x"), false)
	require.NoError(t, err)

	require.NoError(t, Rmdir(sub))

	exists, err := Exists(sub)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStat_ReportsSizeAndIsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t")
	_, err := Write(path, []byte("12345"), false)
	require.NoError(t, err)

	s, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Size)
	assert.False(t, s.IsDir)

	ds, err := Stat(dir)
	require.NoError(t, err)
	assert.True(t, ds.IsDir)
}
