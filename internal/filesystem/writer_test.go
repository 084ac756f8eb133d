package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/require"
)

func TestWriterCreatesAndReplacesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")
	writer := NewWriter()

	require.NoError(t, writer.WriteFile(target, []byte(`[{"name": "first"}]`)))
	stored, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, `[{"name": "first"}]`, string(stored))
	require.True(t, mimetype.Detect(stored).Is("application/json"))
	assertPublishedMode(t, target)

	require.NoError(t, writer.WriteFile(target, []byte(`[]`)))
	stored, err = os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(stored))

	assertOnlyEntries(t, dir, "activities.json")
}

func TestWriterMissingParentDirectory(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "public")
	target := filepath.Join(missing, "activities.json")

	err := NewWriter().WriteFile(target, []byte(`[]`))
	require.Error(t, err)

	var fsErr *FileSystemError
	require.True(t, errors.As(err, &fsErr))
	require.Equal(t, "stat", fsErr.Op)
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(missing)
	require.ErrorIs(t, statErr, fs.ErrNotExist, "parent directory must not be created")
}

func TestWriterParentIsFile(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "public")
	require.NoError(t, os.WriteFile(parent, []byte("not a dir"), 0o644))

	err := NewWriter().WriteFile(filepath.Join(parent, "activities.json"), []byte(`[]`))

	var fsErr *FileSystemError
	require.ErrorAs(t, err, &fsErr)
}

func TestWriterTargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")
	require.NoError(t, os.Mkdir(target, 0o755))

	err := NewWriter().WriteFile(target, []byte(`[]`))

	var fsErr *FileSystemError
	require.ErrorAs(t, err, &fsErr)
	require.ErrorIs(t, err, ErrIsDirectory)

	info, statErr := os.Stat(target)
	require.NoError(t, statErr)
	require.True(t, info.IsDir())
	assertOnlyEntries(t, dir, "activities.json")
}

func TestWriterKeepsPreviousContentOnFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")
	require.NoError(t, os.WriteFile(target, []byte(`["previous"]`), 0o644))

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := NewWriter().WriteFile(target, []byte(`["next"]`))

	var fsErr *FileSystemError
	require.ErrorAs(t, err, &fsErr)
	require.ErrorIs(t, err, fs.ErrPermission)

	stored, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	require.Equal(t, `["previous"]`, string(stored))
}

type changeFS interface {
	billy.Filesystem
	billy.Change
}

type failingRenameFS struct {
	changeFS
}

func (f failingRenameFS) Rename(from, to string) error {
	return fs.ErrPermission
}

func TestWriterRemovesTempFileWhenRenameFails(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")

	writer := NewWriterWithRoot(func(root string) billy.Filesystem {
		return failingRenameFS{changeFS: osfs.New(root, osfs.WithBoundOS()).(changeFS)}
	})

	err := writer.WriteFile(target, []byte(`[]`))

	var fsErr *FileSystemError
	require.ErrorAs(t, err, &fsErr)
	require.Equal(t, "rename", fsErr.Op)
	assertOnlyEntries(t, dir)
}

func TestWriterPublishesWorldReadableFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")
	require.NoError(t, os.WriteFile(target, []byte(`["previous"]`), 0o600))

	require.NoError(t, NewWriter().WriteFile(target, []byte(`[]`)))
	assertPublishedMode(t, target)
}

type noChangeFS struct {
	billy.Filesystem
}

func TestWriterRequiresChmodSupport(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "activities.json")

	writer := NewWriterWithRoot(func(root string) billy.Filesystem {
		return noChangeFS{Filesystem: osfs.New(root, osfs.WithBoundOS())}
	})

	err := writer.WriteFile(target, []byte(`[]`))

	var fsErr *FileSystemError
	require.ErrorAs(t, err, &fsErr)
	require.Equal(t, "chmod", fsErr.Op)
	require.ErrorIs(t, err, billy.ErrNotSupported)
	assertOnlyEntries(t, dir)
}

func TestWriterWritesThroughSymlink(t *testing.T) {
	siteDir := t.TempDir()
	releaseDir := t.TempDir()
	published := filepath.Join(releaseDir, "activities.json")
	require.NoError(t, os.WriteFile(published, []byte(`"old"`), 0o644))

	link := filepath.Join(siteDir, "activities.json")
	require.NoError(t, os.Symlink(published, link))

	require.NoError(t, NewWriter().WriteFile(link, []byte(`"new"`)))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&os.ModeSymlink, "link must stay a link")

	stored, err := os.ReadFile(published)
	require.NoError(t, err)
	require.Equal(t, `"new"`, string(stored))
	assertOnlyEntries(t, releaseDir, "activities.json")
}

func TestFileSystemErrorMessage(t *testing.T) {
	err := &FileSystemError{Op: "rename", Path: "/srv/activities.json", Err: fs.ErrPermission}
	require.Equal(t, "filesystem: rename /srv/activities.json: permission denied", err.Error())
	require.ErrorIs(t, err, fs.ErrPermission)
}

func assertPublishedMode(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, FilePerm, info.Mode().Perm())
}

func assertOnlyEntries(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	found := make([]string, 0, len(entries))
	for _, entry := range entries {
		found = append(found, entry.Name())
	}
	require.ElementsMatch(t, names, found)
}
