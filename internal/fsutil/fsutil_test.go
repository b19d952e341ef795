package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name       string
		wantStem   string
		wantSuffix string
	}{
		{name: "report.pdf", wantStem: "report", wantSuffix: ".pdf"},
		{name: "archive.tar.gz", wantStem: "archive.tar", wantSuffix: ".gz"},
		{name: ".bashrc", wantStem: ".bashrc", wantSuffix: ""},
		{name: "README", wantStem: "README", wantSuffix: ""},
		{name: "trailing.", wantStem: "trailing.", wantSuffix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, suffix := SplitName(tt.name)
			assert.Equal(t, tt.wantStem, stem)
			assert.Equal(t, tt.wantSuffix, suffix)
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", Extension("/tmp/Report.PDF"))
	assert.Equal(t, "", Extension("/home/me/.profile"))
	assert.Equal(t, "gz", Extension("backup.tar.gz"))
}

func TestAbs(t *testing.T) {
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got, err := Abs("proj/../proj/empty")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "proj", "empty"), got)

	got, err = Abs("/already/abs/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/already/abs"), got)
}

func TestUniqueFilePath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	now := time.Unix(1700000000, 0)
	require.NoError(t, fsys.MkdirAll("/dest", 0o755))

	got, err := UniqueFilePath(fsys, "/dest", "a.txt", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "a.txt"), got)

	require.NoError(t, afero.WriteFile(fsys, "/dest/a.txt", []byte("1"), 0o644))
	got, err = UniqueFilePath(fsys, "/dest", "a.txt", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "a_1700000000.txt"), got)

	require.NoError(t, afero.WriteFile(fsys, "/dest/a_1700000000.txt", []byte("2"), 0o644))
	got, err = UniqueFilePath(fsys, "/dest", "a.txt", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "a_1700000000_1.txt"), got)

	require.NoError(t, afero.WriteFile(fsys, "/dest/a_1700000000_1.txt", []byte("3"), 0o644))
	got, err = UniqueFilePath(fsys, "/dest", "a.txt", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/dest", "a_1700000000_2.txt"), got)
}

func TestUniqueDirPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/parent/foo", 0o755))

	got, err := UniqueDirPath(fsys, "/parent", "bar")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/parent", "bar"), got)

	got, err = UniqueDirPath(fsys, "/parent", "foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/parent", "foo_1"), got)

	require.NoError(t, fsys.MkdirAll("/parent/foo_1", 0o755))
	got, err = UniqueDirPath(fsys, "/parent", "foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/parent", "foo_2"), got)
}

func TestMove(t *testing.T) {
	root := t.TempDir()
	fsys := afero.NewOsFs()

	src := filepath.Join(root, "src.txt")
	dst := filepath.Join(root, "sub", "dst.txt")
	require.NoError(t, afero.WriteFile(fsys, src, []byte("payload"), 0o644))
	require.NoError(t, fsys.MkdirAll(filepath.Dir(dst), 0o755))

	require.NoError(t, Move(fsys, src, dst))
	assert.False(t, Exists(fsys, src))
	data, err := afero.ReadFile(fsys, dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	err = Move(fsys, filepath.Join(root, "missing.txt"), filepath.Join(root, "x.txt"))
	assert.Error(t, err)
}

func TestCopyTree(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/src/a/b", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/src/a/file.txt", []byte("x"), 0o644))

	require.NoError(t, CopyTree(fsys, "/src", "/copy"))

	assert.True(t, Exists(fsys, "/copy/a/b"))
	data, err := afero.ReadFile(fsys, "/copy/a/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
