package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t          *testing.T
	dir        string
	config     string
	quarantine string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		t:          t,
		dir:        dir,
		config:     filepath.Join(dir, "config.yaml"),
		quarantine: filepath.Join(dir, "quarantine"),
	}

	cfg := strings.Join([]string{
		"user: tester",
		"database:",
		"  path: " + filepath.Join(dir, "folderly.db"),
		"quarantine:",
		"  dir: " + env.quarantine,
		"logging:",
		"  level: error",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	return env
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", e.config}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "folderly %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) writeFile(rel string, size int) string {
	e.t.Helper()
	path := filepath.Join(e.dir, rel)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestClassifyCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("rules", "add", "Big images", "--dest", "BigImages", "--ext", "jpg,png", "--min-kb", "1")

	env.writeFile("inbox/photo.jpg", 2048)
	env.writeFile("inbox/report.pdf", 10)
	env.writeFile("inbox/notes.unknown", 10)
	source := filepath.Join(env.dir, "inbox")

	out := env.mustRun("classify", source)
	assert.Contains(t, out, "2 files moved")

	assert.FileExists(t, filepath.Join(source, "BigImages", "photo.jpg"))
	assert.FileExists(t, filepath.Join(source, "documentos_pdf", "report.pdf"))
	assert.FileExists(t, filepath.Join(source, "notes.unknown"))

	history := env.mustRun("history", "list")
	assert.Contains(t, history, "advanced, 2 files moved")
	assert.Contains(t, history, "Big images")
}

func TestClassifyCommand_BasicAndDryRun(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("inbox/song.mp3", 10)
	source := filepath.Join(env.dir, "inbox")
	dest := filepath.Join(env.dir, "sorted")

	plan := env.mustRun("classify", source, "--basic", "--dest", dest, "--dry-run")
	assert.Contains(t, plan, "1 files would move")
	assert.FileExists(t, filepath.Join(source, "song.mp3"))

	out := env.mustRun("classify", source, "--basic", "--dest", dest)
	assert.Contains(t, out, "1 file moved")
	assert.FileExists(t, filepath.Join(dest, "audios", "song.mp3"))
}

func TestClassifyCommand_InvalidSource(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("classify", filepath.Join(env.dir, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidSource)

	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestRulesCommands(t *testing.T) {
	env := newTestEnv(t)

	list := env.mustRun("rules", "list")
	assert.Contains(t, list, "Documentos antiguos", "example rules are seeded")

	env.mustRun("rules", "add", "Music", "--dest", "Music", "--ext", ".MP3")
	list = env.mustRun("rules", "list")
	assert.Contains(t, list, "Music")
	assert.Contains(t, list, "mp3")

	_, err := env.run("rules", "add", "music", "--dest", "Other")
	assert.ErrorIs(t, err, common.ErrInvalidRule, "names are unique regardless of case")

	_, err = env.run("rules", "add", "Bad", "--dest", "a/b")
	assert.ErrorIs(t, err, common.ErrInvalidRule)

	_, err = env.run("rules", "add", "Dated", "--dest", "D", "--from", "yesterday")
	assert.Error(t, err)

	exported := env.mustRun("rules", "export")
	assert.Contains(t, exported, "name: Music")

	file := filepath.Join(env.dir, "rules.yaml")
	env.mustRun("rules", "export", file)
	env.mustRun("rules", "remove", "Music")
	assert.NotContains(t, env.mustRun("rules", "list"), "Music")

	_, err = env.run("rules", "remove", "Music")
	assert.ErrorIs(t, err, common.ErrNotFound)

	env.mustRun("rules", "import", file)
	assert.Contains(t, env.mustRun("rules", "list"), "Music")

	out := env.mustRun("rules", "reset", "--yes")
	assert.Contains(t, out, "Restored 2 example rules")
	assert.NotContains(t, env.mustRun("rules", "list"), "Music")
}

func TestRulesReset_DeclinedWithoutInput(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("rules", "add", "Music", "--dest", "Music", "--ext", "mp3")

	out := env.mustRun("rules", "reset")
	assert.Contains(t, out, "Nothing changed")
	assert.Contains(t, env.mustRun("rules", "list"), "Music")
}

func TestEmptyCommands(t *testing.T) {
	env := newTestEnv(t)
	root := filepath.Join(env.dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "old"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "refs"), 0o755))
	env.writeFile("projects/keep/file.txt", 1)

	detected := env.mustRun("empty", "detect", root)
	assert.Contains(t, detected, filepath.Join(root, "old"))
	assert.NotContains(t, detected, ".git")

	out := env.mustRun("empty", "clean", root, "--yes")
	assert.Contains(t, out, "1 folder removed")
	assert.NoDirExists(t, filepath.Join(root, "old"))

	listed := env.mustRun("empty", "quarantine")
	assert.Contains(t, listed, "old")

	out = env.mustRun("history", "restore", "1")
	assert.Contains(t, out, "Restored to "+filepath.Join(root, "old"))
	assert.DirExists(t, filepath.Join(root, "old"))

	assert.Contains(t, env.mustRun("empty", "quarantine"), "empty")

	_, err := env.run("history", "restore", "1")
	assert.ErrorIs(t, err, common.ErrNotFound, "the quarantined copy is gone")

	_, err = env.run("history", "restore", "99")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEmptyRestoreByPath(t *testing.T) {
	env := newTestEnv(t)
	root := filepath.Join(env.dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tmp"), 0o755))

	env.mustRun("empty", "clean", root, "--yes")

	matches, err := filepath.Glob(filepath.Join(env.quarantine, "*", "tmp"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	out := env.mustRun("empty", "restore", matches[0])
	assert.Contains(t, out, filepath.Join(root, "tmp"))
	assert.DirExists(t, filepath.Join(root, "tmp"))

	_, err = env.run("empty", "restore", filepath.Join(env.dir, "projects"), "--to", env.dir)
	assert.ErrorIs(t, err, common.ErrNotQuarantined)
}

func TestRelativeArgumentsRestoreFromAnyDirectory(t *testing.T) {
	env := newTestEnv(t)
	base := testutil.Chdir(t, env.dir)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "projects", "old"), 0o755))
	env.writeFile("inbox/report.pdf", 1)

	env.mustRun("empty", "clean", "projects", "--yes")
	assert.NoDirExists(t, filepath.Join(base, "projects", "old"))
	env.mustRun("classify", "inbox", "--dest", "sorted")

	listed := env.mustRun("history", "list")
	assert.Contains(t, listed, filepath.Join(base, "projects", "old"))
	assert.Contains(t, listed, filepath.Join(base, "inbox"))

	testutil.Chdir(t, t.TempDir())
	out := env.mustRun("history", "restore", "1")
	assert.Contains(t, out, "Restored to "+filepath.Join(base, "projects", "old"))
	assert.DirExists(t, filepath.Join(base, "projects", "old"))
	assert.FileExists(t, filepath.Join(base, "sorted", "documentos_pdf", "report.pdf"))
}

func TestEmptyPurge(t *testing.T) {
	env := newTestEnv(t)
	root := filepath.Join(env.dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	env.mustRun("empty", "clean", root, "--yes")

	out := env.mustRun("empty", "purge")
	assert.Contains(t, out, "Erased 0", "fresh removals are kept for the retention period")

	out = env.mustRun("empty", "purge", "--all")
	assert.Contains(t, out, "Erased 1")
	assert.Contains(t, env.mustRun("empty", "quarantine"), "empty")
}

func TestEmptyClean_Permanent(t *testing.T) {
	env := newTestEnv(t)
	root := filepath.Join(env.dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gone"), 0o755))

	out := env.mustRun("empty", "clean", root, "--yes", "--permanent")
	assert.Contains(t, out, "1 folder removed")
	assert.NotContains(t, out, "Recoverable")
	assert.NoDirExists(t, filepath.Join(root, "gone"))
	assert.NoDirExists(t, env.quarantine)
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	assert.Contains(t, env.mustRun("version"), "folderly dev")
}

func TestUserFacing(t *testing.T) {
	assert.NoError(t, userFacing(nil))

	for _, sentinel := range []error{
		common.ErrNoSource,
		common.ErrInvalidSource,
		common.ErrAlreadyRunning,
		common.ErrEmptySelection,
		common.ErrNotQuarantined,
		common.ErrInvalidRule,
	} {
		err := userFacing(sentinel)
		var userErr *common.UserError
		assert.ErrorAs(t, err, &userErr)
		assert.ErrorIs(t, err, sentinel)
	}

	other := assert.AnError
	assert.Equal(t, other, userFacing(other))
}
