package corpus

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/agentic-research/mdsql/internal/mdvtab"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTarget struct {
	docs []Document
	err  error
}

func (m *memTarget) Add(d Document) error {
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, d)
	return nil
}

func (m *memTarget) paths() []string {
	var out []string
	for _, d := range m.docs {
		out = append(out, d.Path)
	}
	sort.Strings(out)
	return out
}

func writeFiles(t *testing.T, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
}

func TestLoadSelectsMarkdown(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"/README.md":                  "# Readme",
		"/docs/guide.markdown":        "guide",
		"/docs/page.MDX":              "page",
		"/docs/notes.txt":             "not markdown",
		"/main.go":                    "package main",
		"/.git/HEAD.md":               "ignored",
		"/node_modules/pkg/readme.md": "ignored",
		"/vendor/lib/readme.md":       "ignored",
		"/docs/blob.md":               "a\x00b",
	})

	var target memTarget
	stats, err := Load(fs, "/", &target)
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "docs/guide.markdown", "docs/page.MDX"}, target.paths())
	assert.Equal(t, Stats{Loaded: 3, Skipped: 1}, stats)

	for _, d := range target.docs {
		if d.Path == "README.md" {
			assert.Equal(t, "# Readme", d.Content)
			assert.Equal(t, int64(8), d.Size)
		}
	}
}

func TestLoadSubdirectory(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"/docs/a.md":     "a",
		"/docs/sub/b.md": "b",
		"/other/c.md":    "c",
	})

	var target memTarget
	_, err := Load(fs, "/docs", &target)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "sub/b.md"}, target.paths())
}

func TestLoadTargetFailure(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{"/a.md": "a"})

	boom := errors.New("boom")
	_, err := Load(fs, "/", &memTarget{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLoadMissingRoot(t *testing.T) {
	_, err := Load(memfs.New(), "/missing", &memTarget{})
	assert.Error(t, err)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary(nil))
	assert.False(t, isBinary([]byte("# plain text\n")))
	assert.True(t, isBinary([]byte{0x7f, 'E', 'L', 'F', 0x00}))

	late := make([]byte, 9000)
	for i := range late {
		late[i] = 'a'
	}
	late[8500] = 0
	assert.False(t, isBinary(late))
}

func TestRelative(t *testing.T) {
	assert.Equal(t, "a.md", relative("/", "/a.md"))
	assert.Equal(t, "x/a.md", relative("/docs/", "/docs/x/a.md"))
	assert.Equal(t, "x/a.md", relative(`\docs`, `\docs\x\a.md`))
}

func TestWriterJoinsWithMdAst(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"/a.md":     "# A\n\ntext",
		"/b/b.md":   "- one\n- two",
		"/b/skip.c": "int x;",
	})

	dbPath := filepath.Join(t.TempDir(), "docs.db")
	w, err := NewWriter(dbPath)
	require.NoError(t, err)
	w.batchSize = 1 // exercise batch rollover

	stats, err := Load(fs, "/", w)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, 2, stats.Loaded)

	db, err := mdvtab.Open(context.Background(), dbPath, config.Default())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`
		SELECT d.path, a.node_type
		FROM documents d, md_ast(d.content) a
		WHERE a.node_type IN ('Heading', 'ListItem')
		ORDER BY d.path, a.rowid`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var got []string
	for rows.Next() {
		var path, kind string
		require.NoError(t, rows.Scan(&path, &kind))
		got = append(got, path+":"+kind)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a.md:Heading", "b/b.md:ListItem", "b/b.md:ListItem"}, got)
}

func TestWriterReplacesExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docs.db")

	for _, content := range []string{"old", "new"} {
		w, err := NewWriter(dbPath)
		require.NoError(t, err)
		require.NoError(t, w.Add(Document{Path: "a.md", Content: content, Size: int64(len(content))}))
		require.NoError(t, w.Close())
	}

	db, err := mdvtab.Open(context.Background(), dbPath, config.Default())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	var content string
	require.NoError(t, db.QueryRow("SELECT count(*), max(content) FROM documents").Scan(&n, &content))
	assert.Equal(t, 1, n)
	assert.Equal(t, "new", content)
}

func TestWriterReportsFailedCommit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docs.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE allowed (path TEXT PRIMARY KEY);
		INSERT INTO allowed VALUES ('ok.md');
		CREATE TABLE documents (
			path TEXT PRIMARY KEY REFERENCES allowed(path) DEFERRABLE INITIALLY DEFERRED,
			content TEXT NOT NULL,
			size INTEGER,
			mtime INTEGER
		)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	w, err := NewWriter("file:" + dbPath + "?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	w.batchSize = 1

	fs := memfs.New()
	writeFiles(t, fs, map[string]string{"/bad.md": "# no parent row"})
	_, err = Load(fs, "/", w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit batch of 1")

	// The writer keeps going with a fresh batch.
	require.NoError(t, w.Add(Document{Path: "ok.md", Content: "fine"}))
	require.NoError(t, w.Close())

	db, err = sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var paths []string
	rows, err := db.Query("SELECT path FROM documents ORDER BY path")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p string
		require.NoError(t, rows.Scan(&p))
		paths = append(paths, p)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"ok.md"}, paths)
}
