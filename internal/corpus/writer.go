package corpus

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Document is one Markdown file as stored in the documents table.
type Document struct {
	Path    string
	Content string
	Size    int64
	ModTime time.Time
}

// Target receives loaded documents.
type Target interface {
	Add(d Document) error
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	size INTEGER,
	mtime INTEGER
);
`

// Writer stores documents in SQLite in batched transactions.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	batchSize int
	count     int
	mu        sync.Mutex
}

// NewWriter opens (or creates) the database at dbPath and prepares the
// documents table.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Bulk load tuning
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{db: db, batchSize: 1000}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmt, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO documents (path, content, size, mtime)
		VALUES (?, ?, ?, ?)
	`)
	return err
}

func (w *Writer) commitTx() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
	}
	return w.tx.Commit()
}

// Add writes d, committing every batchSize documents.
func (w *Writer) Add(d Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stmt.Exec(d.Path, d.Content, d.Size, d.ModTime.UnixNano()); err != nil {
		return fmt.Errorf("insert %s: %w", d.Path, err)
	}

	w.count++
	if w.count >= w.batchSize {
		lost := w.count
		w.count = 0
		if err := w.commitTx(); err != nil {
			// The failed batch is rolled back; later documents go to a new one.
			if berr := w.beginTx(); berr != nil {
				return errors.Join(fmt.Errorf("commit batch of %d: %w", lost, err), fmt.Errorf("begin batch: %w", berr))
			}
			return fmt.Errorf("commit batch of %d: %w", lost, err)
		}
		if err := w.beginTx(); err != nil {
			return fmt.Errorf("begin batch: %w", err)
		}
	}
	return nil
}

// Close commits pending documents and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return fmt.Errorf("commit batch of %d: %w", w.count, err)
	}
	return w.db.Close()
}

var _ Target = (*Writer)(nil)
