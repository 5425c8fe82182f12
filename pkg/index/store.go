package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/thirdwheel/companion-backend/pkg/domain"
)

// FileName is the store artifact inside the storage directory. The watcher
// worker keys invalidation off it.
const FileName = "vectors.db"

// Chunk is one embedded passage as persisted by the offline build.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Index      int
	Embedding  []float32
}

// Store is a SQLite-persisted vector index. Requests only read it; the only
// writer is the offline build step.
type Store struct {
	db *sql.DB
}

func Open(storageDir string) (*Store, error) {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(storageDir, FileName))
	if err != nil {
		return nil, fmt.Errorf("opening store database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		source_doc TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_document_id ON chunks(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Count returns the number of distinct documents in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT document_id) FROM chunks`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Search returns up to topK passages ranked by cosine similarity to the
// query embedding. A store smaller than topK yields fewer results, never an
// error.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]domain.Passage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT content, embedding, source_doc FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var content, sourceDoc string
		var embeddingJSON []byte
		if err := rows.Scan(&content, &embeddingJSON, &sourceDoc); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		var stored []float32
		if err := json.Unmarshal(embeddingJSON, &stored); err != nil {
			return nil, fmt.Errorf("decoding embedding: %w", err)
		}

		passages = append(passages, domain.Passage{
			Text:   content,
			Source: sourceDoc,
			Score:  cosineSimilarity(embedding, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

// Store persists chunks with their embeddings. Used only by the offline
// build, never on the request path.
func (s *Store) Store(ctx context.Context, chunks []Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, document_id, content, chunk_index, embedding, source_doc)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID,
			chunk.DocumentID,
			chunk.Content,
			chunk.Index,
			embeddingJSON,
			chunk.DocumentID,
		); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
