// Package ingest is the offline index build step: it loads the document
// collection, chunks it, embeds every chunk and persists the result into the
// context store the request path reads.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/thirdwheel/companion-backend/pkg/index"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Store interface {
	Store(ctx context.Context, chunks []index.Chunk) error
}

type Builder struct {
	embedder     Embedder
	store        Store
	chunkSize    int
	chunkOverlap int
}

func NewBuilder(embedder Embedder, store Store, chunkSize, chunkOverlap int) *Builder {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 20
	}
	return &Builder{
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Build ingests every .txt and .md file under documentsDir. An empty
// collection is an error: the store must never end up unqueryable.
func (b *Builder) Build(ctx context.Context, documentsDir string) error {
	entries, err := os.ReadDir(documentsDir)
	if err != nil {
		return fmt.Errorf("reading documents directory: %w", err)
	}

	ingested := 0
	for _, entry := range entries {
		if entry.IsDir() || !supportedExtension(entry.Name()) {
			continue
		}
		if err := b.ingestFile(ctx, filepath.Join(documentsDir, entry.Name())); err != nil {
			return err
		}
		ingested++
	}

	if ingested == 0 {
		return fmt.Errorf("no documents found in %s", documentsDir)
	}
	slog.Info("index build complete", "documents", ingested)
	return nil
}

func (b *Builder) ingestFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	pieces := splitChunks(string(content), b.chunkSize, b.chunkOverlap)
	if len(pieces) == 0 {
		slog.Warn("skipping empty document", "document", name)
		return nil
	}

	chunks := make([]index.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := b.embedder.Embed(ctx, piece)
		if err != nil {
			return fmt.Errorf("embedding chunk %d of %s: %w", i, name, err)
		}
		chunks = append(chunks, index.Chunk{
			ID:         uuid.NewString(),
			DocumentID: name,
			Content:    piece,
			Index:      i,
			Embedding:  embedding,
		})
	}

	if err := b.store.Store(ctx, chunks); err != nil {
		return fmt.Errorf("storing chunks of %s: %w", name, err)
	}
	slog.Info("ingested document", "document", name, "chunks", len(chunks))
	return nil
}

func supportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// splitChunks cuts text into overlapping chunks of at most size bytes,
// preferring word boundaries.
func splitChunks(text string, size, overlap int) []string {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := start + size
		if end > len(content) {
			end = len(content)
		}

		if end < len(content) {
			if lastSpace := strings.LastIndex(content[start:end], " "); lastSpace > 0 {
				end = start + lastSpace
			}
		}

		if chunk := strings.TrimSpace(content[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(content) {
			break
		}
		// Overlap must still advance the window, or a short chunk near a
		// word boundary would loop forever.
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
