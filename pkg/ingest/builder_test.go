package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thirdwheel/companion-backend/pkg/index"
)

type fakeEmbedder struct {
	texts []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	return []float32{1, 0}, nil
}

type fakeStore struct {
	chunks []index.Chunk
}

func (f *fakeStore) Store(ctx context.Context, chunks []index.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func TestSplitChunks(t *testing.T) {
	text := strings.Repeat("word ", 100) // 500 bytes

	chunks := splitChunks(text, 120, 20)

	if len(chunks) < 4 {
		t.Fatalf("got %d chunks, want at least 4", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 120 {
			t.Errorf("chunk %d exceeds size: %d bytes", i, len(chunk))
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
	// Overlapping windows must not drop text: the last chunk has to reach
	// the end of the document.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), last) {
		t.Errorf("last chunk does not cover the document tail: %q", last)
	}
}

func TestSplitChunksSmallInput(t *testing.T) {
	if got := splitChunks("   ", 100, 10); got != nil {
		t.Errorf("blank input produced chunks: %v", got)
	}
	chunks := splitChunks("tiny", 100, 10)
	if len(chunks) != 1 || chunks[0] != "tiny" {
		t.Errorf("got %v, want a single chunk", chunks)
	}
}

func TestSplitChunksTerminates(t *testing.T) {
	// Overlap nearly as large as the window used to be able to stall the
	// cursor on a word boundary.
	chunks := splitChunks(strings.Repeat("a b ", 50), 10, 9)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "some facts about the couple")
	writeFile(t, dir, "journal.md", "# entry\nmore facts")
	writeFile(t, dir, "photo.png", "binary noise")

	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	builder := NewBuilder(embedder, store, 512, 20)

	if err := builder.Build(context.Background(), dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.chunks) != 2 {
		t.Fatalf("got %d chunks, want one per text document", len(store.chunks))
	}
	docs := map[string]bool{}
	for _, chunk := range store.chunks {
		docs[chunk.DocumentID] = true
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %s has no embedding", chunk.ID)
		}
	}
	if !docs["notes.txt"] || !docs["journal.md"] {
		t.Errorf("unexpected documents: %v", docs)
	}
	if docs["photo.png"] {
		t.Error("unsupported file was ingested")
	}
}

func TestBuildEmptyDirectory(t *testing.T) {
	builder := NewBuilder(&fakeEmbedder{}, &fakeStore{}, 512, 20)

	if err := builder.Build(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected an error for an empty documents directory")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
