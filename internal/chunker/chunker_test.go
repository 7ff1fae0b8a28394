package chunker

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard-ai/internal/config"
	"onboard-ai/internal/models"
)

func newTestChunker() *Chunker {
	return New(&config.RAGConfig{ChunkSize: 100, ChunkOverlap: 20})
}

func TestChunkQA(t *testing.T) {
	chunks := newTestChunker().ChunkQA(models.QAInput{
		Question: "How do I request vacation?",
		Answer:   "Through the HR portal.",
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Question: How do I request vacation?\nAnswer: Through the HR portal.", chunks[0].Text)
	assert.Equal(t, "Q&A", chunks[0].Metadata[models.MetaSourceName])
	assert.Equal(t, "qa", chunks[0].Metadata[models.MetaType])
}

func TestChunkArticle(t *testing.T) {
	c := newTestChunker()

	t.Run("short article is a single chunk", func(t *testing.T) {
		chunks := c.ChunkArticle(models.ArticleInput{
			Title:   "Vacation Policy",
			Content: "Employees get 28 days of paid vacation per year.",
		})

		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Text, "28 days")
		assert.Equal(t, "Vacation Policy", chunks[0].Metadata[models.MetaSourceName])
	})

	t.Run("markdown headings split into sections", func(t *testing.T) {
		content := "# Benefits\nEmployees get 28 days of vacation.\n\n# Safety\nHard hats are mandatory on site."
		chunks := c.ChunkArticle(models.ArticleInput{Title: "Handbook", Content: content})

		require.Len(t, chunks, 2)
		assert.Contains(t, chunks[0].Text, "28 days")
		assert.Contains(t, chunks[1].Text, "Hard hats")
		for _, chunk := range chunks {
			assert.Equal(t, "Handbook", chunk.Metadata[models.MetaSourceName])
		}
	})

	t.Run("empty content still yields one chunk", func(t *testing.T) {
		chunks := c.ChunkArticle(models.ArticleInput{Title: "Stub", Content: ""})
		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Text, "Stub")
	})
}

func TestChunkFile(t *testing.T) {
	c := newTestChunker()
	dir := t.TempDir()

	t.Run("plain text file", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("The office opens at 8:00."), 0o644))

		chunks, err := c.ChunkFile(path, "notes.txt")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "notes.txt", chunks[0].Metadata[models.MetaSourceName])
	})

	t.Run("unknown extension treated as text", func(t *testing.T) {
		path := filepath.Join(dir, "notes.log")
		require.NoError(t, os.WriteFile(path, []byte("badge required after 20:00"), 0o644))

		chunks, err := c.ChunkFile(path, "notes.log")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
	})

	t.Run("markdown file sections", func(t *testing.T) {
		path := filepath.Join(dir, "guide.md")
		md := "# Onboarding\nWelcome aboard.\n\n## First week\nMeet your mentor."
		require.NoError(t, os.WriteFile(path, []byte(md), 0o644))

		chunks, err := c.ChunkFile(path, "guide.md")
		require.NoError(t, err)
		require.Len(t, chunks, 2)
	})

	t.Run("every chunk carries a source name", func(t *testing.T) {
		path := filepath.Join(dir, "long.txt")
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("Safety first. ", 100)), 0o644))

		chunks, err := c.ChunkFile(path, "long.txt")
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.Equal(t, "long.txt", chunk.Metadata[models.MetaSourceName])
		}
	})

	t.Run("pptx slides become paged chunks", func(t *testing.T) {
		path := filepath.Join(dir, "deck.pptx")
		writePPTX(t, path, []string{
			`<p:sld><a:t>Welcome aboard</a:t><a:t>Day one</a:t></p:sld>`,
			`<p:sld><a:t>Meet your mentor</a:t></p:sld>`,
		})

		chunks, err := c.ChunkFile(path, "deck.pptx")
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Contains(t, chunks[0].Text, "Welcome aboard")
		assert.Contains(t, chunks[0].Text, "Day one")
		assert.Equal(t, "1", chunks[0].Metadata[models.MetaPage])
		assert.Contains(t, chunks[1].Text, "Meet your mentor")
		assert.Equal(t, "2", chunks[1].Metadata[models.MetaPage])
		assert.Equal(t, "deck.pptx", chunks[0].Metadata[models.MetaSourceName])
	})

	t.Run("malformed pptx surfaces extraction error", func(t *testing.T) {
		path := filepath.Join(dir, "broken.pptx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

		_, err := c.ChunkFile(path, "broken.pptx")
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrChunkExtraction))
	})

	t.Run("missing file surfaces extraction error", func(t *testing.T) {
		_, err := c.ChunkFile(filepath.Join(dir, "absent.pdf"), "absent.pdf")
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrChunkExtraction))
	})

	t.Run("malformed pdf surfaces extraction error", func(t *testing.T) {
		path := filepath.Join(dir, "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

		_, err := c.ChunkFile(path, "broken.pdf")
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrChunkExtraction))
	})
}

func writePPTX(t *testing.T, path string, slides []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for i, slide := range slides {
		entry, err := w.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		require.NoError(t, err)
		_, err = entry.Write([]byte(slide))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestChunkContent(t *testing.T) {
	t.Run("short content is one chunk", func(t *testing.T) {
		chunks := chunkContent("hello world", 100, 20)
		assert.Equal(t, []string{"hello world"}, chunks)
	})

	t.Run("empty content is nil", func(t *testing.T) {
		assert.Nil(t, chunkContent("   ", 100, 20))
	})

	t.Run("long content splits within the size limit", func(t *testing.T) {
		content := strings.Repeat("word ", 200)
		chunks := chunkContent(content, 100, 20)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 100)
		}
	})

	t.Run("break-point adjustment drops no characters", func(t *testing.T) {
		content := strings.Repeat("a", 18) + "." + "BCDEFGHIJKLMNOPQRSTUVW"
		chunks := chunkContent(content, 20, 0)
		assert.Equal(t, content, strings.Join(chunks, ""))
	})

	t.Run("excessive overlap is clamped", func(t *testing.T) {
		content := strings.Repeat("word ", 100)
		chunks := chunkContent(content, 50, 60)
		assert.NotEmpty(t, chunks)
	})
}

func TestMarkdownSections(t *testing.T) {
	t.Run("prose without headings is one section", func(t *testing.T) {
		sections := markdownSections([]byte("just a paragraph\n\nand another"))
		require.Len(t, sections, 1)
		assert.Contains(t, sections[0].text(), "just a paragraph")
	})

	t.Run("level three headings stay inside their section", func(t *testing.T) {
		md := "# Top\nintro\n### Detail\nmore"
		sections := markdownSections([]byte(md))
		require.Len(t, sections, 1)
		assert.Contains(t, sections[0].text(), "more")
	})
}
