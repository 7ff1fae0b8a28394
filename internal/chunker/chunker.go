package chunker

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"onboard-ai/internal/config"
	"onboard-ai/internal/models"
)

// Chunker splits raw knowledge sources into normalized text chunks with
// citation metadata. It only reads the given input, nothing else.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func New(cfg *config.RAGConfig) *Chunker {
	return &Chunker{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
}

// ChunkFile dispatches on the declared filename extension. Unknown
// extensions are treated as plain text. Unreadable or malformed files
// surface models.ErrChunkExtraction; the caller aborts ingestion.
func (c *Chunker) ChunkFile(filePath, filename string) ([]models.Chunk, error) {
	var (
		chunks []models.Chunk
		err    error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		chunks, err = c.chunkPDF(filePath, filename)
	case ".docx":
		chunks, err = c.chunkDOCX(filePath, filename)
	case ".pptx":
		chunks, err = c.chunkPPTX(filePath, filename)
	case ".xlsx":
		chunks, err = c.chunkXLSX(filePath, filename)
	case ".ods":
		chunks, err = c.chunkODS(filePath, filename)
	case ".md":
		chunks, err = c.chunkMarkdownFile(filePath, filename)
	default:
		chunks, err = c.chunkText(filePath, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrChunkExtraction, filename, err)
	}
	return chunks, nil
}

// ChunkQA produces exactly one chunk concatenating question and answer.
func (c *Chunker) ChunkQA(qa models.QAInput) []models.Chunk {
	return []models.Chunk{{
		Text: fmt.Sprintf("Question: %s\nAnswer: %s", qa.Question, qa.Answer),
		Metadata: map[string]string{
			models.MetaSourceName: "Q&A",
			models.MetaType:       "qa",
		},
	}}
}

// ChunkArticle splits a title+content article. Markdown articles are
// sectioned by heading first; long sections fall back to character
// chunking. The result always has at least one chunk.
func (c *Chunker) ChunkArticle(article models.ArticleInput) []models.Chunk {
	var chunks []models.Chunk
	for _, section := range markdownSections([]byte(article.Content)) {
		text := section.text()
		if text == "" {
			continue
		}
		for _, piece := range chunkContent(text, c.chunkSize, c.chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text: piece,
				Metadata: map[string]string{
					models.MetaSourceName: article.Title,
					models.MetaType:       "article",
				},
			})
		}
	}
	if len(chunks) == 0 {
		chunks = append(chunks, models.Chunk{
			Text: fmt.Sprintf("%s\n%s", article.Title, article.Content),
			Metadata: map[string]string{
				models.MetaSourceName: article.Title,
				models.MetaType:       "article",
			},
		})
	}
	return chunks
}

func (c *Chunker) chunkPDF(filePath, filename string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		for _, piece := range chunkContent(pageText, c.chunkSize, c.chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text: piece,
				Metadata: map[string]string{
					models.MetaSourceName: filename,
					models.MetaPage:       strconv.Itoa(i),
				},
			})
		}
	}
	return chunks, nil
}

func (c *Chunker) chunkDOCX(filePath, filename string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var text strings.Builder
	for _, paragraph := range strings.Split(content, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		text.WriteString(paragraph)
		text.WriteString("\n")
	}

	var chunks []models.Chunk
	for _, piece := range chunkContent(text.String(), c.chunkSize, c.chunkOverlap) {
		chunks = append(chunks, models.Chunk{
			Text:     piece,
			Metadata: map[string]string{models.MetaSourceName: filename},
		})
	}
	return chunks, nil
}

func (c *Chunker) chunkPPTX(filePath, filename string) ([]models.Chunk, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var chunks []models.Chunk
	slideNum := 0
	for _, file := range r.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		slideNum++
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		for _, piece := range chunkContent(drawingMLText(string(data)), c.chunkSize, c.chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text: piece,
				Metadata: map[string]string{
					models.MetaSourceName: filename,
					models.MetaPage:       strconv.Itoa(slideNum),
				},
			})
		}
	}
	return chunks, nil
}

// drawingMLText pulls the visible text runs (<a:t> elements) out of a
// slide's DrawingML payload.
func drawingMLText(xmlContent string) string {
	var text strings.Builder
	for i, part := range strings.Split(xmlContent, "<a:t>") {
		if i == 0 {
			continue
		}
		if end := strings.Index(part, "</a:t>"); end >= 0 {
			text.WriteString(part[:end] + " ")
		}
	}
	return text.String()
}

func (c *Chunker) chunkXLSX(filePath, filename string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		for _, piece := range chunkContent(text.String(), c.chunkSize, c.chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text: piece,
				Metadata: map[string]string{
					models.MetaSourceName: filename,
					models.MetaPage:       strconv.Itoa(sheetNum + 1),
				},
			})
		}
	}
	return chunks, nil
}

func (c *Chunker) chunkODS(filePath, filename string) ([]models.Chunk, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		for _, piece := range chunkContent(text.String(), c.chunkSize, c.chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text: piece,
				Metadata: map[string]string{
					models.MetaSourceName: filename,
					models.MetaPage:       strconv.Itoa(sheetNum + 1),
				},
			})
		}
	}
	return chunks, nil
}

func (c *Chunker) chunkMarkdownFile(filePath, filename string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, section := range markdownSections(data) {
		text := section.text()
		if text == "" {
			continue
		}
		for _, piece := range chunkContent(text, c.chunkSize, c.chunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text:     piece,
				Metadata: map[string]string{models.MetaSourceName: filename},
			})
		}
	}
	return chunks, nil
}

func (c *Chunker) chunkText(filePath, filename string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, piece := range chunkContent(string(data), c.chunkSize, c.chunkOverlap) {
		chunks = append(chunks, models.Chunk{
			Text:     piece,
			Metadata: map[string]string{models.MetaSourceName: filename},
		})
	}
	return chunks, nil
}

// chunkContent splits content into chunks of at most maxChars characters
// with overlapChars of overlap, preferring to break at whitespace or a
// sentence end within the last tenth of the chunk.
func chunkContent(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return nil
	}
	if len(content) <= maxChars {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := min(start+maxChars, len(content))
		if end < len(content) {
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
		}
		if chunk := strings.TrimSpace(content[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(content) {
			break
		}
		// Advance relative to the adjusted end so a break-point never
		// skips the characters between end and start+maxChars.
		next := end - overlapChars
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
