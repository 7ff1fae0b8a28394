package models

// Chunk is a unit of text produced by the chunker, paired with the
// metadata that later becomes the citation source.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// Metadata keys shared between chunker, orchestrator and vector store.
const (
	MetaSourceName = "source_name"
	MetaSourceID   = "source_id"
	MetaPage       = "page"
	MetaType       = "type"
)

// QAInput is a question/answer pair submitted as a knowledge source.
type QAInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ArticleInput is a title/content article submitted as a knowledge source.
type ArticleInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// QuerySource is one citation entry of a query answer. Page is nil for
// sources without page structure (articles, Q&A, plain text).
type QuerySource struct {
	Name      string `json:"name"`
	Page      *int   `json:"page,omitempty"`
	TextChunk string `json:"text_chunk"`
}

// QueryResponse is the answer contract of the query endpoint.
type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []QuerySource `json:"sources"`
	Emotion string        `json:"emotion"`
}

// GeneratedOption is one answer option of a generated quiz question.
type GeneratedOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// GeneratedQuestion is one multiple-choice question emitted by the quiz
// generator. Options keep the model's order.
type GeneratedQuestion struct {
	QuestionText string            `json:"question_text"`
	Options      []GeneratedOption `json:"options"`
}

// Request bodies of the AI service endpoints, mirrored by the gateway client.

type FileProcessingRequest struct {
	WorkspaceID string `json:"workspace_id"`
	SourceID    string `json:"source_id"`
	FilePath    string `json:"file_path"`
	Filename    string `json:"filename"`
}

type QAProcessingRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	SourceID    string  `json:"source_id"`
	QA          QAInput `json:"qa_in"`
}

type ArticleProcessingRequest struct {
	WorkspaceID string       `json:"workspace_id"`
	SourceID    string       `json:"source_id"`
	Article     ArticleInput `json:"article_in"`
}

type EmbeddingDeleteRequest struct {
	CollectionName string `json:"collection_name"`
	SourceID       string `json:"source_id"`
}

type QueryRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Question    string `json:"question"`
	SessionID   string `json:"session_id"`
}

type GenerateQuizRequest struct {
	TextContent string `json:"text_content"`
	Difficulty  string `json:"difficulty,omitempty"`
}

type GenerateQuizResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

const (
	StatusCompleted = "COMPLETED"
	StatusDeleted   = "DELETED"
)
