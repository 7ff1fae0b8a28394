// Package gateway is the thin HTTP client the main backend uses to call
// the AI service. It owns no pipeline logic.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"onboard-ai/internal/models"
)

const apiPrefix = "/api/v1/ai"

// Generation models can be slow on constrained hardware; a timeout here
// is a transient failure, not "no answer exists".
const requestTimeout = 300 * time.Second

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + apiPrefix + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("AI service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("AI service error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) ProcessFile(ctx context.Context, workspaceID, sourceID, filePath, filename string) error {
	return c.post(ctx, "/process-file", models.FileProcessingRequest{
		WorkspaceID: workspaceID,
		SourceID:    sourceID,
		FilePath:    filePath,
		Filename:    filename,
	}, nil)
}

func (c *Client) ProcessQA(ctx context.Context, workspaceID, sourceID string, qa models.QAInput) error {
	return c.post(ctx, "/process-qa", models.QAProcessingRequest{
		WorkspaceID: workspaceID,
		SourceID:    sourceID,
		QA:          qa,
	}, nil)
}

func (c *Client) ProcessArticle(ctx context.Context, workspaceID, sourceID string, article models.ArticleInput) error {
	return c.post(ctx, "/process-article", models.ArticleProcessingRequest{
		WorkspaceID: workspaceID,
		SourceID:    sourceID,
		Article:     article,
	}, nil)
}

func (c *Client) DeleteEmbeddings(ctx context.Context, collectionName, sourceID string) error {
	return c.post(ctx, "/delete-embeddings", models.EmbeddingDeleteRequest{
		CollectionName: collectionName,
		SourceID:       sourceID,
	}, nil)
}

func (c *Client) Query(ctx context.Context, workspaceID, question, sessionID string) (*models.QueryResponse, error) {
	var resp models.QueryResponse
	err := c.post(ctx, "/query", models.QueryRequest{
		WorkspaceID: workspaceID,
		Question:    question,
		SessionID:   sessionID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Emotion == "" {
		resp.Emotion = "neutral"
	}
	if resp.Sources == nil {
		resp.Sources = []models.QuerySource{}
	}
	return &resp, nil
}

// GenerateQuiz returns the generated questions. A failed call degrades
// to an empty list, the same signal the quiz generator itself uses.
func (c *Client) GenerateQuiz(ctx context.Context, textContent, difficulty string) []models.GeneratedQuestion {
	var resp models.GenerateQuizResponse
	err := c.post(ctx, "/generate-quiz", models.GenerateQuizRequest{
		TextContent: textContent,
		Difficulty:  difficulty,
	}, &resp)
	if err != nil {
		log.Error().Err(err).Msg("Quiz generation request failed")
		return []models.GeneratedQuestion{}
	}
	return resp.Questions
}
