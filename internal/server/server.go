// Package server exposes the RAG core over HTTP for the backend
// collaborator.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"onboard-ai/internal/chunker"
	"onboard-ai/internal/models"
	"onboard-ai/internal/quiz"
	"onboard-ai/internal/rag"
)

const shutdownTimeout = 10 * time.Second

// Server wires the echo router to the pipeline components.
type Server struct {
	echo    *echo.Echo
	chunker *chunker.Chunker
	rag     *rag.Orchestrator
	quiz    *quiz.Generator
}

func New(c *chunker.Chunker, orchestrator *rag.Orchestrator, quizGen *quiz.Generator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())

	s := &Server{
		echo:    e,
		chunker: c,
		rag:     orchestrator,
		quiz:    quizGen,
	}

	g := e.Group("/api/v1/ai")
	g.POST("/process-file", s.processFile)
	g.POST("/process-qa", s.processQA)
	g.POST("/process-article", s.processArticle)
	g.POST("/delete-embeddings", s.deleteEmbeddings)
	g.POST("/query", s.query)
	g.POST("/generate-quiz", s.generateQuiz)
	e.GET("/health", s.health)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) processFile(c echo.Context) error {
	var req models.FileProcessingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	log.Info().Str("filename", req.Filename).Str("workspace", req.WorkspaceID).Msg("Processing file")

	chunks, err := s.chunker.ChunkFile(req.FilePath, req.Filename)
	if err != nil {
		return ingestError(err)
	}
	if err := s.rag.Ingest(c.Request().Context(), req.WorkspaceID, req.SourceID, chunks); err != nil {
		return ingestError(err)
	}
	return c.JSON(http.StatusOK, models.StatusResponse{Status: models.StatusCompleted})
}

func (s *Server) processQA(c echo.Context) error {
	var req models.QAProcessingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	chunks := s.chunker.ChunkQA(req.QA)
	if err := s.rag.Ingest(c.Request().Context(), req.WorkspaceID, req.SourceID, chunks); err != nil {
		return ingestError(err)
	}
	return c.JSON(http.StatusOK, models.StatusResponse{Status: models.StatusCompleted})
}

func (s *Server) processArticle(c echo.Context) error {
	var req models.ArticleProcessingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	chunks := s.chunker.ChunkArticle(req.Article)
	if err := s.rag.Ingest(c.Request().Context(), req.WorkspaceID, req.SourceID, chunks); err != nil {
		return ingestError(err)
	}
	return c.JSON(http.StatusOK, models.StatusResponse{Status: models.StatusCompleted})
}

func (s *Server) deleteEmbeddings(c echo.Context) error {
	var req models.EmbeddingDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.rag.DeleteEmbeddings(c.Request().Context(), req.CollectionName, req.SourceID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, models.StatusResponse{Status: models.StatusDeleted})
}

func (s *Server) query(c echo.Context) error {
	var req models.QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := s.rag.Query(c.Request().Context(), req.WorkspaceID, req.Question, req.SessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) generateQuiz(c echo.Context) error {
	var req models.GenerateQuizRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	questions := s.quiz.GenerateQuiz(c.Request().Context(), req.TextContent, req.Difficulty)
	if questions == nil {
		questions = []models.GeneratedQuestion{}
	}
	return c.JSON(http.StatusOK, models.GenerateQuizResponse{Questions: questions})
}

// ingestError maps pipeline failures to HTTP statuses: unreadable
// sources are the caller's fault, the rest are upstream failures.
func ingestError(err error) error {
	if errors.Is(err, models.ErrChunkExtraction) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
