// Package server exposes the query pipeline over HTTP: status, document
// loading, blocking queries and SSE progress streaming.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/docquery/docquery"
	"github.com/docquery/docquery/model"
)

// Response is the envelope of every JSON endpoint
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Example is one suggested query shown to new users
type Example struct {
	Text        string `json:"text"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Server wires a DocQuery instance into a gin router
type Server struct {
	dq     *docquery.DocQuery
	router *gin.Engine
	log    *slog.Logger
}

// New creates the HTTP server around a DocQuery instance
func New(dq *docquery.DocQuery, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		dq:  dq,
		log: logger,
	}

	router := gin.Default()
	api := router.Group("/api")
	{
		api.GET("/status", s.getStatus)
		api.POST("/load-document", s.loadDocument)
		api.POST("/query", s.processQuery)
		api.POST("/query-stream", s.processQueryStream)
		api.GET("/examples", s.getExamples)
	}
	s.router = router

	return s
}

// Router returns the underlying gin engine, e.g. for httptest
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the given address
func (s *Server) Run(addr string) error {
	s.log.Info("Starting server", slog.String("addr", addr))
	return s.router.Run(addr)
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

func (s *Server) getStatus(c *gin.Context) {
	respondOK(c, s.dq.Status())
}

type loadDocumentRequest struct {
	DocumentPath string `json:"document_path"`
}

func (s *Server) loadDocument(c *gin.Context) {
	var request loadDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.DocumentPath == "" {
		respondError(c, http.StatusBadRequest, "Document path is required")
		return
	}

	if _, err := os.Stat(request.DocumentPath); err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("Document not found: %s", request.DocumentPath))
		return
	}

	if err := s.dq.LoadDocument(c.Request.Context(), request.DocumentPath); err != nil {
		s.log.Error("Failed to load document", slog.String("path", request.DocumentPath), slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to load document")
		return
	}

	status := s.dq.Status()
	respondOK(c, gin.H{
		"document_path": request.DocumentPath,
		"chunks_count":  status.ChunkCount,
		"document_size": status.DocumentSize,
	})
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) processQuery(c *gin.Context) {
	question, ok := s.bindQuestion(c)
	if !ok {
		return
	}

	result, err := s.dq.Ask(c.Request.Context(), question)
	if err != nil {
		if errors.Is(err, model.ErrQueryTooLong) || errors.Is(err, model.ErrNoDocument) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("Query failed", slog.String("question", question), slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, result)
}

// processQueryStream answers a query while streaming progress as SSE.
// Each event is one JSON object on a single `data:` line; the stream ends
// with exactly one result or error event.
func (s *Server) processQueryStream(c *gin.Context) {
	question, ok := s.bindQuestion(c)
	if !ok {
		return
	}

	stream, err := s.dq.AskStream(c.Request.Context(), question)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := c.Writer.(http.Flusher)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-stream.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.log.Warn("Failed to marshal progress event", slog.String("error", err.Error()))
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			if canFlush {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) getExamples(c *gin.Context) {
	examples := []Example{
		{
			Text:        "How many complaints are from Israel?",
			Type:        "counting",
			Description: "Count specific items in the data",
		},
		{
			Text:        "Analyze the distribution of complaints by country",
			Type:        "analysis",
			Description: "Perform analytical review of data patterns",
		},
		{
			Text:        "Find all entries with QE- batch codes",
			Type:        "search",
			Description: "Search for specific patterns or entries",
		},
		{
			Text:        "What are the most common complaint types?",
			Type:        "analysis",
			Description: "Identify trends and common patterns",
		},
		{
			Text:        "List all substantiated complaints",
			Type:        "search",
			Description: "Find entries matching specific criteria",
		},
	}

	respondOK(c, examples)
}

// bindQuestion extracts the question from the request body and rejects
// requests that cannot produce a run: missing question, no loaded document.
func (s *Server) bindQuestion(c *gin.Context) (string, bool) {
	var request queryRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Question == "" {
		respondError(c, http.StatusBadRequest, "Question is required")
		return "", false
	}

	if !s.dq.Session.Ready() {
		respondError(c, http.StatusBadRequest, "System not initialized or no document loaded")
		return "", false
	}

	return request.Question, true
}
