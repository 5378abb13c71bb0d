// Package docquery answers questions about a loaded document through an
// adaptive LLM pipeline: classification, evidence selection, decomposition,
// parallel execution, synthesis and quality evaluation.
package docquery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"

	"github.com/docquery/docquery/core/decompose"
	"github.com/docquery/docquery/core/executor"
	"github.com/docquery/docquery/core/orchestrate"
	"github.com/docquery/docquery/core/pipeline"
	"github.com/docquery/docquery/core/progress"
	"github.com/docquery/docquery/core/quality"
	"github.com/docquery/docquery/core/retrieval"
	"github.com/docquery/docquery/core/synthesis"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/model"
	"github.com/docquery/docquery/session"
	"github.com/docquery/docquery/store"
)

// defaultEntityKeywords are counted per chunk at load time so counting
// queries can pull entity-bearing chunks without re-scanning the document.
var defaultEntityKeywords = []string{"israel", "substantiated", "unsubstantiated", "capa"}

// Store combines the read and load-time write sides of a chunk backend
type Store interface {
	store.ChunkSource
	store.ChunkWriter
}

// DocQuery is the entry point: it owns the chunk store, the session state and
// the orchestration pipeline behind Ask and AskStream.
type DocQuery struct {
	Store   Store
	Session *session.Session

	config       *model.PipelineConfig
	chunker      pipeline.ChunkFunc
	embedder     pipeline.EmbedFunc
	keywordOnly  bool
	orchestrator *orchestrate.Orchestrator
	log          *slog.Logger
}

// Status is the externally visible system state
type Status struct {
	Ready         bool                 `json:"system_ready"`
	ChunkCount    int                  `json:"chunks_count"`
	DocumentSize  int64                `json:"document_size"`
	DocumentTitle string               `json:"document_title,omitempty"`
	History       []model.HistoryEntry `json:"query_history,omitempty"`
}

// Option configures a DocQuery during construction
type Option func(*DocQuery)

// WithConfig overrides the default pipeline tunables
func WithConfig(config *model.PipelineConfig) Option {
	return func(d *DocQuery) { d.config = config }
}

// WithLogger overrides the default pretty-printing logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *DocQuery) { d.log = logger }
}

// WithStore replaces the default in-memory chunk store, e.g. with a
// Postgres-backed store so a loaded document survives restarts
func WithStore(s Store) Option {
	return func(d *DocQuery) { d.Store = s }
}

// WithChunker replaces the default adaptive content-type chunker
func WithChunker(chunker pipeline.ChunkFunc) Option {
	return func(d *DocQuery) { d.chunker = chunker }
}

// WithEmbedder replaces the default local hugot embedder
func WithEmbedder(embedder pipeline.EmbedFunc) Option {
	return func(d *DocQuery) { d.embedder = embedder }
}

// WithKeywordOnlyRetrieval skips the embedding model entirely; evidence
// selection falls back to keyword ranking
func WithKeywordOnlyRetrieval() Option {
	return func(d *DocQuery) { d.keywordOnly = true }
}

// New creates a DocQuery instance on the given LLM client.
// The default setup uses an in-memory chunk store, the adaptive chunker with
// the known entity keywords and a local embedding model. If the embedding
// model cannot be prepared the system degrades to keyword retrieval.
func New(client llm.Client, opts ...Option) (*DocQuery, error) {
	d := &DocQuery{
		Session: session.New(),
		config:  model.DefaultPipelineConfig(),
		chunker: pipeline.AdaptiveChunker(defaultEntityKeywords),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.log == nil {
		handlerOpts := helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelInfo,
			},
		}
		d.log = slog.New(helper.NewPrettyHandler(os.Stdout, handlerOpts))
	}

	if d.Store == nil {
		d.Store = store.NewMemoryStore()
	}

	if d.embedder == nil && !d.keywordOnly {
		embedder, err := pipeline.DefaultEmbedder()
		if err != nil {
			d.log.Warn("Embedding model unavailable, retrieval degrades to keyword ranking", slog.String("error", err.Error()))
		} else {
			d.embedder = embedder
		}
	}

	retrying := llm.NewRetryingClient(client, d.config.LLMRetries, d.log)

	selector := retrieval.NewSelector(d.Store, d.embedder, d.config, d.log)
	cot := executor.NewCoTExecutor(retrying, d.config, d.log)
	runner := executor.NewRunner(selector, cot, d.config, d.log)
	decomposer := decompose.NewDecomposer(d.config, d.log)
	synthesizer := synthesis.NewSynthesizer(retrying, d.config, d.log)
	evaluator := quality.NewEvaluator(retrying, d.log)
	d.orchestrator = orchestrate.NewOrchestrator(decomposer, runner, synthesizer, evaluator, d.config, d.log)

	return d, nil
}

// LoadDocument reads a document from disk, chunks and embeds it, and makes it
// the active document of the session
func (d *DocQuery) LoadDocument(ctx context.Context, filePath string) error {
	doc, err := model.NewDocumentFromFile(filePath, model.Metadata{})
	if err != nil {
		return helper.NewError("read document", err)
	}
	return d.LoadContent(ctx, doc)
}

// LoadContent chunks and embeds the document's content and makes it the
// active document of the session. The content itself is not stored.
func (d *DocQuery) LoadContent(ctx context.Context, doc *model.Document) error {
	if doc == nil || doc.Content == "" {
		return helper.NewError("load document", model.ErrNoDocument)
	}

	ingestion := pipeline.NewPipeline(d.chunker, d.embedder)
	chunks, err := ingestion.Process(doc.Content)
	if err != nil {
		return helper.NewError("process document", err)
	}

	content := doc.Content
	doc.Content = ""
	doc.Size = int64(len(content))
	if doc.Metadata == nil {
		doc.Metadata = model.Metadata{}
	}
	// The hash identifies the loaded content after Content is cleared
	sum := sha256.Sum256([]byte(content))
	doc.Metadata["content_hash"] = hex.EncodeToString(sum[:])

	if err := d.Store.ReplaceChunks(ctx, doc, chunks); err != nil {
		return helper.NewError("store chunks", err)
	}

	d.Session.SetDocument(doc, len(chunks))
	d.log.Info("Loaded document",
		slog.String("title", doc.Title),
		slog.Int("chunks", len(chunks)),
		slog.Int64("size", doc.Size))

	return nil
}

// Ask answers one question about the loaded document and blocks until the
// run finishes. Progress events are discarded; use AskStream to observe them.
func (d *DocQuery) Ask(ctx context.Context, question string) (*model.QueryResult, error) {
	query, err := d.newQuery(question)
	if err != nil {
		return nil, err
	}

	d.Session.History().Record(query.Text, model.QueryStatusRunning)

	stream := progress.NewStream()
	result, err := d.orchestrator.Run(ctx, query, stream)
	stream.Drain()
	if err != nil {
		d.Session.History().Record(query.Text, model.QueryStatusFailed)
		return nil, err
	}

	d.Session.History().Record(query.Text, model.QueryStatusCompleted)
	return result, nil
}

// AskStream starts answering one question and returns the progress stream.
// The stream ends with exactly one result or error event.
func (d *DocQuery) AskStream(ctx context.Context, question string) (*progress.Stream, error) {
	query, err := d.newQuery(question)
	if err != nil {
		return nil, err
	}

	d.Session.History().Record(query.Text, model.QueryStatusRunning)

	stream := progress.NewStream()
	go func() {
		if _, err := d.orchestrator.Run(ctx, query, stream); err != nil {
			d.Session.History().Record(query.Text, model.QueryStatusFailed)
			return
		}
		d.Session.History().Record(query.Text, model.QueryStatusCompleted)
	}()

	return stream, nil
}

// Status reports whether a document is loaded and how it was chunked
func (d *DocQuery) Status() Status {
	doc, chunkCount := d.Session.Document()

	status := Status{
		Ready:      d.Session.Ready(),
		ChunkCount: chunkCount,
		History:    d.Session.History().Entries(),
	}
	if doc != nil {
		status.DocumentSize = doc.Size
		status.DocumentTitle = doc.Title
	}
	return status
}

func (d *DocQuery) newQuery(question string) (*model.Query, error) {
	if !d.Session.Ready() {
		return nil, helper.NewError("ask", model.ErrNoDocument)
	}
	return model.NewQuery(question)
}
