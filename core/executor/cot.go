// Package executor runs sub-queries against the model over their evidence.
package executor

import (
	"context"
	"log/slog"

	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/model"
)

// NotFoundAnswer is returned when no evidence exists for a sub-query.
// An empty evidence set must never lead to a fabricated answer.
const NotFoundAnswer = "The requested information was not found in the document."

// CoTExecutor answers one sub-query with a chain-of-thought prompt over its evidence
type CoTExecutor struct {
	llm    llm.Client
	config *model.PipelineConfig
	logger *slog.Logger
}

// NewCoTExecutor creates an executor backed by the given model client
func NewCoTExecutor(client llm.Client, config *model.PipelineConfig, logger *slog.Logger) *CoTExecutor {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CoTExecutor{llm: client, config: config, logger: logger}
}

// Execute answers the sub-query over its evidence set. The call budget scales
// with the computed query complexity. An empty evidence set produces the
// not-found answer without a model call.
func (e *CoTExecutor) Execute(ctx context.Context, subQuery *model.SubQuery, evidence *model.EvidenceSet, complexity int) (*model.Answer, error) {
	if evidence == nil || evidence.Size() == 0 {
		e.logger.Warn("no evidence for sub-query, answering not found", "step", subQuery.Step)
		return &model.Answer{Text: NotFoundAnswer, ChunksAnalyzed: 0}, nil
	}

	prompt := BuildPrompt(subQuery.Type, subQuery.Text, evidence.Contents())

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout(complexity))
	defer cancel()

	text, err := e.llm.Complete(callCtx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	return &model.Answer{
		Text:           text,
		FullReasoning:  text,
		ChunksAnalyzed: evidence.Size(),
	}, nil
}
