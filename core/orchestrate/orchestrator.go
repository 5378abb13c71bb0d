// Package orchestrate ties the pipeline stages into one run per query.
package orchestrate

import (
	"context"
	"log/slog"

	"github.com/docquery/docquery/core/classify"
	"github.com/docquery/docquery/core/decompose"
	"github.com/docquery/docquery/core/executor"
	"github.com/docquery/docquery/core/progress"
	"github.com/docquery/docquery/core/quality"
	"github.com/docquery/docquery/core/synthesis"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
)

// Orchestrator runs one query end to end: classify, decompose, execute,
// synthesize, evaluate. Each run owns all of its derived state; the only
// shared input is the read-only chunk store behind the runner.
type Orchestrator struct {
	decomposer  *decompose.Decomposer
	runner      *executor.Runner
	synthesizer *synthesis.Synthesizer
	evaluator   *quality.Evaluator
	config      *model.PipelineConfig
	logger      *slog.Logger
}

// NewOrchestrator wires the pipeline stages together
func NewOrchestrator(decomposer *decompose.Decomposer, runner *executor.Runner, synthesizer *synthesis.Synthesizer, evaluator *quality.Evaluator, config *model.PipelineConfig, logger *slog.Logger) *Orchestrator {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		decomposer:  decomposer,
		runner:      runner,
		synthesizer: synthesizer,
		evaluator:   evaluator,
		config:      config,
		logger:      logger,
	}
}

// Run executes the query and closes the stream with exactly one terminal
// event. The returned result is nil when the run ends in the error event.
func (o *Orchestrator) Run(ctx context.Context, query *model.Query, stream *progress.Stream) (*model.QueryResult, error) {
	result, err := o.run(ctx, query, stream)
	if err != nil {
		o.logger.Error("query run failed", "question", query.Text, "error", err)
		stream.Close(model.ErrorEvent(err.Error()))
		return nil, err
	}
	stream.Close(model.ResultEvent(result))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, query *model.Query, stream *progress.Stream) (*model.QueryResult, error) {
	query.Classification = classify.Classify(query.Text)
	o.logger.Info("query classified",
		"type", query.Classification.PrimaryType,
		"confidence", query.Classification.Confidence,
		"entities", query.Classification.EntityKeywords)

	complexity := o.decomposer.Complexity(query.Text)
	subQueries := o.decomposer.Decompose(query)

	approach := model.ApproachStandard
	if len(subQueries) > 1 {
		approach = model.ApproachDecomposition
	}

	if err := ctx.Err(); err != nil {
		return nil, helper.NewError("query run", err)
	}

	results, failed, err := o.runner.Run(ctx, subQueries, query.Classification, complexity, stream.Publish)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, helper.NewError("query run", err)
	}

	answer, err := o.synthesizer.Synthesize(ctx, query, results)
	if err != nil {
		return nil, err
	}

	finalText := synthesis.ExtractFinalAnswer(answer.Text, query.Classification.PrimaryType)

	chunkAnalysis := map[model.ContentType]int{}
	var sources []string
	for _, result := range results {
		if result.Evidence == nil {
			continue
		}
		for contentType, count := range result.Evidence.TypeCounts() {
			chunkAnalysis[contentType] += count
		}
		sources = append(sources, result.Evidence.Contents()...)
	}

	var metrics *model.QualityMetrics
	if o.evaluator != nil {
		metrics, err = o.evaluator.Evaluate(ctx, query.Text, finalText, sources)
		if err != nil {
			o.logger.Warn("quality metrics unavailable", "error", err)
			metrics = nil
		}
	}

	result := &model.QueryResult{
		Question:       query.Text,
		Answer:         finalText,
		FullReasoning:  answer.FullReasoning,
		WasSummarized:  answer.WasSummarized,
		Classification: query.Classification,
		ChunksAnalyzed: answer.ChunksAnalyzed,
		ChunkAnalysis:  chunkAnalysis,
		Approach:       approach,
		SubQueryCount:  len(subQueries),
		Complexity:     complexity,
		FailedSteps:    failed,
		QualityMetrics: metrics,
	}
	return result, nil
}
