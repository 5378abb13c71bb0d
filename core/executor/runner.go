package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alitto/pond/v2"

	"github.com/docquery/docquery/core/retrieval"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/model"
)

// detailPreviewLength bounds the answer preview in step-completed events
const detailPreviewLength = 80

// EmitFunc receives progress events from a running plan
type EmitFunc func(event model.ProgressEvent)

// Runner executes a sub-query plan with bounded concurrency. Each sub-query
// selects its own evidence, runs through the CoT executor and reports its
// lifecycle on the progress stream. Individual failures are absorbed; the run
// only fails when every sub-query fails.
type Runner struct {
	selector *retrieval.Selector
	executor *CoTExecutor
	config   *model.PipelineConfig
	logger   *slog.Logger
}

// NewRunner creates a runner over the given selector and executor
func NewRunner(selector *retrieval.Selector, executor *CoTExecutor, config *model.PipelineConfig, logger *slog.Logger) *Runner {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{selector: selector, executor: executor, config: config, logger: logger}
}

type outcome struct {
	result *model.SubQueryResult
	step   string
	errMsg string
}

// Run executes all sub-queries up to the configured fan-out and returns the
// completed results in plan order plus a step→message map of failures.
// Activation always precedes completion per sub-query; events from different
// sub-queries may interleave.
func (r *Runner) Run(ctx context.Context, subQueries []*model.SubQuery, classification *model.Classification, complexity int, emit EmitFunc) ([]*model.SubQueryResult, map[string]string, error) {
	if emit == nil {
		emit = func(model.ProgressEvent) {}
	}

	pool := pond.NewResultPool[outcome](r.config.SubQueryFanOut)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	for _, subQuery := range subQueries {
		subQuery := subQuery
		group.SubmitErr(func() (outcome, error) {
			return r.runOne(ctx, subQuery, classification, complexity, emit), nil
		})
	}

	outcomes, err := group.Wait()
	if err != nil {
		return nil, nil, helper.NewError("sub-query execution", err)
	}

	var results []*model.SubQueryResult
	failed := map[string]string{}
	for _, o := range outcomes {
		if o.errMsg != "" {
			failed[o.step] = o.errMsg
			continue
		}
		if o.result != nil {
			results = append(results, o.result)
		}
	}

	if len(results) == 0 {
		return nil, failed, helper.NewError("sub-query execution", fmt.Errorf("%w: %d of %d failed", model.ErrAllSubQueriesFailed, len(failed), len(subQueries)))
	}
	return results, failed, nil
}

func (r *Runner) runOne(ctx context.Context, subQuery *model.SubQuery, classification *model.Classification, complexity int, emit EmitFunc) outcome {
	subQuery.State = model.StepStateActive
	emit(model.StepActivated(subQuery.Step, fmt.Sprintf("Processing %v...", strings.ToLower(subQuery.Step))))

	subClassification := &model.Classification{PrimaryType: subQuery.Type}
	if classification != nil {
		subClassification.EntityKeywords = classification.EntityKeywords
	}

	evidence, err := r.selector.Select(ctx, subQuery.Text, subClassification)
	if err != nil {
		return r.fail(subQuery, emit, err)
	}

	answer, err := r.executor.Execute(ctx, subQuery, evidence, complexity)
	if err != nil {
		return r.fail(subQuery, emit, err)
	}

	subQuery.State = model.StepStateCompleted
	emit(model.StepCompleted(subQuery.Step, preview(answer.Text)))
	return outcome{
		result: &model.SubQueryResult{SubQuery: subQuery, Answer: answer, Evidence: evidence},
		step:   subQuery.Step,
	}
}

func (r *Runner) fail(subQuery *model.SubQuery, emit EmitFunc, err error) outcome {
	r.logger.Warn("sub-query failed", "step", subQuery.Step, "error", err)
	subQuery.State = model.StepStateFailed
	emit(model.StepCompleted(subQuery.Step, "Step failed"))
	return outcome{step: subQuery.Step, errMsg: err.Error()}
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Processing completed"
	}
	if len(text) > detailPreviewLength {
		return text[:detailPreviewLength]
	}
	return text
}
