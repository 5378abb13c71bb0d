// Package quality scores a final answer on groundedness, accuracy and relevance.
package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/model"
)

// Evaluator runs three independent evaluation passes against the model.
// A failed pass drops its metric from the average; the run only fails when
// every pass is unavailable.
type Evaluator struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewEvaluator creates an evaluator backed by the given model client
func NewEvaluator(client llm.Client, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{llm: client, logger: logger}
}

type metricResponse struct {
	Score     int      `json:"score"`
	Reasoning string   `json:"reasoning"`
	Evidence  []string `json:"evidence"`
	Issues    []string `json:"issues"`
	Alignment string   `json:"alignment"`
}

// Evaluate scores the answer against the evidence it was built from.
// Returns ErrEvaluationUnavailable when no metric could be computed; callers
// treat that as metrics-omitted, never as a failed run.
func (e *Evaluator) Evaluate(ctx context.Context, question, answer string, sources []string) (*model.QualityMetrics, error) {
	sourceContext := numberedSources(sources)

	metrics := &model.QualityMetrics{}
	var scores []int

	if groundedness, err := e.runPass(ctx, groundednessPrompt(question, answer, sourceContext)); err != nil {
		e.logger.Warn("groundedness evaluation unavailable", "error", err)
	} else {
		metrics.Groundedness = model.Metric{Score: model.ClampScore(groundedness.Score), Reasoning: groundedness.Reasoning, Evidence: groundedness.Evidence}
		scores = append(scores, metrics.Groundedness.Score)
	}

	if accuracy, err := e.runPass(ctx, accuracyPrompt(question, answer, sourceContext)); err != nil {
		e.logger.Warn("accuracy evaluation unavailable", "error", err)
	} else {
		metrics.Accuracy = model.Metric{Score: model.ClampScore(accuracy.Score), Reasoning: accuracy.Reasoning, Issues: accuracy.Issues}
		scores = append(scores, metrics.Accuracy.Score)
	}

	if relevance, err := e.runPass(ctx, relevancePrompt(question, answer)); err != nil {
		e.logger.Warn("relevance evaluation unavailable", "error", err)
	} else {
		metrics.Relevance = model.Metric{Score: model.ClampScore(relevance.Score), Reasoning: relevance.Reasoning, Alignment: relevance.Alignment}
		scores = append(scores, metrics.Relevance.Score)
	}

	if len(scores) == 0 {
		return nil, helper.NewError("quality evaluation", model.ErrEvaluationUnavailable)
	}

	summary := fmt.Sprintf("Evaluated on %d of 3 metrics", len(scores))
	if len(scores) == 3 {
		summary = "Evaluated on all three metrics"
	}
	metrics.OverallAssessment = model.NewOverallAssessment(scores, summary)
	return metrics, nil
}

func (e *Evaluator) runPass(ctx context.Context, prompt string) (*metricResponse, error) {
	text, err := e.llm.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	var response metricResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &response); err != nil {
		return nil, fmt.Errorf("failed to parse metric response: %w", err)
	}
	return &response, nil
}

// stripCodeFence removes a surrounding markdown code fence if the model added one
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

func numberedSources(sources []string) string {
	blocks := make([]string, len(sources))
	for i, source := range sources {
		blocks[i] = fmt.Sprintf("Source %d:\n%s", i+1, source)
	}
	return strings.Join(blocks, "\n\n")
}

func groundednessPrompt(question, answer, sourceContext string) string {
	return fmt.Sprintf(`You are an AI Quality Evaluator assessing GROUNDEDNESS.

CRITERIA (0-100):
- Are the facts and claims in the answer directly supported by the provided source data?
- Is the answer based on verifiable information from the sources?
- Score: 100 = fully grounded in sources, 0 = no source support

ORIGINAL QUESTION: %s

AI ANSWER TO EVALUATE:
%s

SOURCE DATA USED:
%s

REQUIRED RESPONSE FORMAT (JSON):
{
    "score": [0-100],
    "reasoning": "Brief explanation of score",
    "evidence": ["Key supporting facts from sources"]
}

Respond ONLY with the JSON object:`, question, answer, sourceContext)
}

func accuracyPrompt(question, answer, sourceContext string) string {
	return fmt.Sprintf(`You are an AI Quality Evaluator assessing ACCURACY.

CRITERIA (0-100):
- Are the facts, numbers, and statements in the answer correct?
- Are calculations, counts, and data interpretations accurate?
- Score: 100 = completely accurate, 0 = major errors

ORIGINAL QUESTION: %s

AI ANSWER TO EVALUATE:
%s

SOURCE DATA USED:
%s

REQUIRED RESPONSE FORMAT (JSON):
{
    "score": [0-100],
    "reasoning": "Brief explanation of score",
    "issues": ["Any accuracy concerns found"]
}

Respond ONLY with the JSON object:`, question, answer, sourceContext)
}

func relevancePrompt(question, answer string) string {
	return fmt.Sprintf(`You are an AI Quality Evaluator assessing RELEVANCE.

CRITERIA (0-100):
- Does the answer directly address the user's question?
- Is the information provided pertinent to what was asked?
- Score: 100 = perfectly relevant, 0 = completely off-topic

ORIGINAL QUESTION: %s

AI ANSWER TO EVALUATE:
%s

REQUIRED RESPONSE FORMAT (JSON):
{
    "score": [0-100],
    "reasoning": "Brief explanation of score",
    "alignment": "How well answer matches question intent"
}

Respond ONLY with the JSON object:`, question, answer)
}
