// Package synthesis merges sub-answers into one final answer.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/model"
)

// Synthesizer combines completed sub-query results into a final answer and
// decides whether the merged text needs a summarization pass.
type Synthesizer struct {
	llm    llm.Client
	config *model.PipelineConfig
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer backed by the given model client
func NewSynthesizer(client llm.Client, config *model.PipelineConfig, logger *slog.Logger) *Synthesizer {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{llm: client, config: config, logger: logger}
}

// Synthesize merges the sub-answers into one response. A single sub-answer
// passes through unchanged apart from the summarization decision; multiple
// sub-answers are merged by the model with counts, entities and per-step
// attribution preserved.
func (s *Synthesizer) Synthesize(ctx context.Context, query *model.Query, results []*model.SubQueryResult) (*model.Answer, error) {
	if len(results) == 0 {
		return nil, helper.NewError("synthesis", model.ErrSynthesisInputEmpty)
	}

	chunksAnalyzed := 0
	for _, result := range results {
		chunksAnalyzed += result.Answer.ChunksAnalyzed
	}

	var merged string
	if len(results) == 1 {
		merged = results[0].Answer.Text
	} else {
		text, err := s.merge(ctx, query, results)
		if err != nil {
			return nil, err
		}
		merged = text
	}

	queryType := model.QueryTypeGeneral
	if query.Classification != nil {
		queryType = query.Classification.PrimaryType
	}
	final, wasSummarized := s.summarizeIfNeeded(ctx, merged, queryType)

	return &model.Answer{
		Text:           final,
		FullReasoning:  merged,
		WasSummarized:  wasSummarized,
		ChunksAnalyzed: chunksAnalyzed,
	}, nil
}

func (s *Synthesizer) merge(ctx context.Context, query *model.Query, results []*model.SubQueryResult) (string, error) {
	var sections []string
	for _, result := range results {
		sections = append(sections,
			fmt.Sprintf("=== %s ===", strings.ToUpper(result.SubQuery.Step)),
			fmt.Sprintf("Question: %s", result.SubQuery.Text),
			fmt.Sprintf("Answer: %s", result.Answer.Text),
			"")
	}

	prompt := fmt.Sprintf(`You are synthesizing multiple focused analysis results into a comprehensive response.

ORIGINAL COMPLEX QUERY:
%s

FOCUSED ANALYSIS RESULTS:
%s

SYNTHESIS INSTRUCTIONS:
1. Combine all the focused results to address every aspect of the original query
2. Follow the exact format and structure requested in the original query
3. Ensure all numbers, comparisons, and details from the focused analyses are included
4. Maintain professional formatting with proper capitalization and date formats
5. If any required information is missing from the focused results, note it clearly
6. Do not add information not present in the focused analysis results

COMPREHENSIVE RESPONSE:`,
		query.Text, strings.Join(sections, "\n"))

	text, err := s.llm.Complete(ctx, llm.Request{
		System: "You are an expert data analyst specializing in synthesizing multiple focused analyses into comprehensive reports. You maintain accuracy while ensuring all requirements of complex queries are addressed.",
		Prompt: prompt,
	})
	if err != nil {
		return "", helper.NewError("synthesis", err)
	}
	return strings.TrimSpace(text), nil
}

// summarizeIfNeeded asks the model whether the answer should be condensed.
// Answers under the word threshold pass through directly; a failed
// summarization call keeps the original answer.
func (s *Synthesizer) summarizeIfNeeded(ctx context.Context, answer string, queryType model.QueryType) (string, bool) {
	if len(strings.Fields(answer)) <= s.config.SummarizeWordThreshold {
		return answer, false
	}

	prompt := fmt.Sprintf(`You are an intelligent summarization assistant. Your task is to decide whether the following answer needs summarization for better user experience.

GUIDELINES:
- If the answer is already concise (under 500 words) and well-formatted, return it as-is
- If the answer is too long, repetitive, or contains excessive detail, provide a clear, concise summary
- Always preserve the key information, numbers, and main conclusions
- For counting queries: Always keep the exact count and essential list items
- For analysis queries: Keep main insights and key findings
- Start your response with either "SUMMARY:" or "ORIGINAL:" to indicate your decision

QUERY TYPE: %s

ANSWER TO EVALUATE:
%s

RESPONSE:`, queryType, answer)

	text, err := s.llm.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		s.logger.Warn("summarization failed, keeping original answer", "error", err)
		return answer, false
	}

	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "SUMMARY:"):
		return strings.TrimSpace(strings.TrimPrefix(text, "SUMMARY:")), true
	case strings.HasPrefix(text, "ORIGINAL:"):
		return strings.TrimSpace(strings.TrimPrefix(text, "ORIGINAL:")), false
	case text != "":
		return text, true
	default:
		return answer, false
	}
}

// ExtractFinalAnswer pulls the FINAL ANSWER section out of a counting
// response. Other query types and responses without the marker pass through.
func ExtractFinalAnswer(fullAnswer string, queryType model.QueryType) string {
	if queryType != model.QueryTypeCounting {
		return fullAnswer
	}

	lines := strings.Split(fullAnswer, "\n")
	capturing := false
	var finalLines []string
	for _, line := range lines {
		if strings.Contains(strings.ToUpper(line), "FINAL ANSWER") {
			capturing = true
			continue
		}
		if capturing {
			if line = strings.TrimSpace(line); line != "" {
				finalLines = append(finalLines, line)
			}
		}
	}

	if len(finalLines) > 0 {
		return strings.Join(finalLines, "\n")
	}
	return fullAnswer
}
