package model

import "math"

// QualityThreshold is the average score at which an answer is acceptable
const QualityThreshold = 80

// Metric is one evaluation axis with a 0-100 score.
// Exactly one of Evidence, Issues or Alignment is populated depending on the axis.
type Metric struct {
	Score     int      `json:"score"`
	Reasoning string   `json:"reasoning"`
	Evidence  []string `json:"evidence,omitempty"`
	Issues    []string `json:"issues,omitempty"`
	Alignment string   `json:"alignment,omitempty"`
}

// ClampScore bounds a reported score to [0,100]
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// OverallAssessment aggregates the three metric scores
type OverallAssessment struct {
	AverageScore int    `json:"average_score"`
	Acceptable   bool   `json:"acceptable"`
	NeedsReview  bool   `json:"needs_review"`
	Summary      string `json:"summary"`
}

// QualityMetrics is the triple-metric evaluation of one final answer
type QualityMetrics struct {
	Groundedness      Metric            `json:"groundedness"`
	Accuracy          Metric            `json:"accuracy"`
	Relevance         Metric            `json:"relevance"`
	OverallAssessment OverallAssessment `json:"overall_assessment"`
}

// NewOverallAssessment averages the available scores, rounded to the nearest
// whole percent. Acceptable iff the average reaches QualityThreshold;
// NeedsReview is always its negation.
func NewOverallAssessment(scores []int, summary string) OverallAssessment {
	average := 0
	if len(scores) > 0 {
		sum := 0
		for _, s := range scores {
			sum += ClampScore(s)
		}
		average = int(math.Round(float64(sum) / float64(len(scores))))
	}
	acceptable := average >= QualityThreshold
	return OverallAssessment{
		AverageScore: average,
		Acceptable:   acceptable,
		NeedsReview:  !acceptable,
		Summary:      summary,
	}
}
