package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/docquery/model"
)

func TestClassify(t *testing.T) {
	t.Run("Counting question", func(t *testing.T) {
		classification := Classify("How many complaints are there in total?")

		assert.Equal(t, model.QueryTypeCounting, classification.PrimaryType)
		assert.Greater(t, classification.Confidence, 0.0)
	})

	t.Run("Analysis question", func(t *testing.T) {
		classification := Classify("Analyze the trend of valve failures over time")

		assert.Equal(t, model.QueryTypeAnalysis, classification.PrimaryType)
	})

	t.Run("Search question", func(t *testing.T) {
		classification := Classify("Find the record about the returned pump")

		assert.Equal(t, model.QueryTypeSearch, classification.PrimaryType)
	})

	t.Run("No pattern matches falls back to general", func(t *testing.T) {
		classification := Classify("Summaries please")

		assert.Equal(t, model.QueryTypeGeneral, classification.PrimaryType)
		assert.Equal(t, 0.0, classification.Confidence)
	})

	t.Run("Counting outranks analysis when both match", func(t *testing.T) {
		classification := Classify("Analyze how many complaints were substantiated")

		assert.Equal(t, model.QueryTypeCounting, classification.PrimaryType)
		assert.Greater(t, classification.Scores[model.QueryTypeAnalysis], 0)
	})

	t.Run("Analysis outranks search when both match", func(t *testing.T) {
		classification := Classify("Compare what is reported across markets")

		assert.Equal(t, model.QueryTypeAnalysis, classification.PrimaryType)
	})

	t.Run("Confidence is primary share of all matches", func(t *testing.T) {
		classification := Classify("Count the total number of complaints")

		require.Equal(t, model.QueryTypeCounting, classification.PrimaryType)
		total := 0
		for _, score := range classification.Scores {
			total += score
		}
		assert.InDelta(t, float64(classification.Scores[model.QueryTypeCounting])/float64(total), classification.Confidence, 0.0001)
	})

	t.Run("Known entities are detected", func(t *testing.T) {
		classification := Classify("How many substantiated complaints from Israel have a CAPA?")

		assert.Contains(t, classification.EntityKeywords, "israel")
		assert.Contains(t, classification.EntityKeywords, "substantiated")
		assert.Contains(t, classification.EntityKeywords, "capa")
	})

	t.Run("Capitalized terms become entities", func(t *testing.T) {
		classification := Classify("How many complaints mention Germany?")

		assert.Contains(t, classification.EntityKeywords, "germany")
	})

	t.Run("Leading word is not treated as an entity", func(t *testing.T) {
		classification := Classify("Germany complaints")

		assert.NotContains(t, classification.EntityKeywords, "germany")
	})

	t.Run("Long question is complex", func(t *testing.T) {
		classification := Classify(strings.Repeat("count everything ", 20))

		assert.True(t, classification.IsComplex)
	})

	t.Run("Multiple question marks is complex", func(t *testing.T) {
		classification := Classify("How many complaints? And how many were substantiated?")

		assert.True(t, classification.IsComplex)
	})

	t.Run("Short single question is not complex", func(t *testing.T) {
		classification := Classify("How many complaints?")

		assert.False(t, classification.IsComplex)
	})
}
