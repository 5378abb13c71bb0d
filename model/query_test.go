package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	t.Run("Valid question", func(t *testing.T) {
		query, err := NewQuery("How many complaints are from Israel?")
		require.NoError(t, err)
		assert.Equal(t, "How many complaints are from Israel?", query.Text)
		assert.Nil(t, query.Classification)
	})

	t.Run("Whitespace is trimmed", func(t *testing.T) {
		query, err := NewQuery("  How many?  ")
		require.NoError(t, err)
		assert.Equal(t, "How many?", query.Text)
	})

	t.Run("Empty question is rejected", func(t *testing.T) {
		_, err := NewQuery("   ")
		assert.Error(t, err)
	})

	t.Run("Question at the length limit is accepted", func(t *testing.T) {
		_, err := NewQuery(strings.Repeat("x", MaxQueryLength))
		assert.NoError(t, err)
	})

	t.Run("Over-long question is rejected", func(t *testing.T) {
		_, err := NewQuery(strings.Repeat("x", MaxQueryLength+1))
		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrQueryTooLong)
	})
}
