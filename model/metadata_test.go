package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataMarshal(t *testing.T) {
	t.Run("Chunk statistics marshal to JSON", func(t *testing.T) {
		m := Metadata{
			"char_length":  412,
			"record_lines": 25,
		}

		bytes, err := m.Marshal()

		require.NoError(t, err)
		var result map[string]interface{}
		err = json.Unmarshal(bytes, &result)
		require.NoError(t, err)
		assert.Equal(t, float64(412), result["char_length"])
		assert.Equal(t, float64(25), result["record_lines"])
	})

	t.Run("Empty metadata marshals to empty object", func(t *testing.T) {
		bytes, err := Metadata{}.Marshal()

		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), bytes)
	})
}

func TestMetadataUnmarshal(t *testing.T) {
	t.Run("Unmarshal JSON bytes", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal([]byte(`{"content_hash":"9f86d081","char_length":42}`))

		require.NoError(t, err)
		assert.Equal(t, "9f86d081", m["content_hash"])
		assert.Equal(t, float64(42), m["char_length"])
	})

	t.Run("Nil value yields empty metadata", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(nil)

		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.Len(t, m, 0)
	})

	t.Run("Metadata value is adopted directly", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(Metadata{"record_lines": 3})

		require.NoError(t, err)
		assert.Equal(t, 3, m["record_lines"])
	})

	t.Run("Invalid JSON is rejected", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal([]byte(`{record_lines}`))

		require.Error(t, err)
	})

	t.Run("Non-byte value is rejected", func(t *testing.T) {
		var m Metadata

		err := m.Unmarshal(12345)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "type assertion")
	})
}

func TestMetadataValueScan(t *testing.T) {
	t.Run("Value then Scan round-trips chunk statistics", func(t *testing.T) {
		original := Metadata{
			"char_length":  987,
			"record_lines": 12,
			"content_hash": "60303ae2",
		}

		value, err := original.Value()
		require.NoError(t, err)

		var restored Metadata
		err = restored.Scan(value)
		require.NoError(t, err)

		assert.Equal(t, float64(987), restored["char_length"])
		assert.Equal(t, float64(12), restored["record_lines"])
		assert.Equal(t, "60303ae2", restored["content_hash"])
	})

	t.Run("Scan from nil database value", func(t *testing.T) {
		var m Metadata

		err := m.Scan(nil)

		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.Len(t, m, 0)
	})
}
