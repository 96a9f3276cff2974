package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredAnswerValid(t *testing.T) {
	t.Run("Answer with reasoning and confidence is valid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results: []LawFinding{
				{Reasoning: "short", Confidence: 3},
			},
		}

		assert.True(t, answer.Valid(), "Expected answer with 5-char reasoning and confidence 3 to be valid")
	})

	t.Run("Answer with empty implications is invalid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: "",
			Results:      []LawFinding{},
		}

		assert.False(t, answer.Valid(), "Expected answer with empty implications and no results to be invalid")
	})

	t.Run("Answer with no results is invalid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results:      []LawFinding{},
		}

		assert.False(t, answer.Valid())
	})

	t.Run("Answer with blank reasoning is invalid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results: []LawFinding{
				{Reasoning: "    ", Confidence: 5},
			},
		}

		assert.False(t, answer.Valid(), "Expected whitespace-only reasoning to fail validation")
	})

	t.Run("Answer with too short reasoning is invalid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results: []LawFinding{
				{Reasoning: "ok", Confidence: 5},
			},
		}

		assert.False(t, answer.Valid(), "Expected reasoning under 5 characters to fail validation")
	})

	t.Run("Answer with negative confidence is invalid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results: []LawFinding{
				{Reasoning: "valid reasoning", Confidence: -1},
			},
		}

		assert.False(t, answer.Valid())
	})

	t.Run("Answer with NaN confidence is invalid", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results: []LawFinding{
				{Reasoning: "valid reasoning", Confidence: Confidence(math.NaN())},
			},
		}

		assert.False(t, answer.Valid())
	})

	t.Run("One valid result among invalid ones is enough", func(t *testing.T) {
		answer := &StructuredAnswer{
			Implications: ImplicationsRequired,
			Results: []LawFinding{
				{Reasoning: "no", Confidence: 1},
				{Reasoning: "this one carries real reasoning", Confidence: 8},
			},
		}

		assert.True(t, answer.Valid())
	})

	t.Run("Nil answer is invalid", func(t *testing.T) {
		var answer *StructuredAnswer

		assert.False(t, answer.Valid())
	})
}

func TestConfidenceUnmarshal(t *testing.T) {
	t.Run("Unmarshal numeric confidence", func(t *testing.T) {
		var f LawFinding
		err := json.Unmarshal([]byte(`{"reasoning": "r", "confidence": 7}`), &f)

		require.NoError(t, err)
		assert.Equal(t, Confidence(7), f.Confidence)
	})

	t.Run("Unmarshal string confidence", func(t *testing.T) {
		var f LawFinding
		err := json.Unmarshal([]byte(`{"reasoning": "r", "confidence": "8.5"}`), &f)

		require.NoError(t, err)
		assert.Equal(t, Confidence(8.5), f.Confidence)
	})

	t.Run("Unmarshal non-numeric confidence yields NaN instead of failing", func(t *testing.T) {
		var f LawFinding
		err := json.Unmarshal([]byte(`{"reasoning": "r", "confidence": "very sure"}`), &f)

		require.NoError(t, err, "A malformed confidence must not abort parsing of the whole answer")
		assert.True(t, math.IsNaN(float64(f.Confidence)))
	})

	t.Run("Marshal NaN confidence as null", func(t *testing.T) {
		f := LawFinding{Reasoning: "r", Confidence: Confidence(math.NaN())}
		data, err := json.Marshal(f)

		require.NoError(t, err)
		assert.Contains(t, string(data), `"confidence":null`)
	})
}
