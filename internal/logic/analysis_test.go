package logic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/common"
)

func TestAnalyzePromptAndTemperature(t *testing.T) {
	llm := &stubLLM{response: goodResponse}
	analyzer, err := NewLLMAnalyzer(llm)
	require.NoError(t, err)

	analysis, err := analyzer.Analyze(context.Background(), "Today was a good day.")
	require.NoError(t, err)
	assert.Equal(t, 6, analysis.SentimentScore)
	assert.Equal(t, "Keep noticing the small wins.", analysis.Counsel)

	require.Equal(t, 1, llm.calls())
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "compassionate journaling assistant")
	assert.Contains(t, prompt, "JOURNAL ENTRY:\nToday was a good day.")
	assert.Contains(t, strings.ToLower(prompt), "sentimentscore")
	assert.Contains(t, strings.ToLower(prompt), "counsel")
	assert.Equal(t, common.AnalysisTemperature, llm.temperature)
}

func TestAnalyzeAcceptsUnfencedJSON(t *testing.T) {
	for name, response := range map[string]string{
		"bare":        `{"sentimentScore": -3, "counsel": "Rest tonight."}`,
		"plain fence": "```\n{\"sentimentScore\": -3, \"counsel\": \"Rest tonight.\"}\n```",
		"padded":      "\n\n```json\n{\"sentimentScore\": -3, \"counsel\": \"Rest tonight.\"}\n```\n",
		"preamble":    "Here is my analysis:\n```json\n{\"sentimentScore\": -3, \"counsel\": \"Rest tonight.\"}\n```",
		"trailer":     "```json\n{\"sentimentScore\": -3, \"counsel\": \"Rest tonight.\"}\n```\nTake care.",
	} {
		analyzer, err := NewLLMAnalyzer(&stubLLM{response: response})
		require.NoError(t, err)

		analysis, err := analyzer.Analyze(context.Background(), "rough day")
		require.NoError(t, err, name)
		assert.Equal(t, -3, analysis.SentimentScore, name)
		assert.Equal(t, "Rest tonight.", analysis.Counsel, name)
	}
}

func TestAnalyzeRejectsMalformedOutput(t *testing.T) {
	for name, response := range map[string]string{
		"empty":          "",
		"prose":          "I think you are doing great!",
		"string score":   `{"sentimentScore": "high", "counsel": "ok"}`,
		"fraction score": `{"sentimentScore": 2.5, "counsel": "ok"}`,
		"counsel number": `{"sentimentScore": 2, "counsel": 5}`,
		"score too high": `{"sentimentScore": 11, "counsel": "ok"}`,
		"score too low":  `{"sentimentScore": -11, "counsel": "ok"}`,
		"no counsel":     `{"sentimentScore": 1}`,
		"null counsel":   `{"sentimentScore": 1, "counsel": null}`,
		"no score":       `{"counsel": "ok"}`,
		"null score":     `{"sentimentScore": null, "counsel": "ok"}`,
		"prose in fence": "Sure!\n```\nYou are doing great.\n```",
		"blank counsel":  `{"sentimentScore": 1, "counsel": "   "}`,
	} {
		analyzer, err := NewLLMAnalyzer(&stubLLM{response: response})
		require.NoError(t, err)

		analysis, err := analyzer.Analyze(context.Background(), "entry")
		assert.Error(t, err, name)
		assert.Nil(t, analysis, name)
	}
}

func TestAnalyzeModelError(t *testing.T) {
	boom := errors.New("connection reset")
	analyzer, err := NewLLMAnalyzer(&stubLLM{err: boom})
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), "entry")
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeBoundaryScores(t *testing.T) {
	for _, response := range []string{
		`{"sentimentScore": 10, "counsel": "Celebrate."}`,
		`{"sentimentScore": -10, "counsel": "Reach out to someone."}`,
		`{"sentimentScore": 0, "counsel": "A steady day."}`,
	} {
		analyzer, err := NewLLMAnalyzer(&stubLLM{response: response})
		require.NoError(t, err)
		_, err = analyzer.Analyze(context.Background(), "entry")
		assert.NoError(t, err, response)
	}
}
