package common

const (
	// AnalysisPrompt is rendered as a Go template with the entry text and the
	// parser's format instructions.
	AnalysisPrompt = `
You are a compassionate journaling assistant. Analyze the following journal entry.
Follow the instructions and format your response to match the format instructions, no matter what!
{{.format_instructions}}
---
JOURNAL ENTRY:
{{.entry}}
`

	AnalysisTemperature = 0.7

	MinSentimentScore = -10
	MaxSentimentScore = 10
)

var (
	DefaultLLMModel   = "gemini-1.5-flash-latest"
	DefaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
)
