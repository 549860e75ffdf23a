package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	langopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/outputparser"
	"github.com/tmc/langchaingo/prompts"

	"journal-backend/internal/common"
)

// Analysis is the structured result the model is asked to produce.
type Analysis struct {
	SentimentScore int    `json:"sentimentScore" describe:"Sentiment of the text rated on a scale from -10 to 10, where -10 is extremely negative, 0 is neutral, and 10 is extremely positive."`
	Counsel        string `json:"counsel" describe:"A short paragraph of constructive, supportive advice based on the entry."`
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// LLMAnalyzer asks a chat model for an Analysis of a journal entry.
type LLMAnalyzer struct {
	llm    llms.Model
	prompt prompts.PromptTemplate
	parser outputparser.Defined[Analysis]
}

// NewOpenAICompatibleLLM builds a client for any endpoint speaking the
// OpenAI chat API, Gemini's included.
func NewOpenAICompatibleLLM(token, model, baseURL string) (llms.Model, error) {
	llm, err := langopenai.New(
		langopenai.WithToken(token),
		langopenai.WithModel(model),
		langopenai.WithBaseURL(baseURL))
	if err != nil {
		return nil, err
	}
	return llm, nil
}

func NewLLMAnalyzer(llm llms.Model) (*LLMAnalyzer, error) {
	parser, err := outputparser.NewDefined(Analysis{})
	if err != nil {
		return nil, fmt.Errorf("build output parser: %w", err)
	}
	prompt := prompts.NewPromptTemplate(common.AnalysisPrompt, []string{"entry"})
	prompt.PartialVariables = map[string]any{
		"format_instructions": parser.GetFormatInstructions(),
	}
	return &LLMAnalyzer{llm: llm, prompt: prompt, parser: parser}, nil
}

// Analyze makes one model call. Output that does not parse into an Analysis
// is an error; nothing is retried or repaired.
func (a *LLMAnalyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	prompt, err := a.prompt.Format(map[string]any{"entry": text})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	start := time.Now()
	raw, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt,
		llms.WithTemperature(common.AnalysisTemperature))
	llmLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	return a.parse(raw)
}

func (a *LLMAnalyzer) parse(raw string) (*Analysis, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, errors.New("model returned an empty response")
	}
	if err := requireFields(body); err != nil {
		return nil, err
	}

	// the parser only accepts ```json fenced output; models do not always fence
	analysis, err := a.parser.Parse("```json\n" + body + "\n```")
	if err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if analysis.SentimentScore < common.MinSentimentScore || analysis.SentimentScore > common.MaxSentimentScore {
		return nil, fmt.Errorf("sentimentScore %d outside [%d, %d]",
			analysis.SentimentScore, common.MinSentimentScore, common.MaxSentimentScore)
	}
	if strings.TrimSpace(analysis.Counsel) == "" {
		return nil, errors.New("counsel is empty")
	}
	return &analysis, nil
}

// extractJSON returns the contents of the first fenced block in raw, or raw
// itself when it has no fence. Text around the block is dropped.
func extractJSON(raw string) string {
	body := strings.TrimSpace(raw)
	start := strings.Index(body, "```")
	if start < 0 {
		return body
	}
	body = strings.TrimPrefix(body[start+3:], "json")
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// requireFields rejects output where either field is absent or null, which
// would otherwise decode to a zero value.
func requireFields(body string) error {
	var fields struct {
		SentimentScore *int    `json:"sentimentScore"`
		Counsel        *string `json:"counsel"`
	}
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	if fields.SentimentScore == nil {
		return errors.New("model output has no sentimentScore")
	}
	if fields.Counsel == nil {
		return errors.New("model output has no counsel")
	}
	return nil
}
