package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"google.golang.org/genai"

	"github.com/style-miner/analyzer/internal/config"
)

// LLMClient is the interface every provider implementation satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

const (
	defaultGeminiModel    = "gemini-3-pro-preview"
	defaultAnthropicModel = "claude-opus-4-5-20251101"

	maxResponseTokens = 4000
	temperature       = 0.3
)

// NewClient selects a provider from the runtime config.
func NewClient(ctx context.Context, cfg *config.Config) (LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		model := cfg.Model
		if model == "" {
			model = defaultGeminiModel
		}
		log.Println("Analysis using Gemini API:", model)
		return NewGeminiClient(ctx, cfg.GeminiKey(), model)
	case config.ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		log.Println("Analysis using Anthropic API:", model)
		return NewAnthropicClient(cfg.AnthropicKey, model), nil
	case config.ProviderCLI:
		log.Println("Analysis using Claude CLI (local plan)")
		return NewCLIClient(cfg.ClaudeCLIPath), nil
	case config.ProviderMock:
		log.Println("Analysis using mock responses")
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// ── GeminiClient — Google GenAI SDK ────────────────────────

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxResponseTokens,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.callWithRetry(ctx, userPrompt, cfg)
	if err != nil {
		return nil, err
	}

	var responseText string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text content in Gemini response")
	}

	out := &LLMResponse{Content: responseText}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func (c *GeminiClient) callWithRetry(ctx context.Context, userPrompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Gemini API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		log.Printf("Gemini API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("gemini API failed after retries: %w", lastErr)
}

// ── AnthropicClient — Anthropic SDK ────────────────────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxResponseTokens,
		Temperature: param.NewOpt(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── CLIClient — claude CLI, no API key needed ──────────────

type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)

	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("claude CLI error: %w\nstderr: %s", err, stderr.String())
	}

	responseText := strings.TrimSpace(stdout.String())
	if responseText == "" {
		return nil, fmt.Errorf("claude CLI returned empty response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: 0,
		OutputTokens: 0,
	}, nil
}

// ── MockClient — local development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	content := buildMockAnalysis()
	if strings.Contains(systemPrompt, "Teaching Assistant") {
		content = buildMockGrade()
	}
	return &LLMResponse{
		Content:      content,
		PromptTokens: 1200,
		OutputTokens: 800,
	}, nil
}

func buildMockAnalysis() string {
	return `1. GRADING DECONSTRUCTION:
[Mock] The grader rewards concrete textual evidence and penalizes plot summary.
Scores cluster in the 80-95 band; grades below 70 signal missing thesis statements.

2. GRADING SYSTEM PROMPT:
[Mock] You are an essay grader. Award up to 40 points for argument quality,
30 for evidence, 20 for structure, and 10 for mechanics. Output a grade out of 100.

3. FEEDBACK DECONSTRUCTION:
[Mock] Feedback opens with one sentence of praise, then lists two improvement
points, always referencing a specific passage from the essay.

4. FEEDBACK SYSTEM PROMPT:
[Mock] You are a writing coach. Begin with encouragement, then give exactly two
actionable suggestions tied to quotes from the student's essay.`
}

func buildMockGrade() string {
	return `Grade: 87
Feedback: Hi Student, [Mock] Strong central argument with well-chosen evidence.
To improve, tighten the second paragraph and connect the conclusion back to
your thesis.`
}
