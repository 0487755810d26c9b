package polish

import (
	"context"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/voice-notes-lab/internal/logging"
	"github.com/voice-notes-lab/internal/metrics"
)

// systemPrompt instructs the rewriting collaborator to make minimal edits
// and never emit meta-commentary about itself or the task.
const systemPrompt = "You are a minimal text editor. Your task is to:\n" +
	"1. Fix only obvious grammar mistakes\n" +
	"2. Remove clear redundancies and filler words\n" +
	"3. Make only necessary structural improvements\n" +
	"4. Preserve the original tone and speaking style\n" +
	"5. Keep all specific details and examples exactly as given\n" +
	"6. Do NOT include any meta text like 'Certainly!' or disclaimers. " +
	"Your output should only be the cleaned-up user text.\n\n" +
	"Important: Make minimal changes. If a sentence is understandable, leave it as is.\n" +
	"Never paraphrase or rewrite unless absolutely necessary for clarity."

// metaLineRes match boilerplate opener lines the collaborator sometimes
// prepends despite the prompt. Matching lines are dropped from its output.
var metaLineRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Certainly`),
	regexp.MustCompile(`(?i)^Sure`),
	regexp.MustCompile(`(?i)^As an AI`),
	regexp.MustCompile(`(?i)^I'm an AI`),
	regexp.MustCompile(`(?i)^Here.*text`),
	regexp.MustCompile(`(?i)^Of course`),
}

// ChatClient is the slice of the OpenAI client the polisher needs; tests
// substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Polisher routes paragraphs through an external rewriting collaborator.
// Collaborator failure is non-fatal: Polish degrades to returning its input.
type Polisher struct {
	client  ChatClient
	model   string
	timeout time.Duration
	metrics *metrics.Metrics
}

// New builds a Polisher backed by the OpenAI chat completions endpoint.
func New(apiKey, model string, timeout time.Duration, m *metrics.Metrics) *Polisher {
	if model == "" {
		model = openai.GPT4o
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Polisher{client: openai.NewClient(apiKey), model: model, timeout: timeout, metrics: m}
}

// NewWithClient builds a Polisher around an injected ChatClient.
func NewWithClient(client ChatClient, model string, timeout time.Duration, m *metrics.Metrics) *Polisher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Polisher{client: client, model: model, timeout: timeout, metrics: m}
}

// Polish sends text for minimal cleanup and strips boilerplate lines from
// the collaborator's reply. On any failure the original text is returned
// unchanged.
func (p *Polisher) Polish(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if p.metrics != nil {
		p.metrics.PolishRequests.Inc()
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		MaxTokens:   1500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Please make minimal improvements to this transcribed speech, " +
				"focusing only on essential grammar fixes and removal of filler words:\n\n" + text},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		if p.metrics != nil {
			p.metrics.PolishFallbacks.Inc()
		}
		logging.Warnw("polish failed, keeping original text", "err", err)
		return text
	}
	out := StripMetaTalk(strings.TrimSpace(resp.Choices[0].Message.Content))
	if strings.TrimSpace(out) == "" {
		return text
	}
	return out
}

// StripMetaTalk removes lines matching the known boilerplate openers.
func StripMetaTalk(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isMetaLine(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isMetaLine(line string) bool {
	for _, re := range metaLineRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
