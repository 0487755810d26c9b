package polish

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type fakeChat struct {
	reply string
	err   error
	reqs  []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func TestPolishReturnsCleanedText(t *testing.T) {
	fake := &fakeChat{reply: "So today I learned about neurons."}
	p := NewWithClient(fake, openai.GPT4o, time.Second, nil)

	got := p.Polish(context.Background(), "um so today I learned about neurons.")
	if got != "So today I learned about neurons." {
		t.Errorf("Polish = %q", got)
	}
	if len(fake.reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(fake.reqs))
	}
	req := fake.reqs[0]
	if req.Model != openai.GPT4o {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("unexpected message layout: %+v", req.Messages)
	}
}

func TestPolishDegradesOnError(t *testing.T) {
	fake := &fakeChat{err: errors.New("rate limited")}
	p := NewWithClient(fake, "", time.Second, nil)

	in := "keep this exactly as it is."
	if got := p.Polish(context.Background(), in); got != in {
		t.Errorf("Polish = %q, want the input back", got)
	}
}

func TestPolishDegradesOnEmptyReply(t *testing.T) {
	fake := &fakeChat{reply: "Certainly! Here is the text:"}
	p := NewWithClient(fake, "", time.Second, nil)

	in := "original words."
	if got := p.Polish(context.Background(), in); got != in {
		t.Errorf("Polish = %q, want the input back when the reply is all boilerplate", got)
	}
}

func TestPolishStripsMetaOpeners(t *testing.T) {
	fake := &fakeChat{reply: "Sure, happy to help!\nThe actual cleaned text."}
	p := NewWithClient(fake, "", time.Second, nil)

	if got := p.Polish(context.Background(), "input"); got != "The actual cleaned text." {
		t.Errorf("Polish = %q", got)
	}
}

func TestPolishSkipsBlankInput(t *testing.T) {
	fake := &fakeChat{reply: "should never be used"}
	p := NewWithClient(fake, "", time.Second, nil)

	if got := p.Polish(context.Background(), "   "); got != "   " {
		t.Errorf("Polish = %q, want input unchanged", got)
	}
	if len(fake.reqs) != 0 {
		t.Errorf("blank input still produced %d requests", len(fake.reqs))
	}
}

func TestStripMetaTalk(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"certainly opener",
			"Certainly! Here you go.\nreal content",
			"real content",
		},
		{
			"here is your text",
			"Here is the cleaned text:\nreal content",
			"real content",
		},
		{
			"ai disclaimer",
			"As an AI, I cannot judge.\nreal content",
			"real content",
		},
		{
			"interior lines dropped too",
			"first line\nOf course, glad to assist.\nlast line",
			"first line\nlast line",
		},
		{
			"clean text untouched",
			"nothing suspicious here.\nstill fine.",
			"nothing suspicious here.\nstill fine.",
		},
		{
			"mid-line mention kept",
			"the word certainly appears mid-sentence.",
			"the word certainly appears mid-sentence.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripMetaTalk(tc.in); got != tc.want {
				t.Errorf("StripMetaTalk(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
