package translator

import (
	"context"
	"fmt"
	"strings"

	"linguaflow/internal/llm"
)

const systemPromptTemplate = `You are a professional translator. Translate the user's text %s into %s.
Preserve paragraph breaks, line breaks, markdown formatting, numbers and punctuation.
Do not add explanations, notes or quotation marks. Reply with the translated text only.`

// ChatClient is the part of the LLM client the translator needs.
type ChatClient interface {
	ChatMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// LLM translates through a chat completion model.
type LLM struct {
	client      ChatClient
	temperature float32
}

// NewLLM creates an LLM-backed translator.
func NewLLM(client ChatClient) *LLM {
	return &LLM{
		client:      client,
		temperature: 0.2,
	}
}

// Name identifies the backend.
func (t *LLM) Name() string {
	return "llm"
}

// Translate sends req.Text as the user message. Leading and trailing
// whitespace of the input is kept around the model output.
func (t *LLM) Translate(ctx context.Context, req Request) (string, error) {
	trimmed := strings.TrimSpace(req.Text)
	if trimmed == "" {
		return req.Text, nil
	}

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt(req.Source, req.Target)},
		{Role: "user", Content: trimmed},
	}

	out, err := t.client.ChatMessages(ctx, messages, llm.ChatParams{Temperature: t.temperature})
	if err != nil {
		return "", fmt.Errorf("llm translation failed: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("llm returned an empty translation")
	}

	lead := req.Text[:strings.Index(req.Text, trimmed)]
	trail := req.Text[len(lead)+len(trimmed):]
	return lead + out + trail, nil
}

func systemPrompt(source, target string) string {
	from := "from " + LanguageName(source)
	if source == "" || strings.EqualFold(source, AutoDetect) {
		from = "from its detected language"
	}
	return fmt.Sprintf(systemPromptTemplate, from, LanguageName(target))
}
