package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// MistralGrader starts a conversation with a preconfigured Mistral agent.
// The agent carries the grading instructions; the prompt only supplies the task data.
type MistralGrader struct {
	http    *resty.Client
	agentID string
}

func NewMistralGrader(baseURL, apiKey, agentID string) *MistralGrader {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(Timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &MistralGrader{http: rc, agentID: agentID}
}

func (g *MistralGrader) Name() string {
	return "mistral"
}

type conversationRequest struct {
	AgentID string `json:"agent_id"`
	Inputs  string `json:"inputs"`
}

type conversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Outputs        []struct {
		Type    string          `json:"type"`
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"outputs"`
}

// contentChunk is one element of a structured message content.
type contentChunk struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (g *MistralGrader) Grade(ctx context.Context, prompt string) (string, error) {
	var out conversationResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(conversationRequest{AgentID: g.agentID, Inputs: prompt}).
		SetResult(&out).
		Post("/v1/conversations")
	if err != nil {
		return "", fmt.Errorf("mistral request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("mistral returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Outputs) == 0 {
		return "", errors.New("mistral returned no outputs")
	}
	return decodeContent(out.Outputs[0].Content)
}

// decodeContent accepts both a plain string and a list of text chunks.
func decodeContent(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var chunks []contentChunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return "", fmt.Errorf("unexpected mistral content: %w", err)
	}
	var sb strings.Builder
	for _, c := range chunks {
		if c.Type == "" || c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}
