package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient talks to the Anthropic messages API. It serves both the
// plain completion port and the tool-calling port.
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var (
	_ ports.Completer  = (*AnthropicClient)(nil)
	_ ports.ToolCaller = (*AnthropicClient)(nil)
)

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type anthropicRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	System    string              `json:"system,omitempty"`
	Messages  []anthropicMessage  `json:"messages"`
	Tools     []domain.ToolSchema `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type anthropicResponse struct {
	StopReason string           `json:"stop_reason"`
	Content    []anthropicBlock `json:"content"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs a single system+user exchange and returns the text output.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	req := domain.MessageRequest{
		System:    system,
		Messages:  []domain.Message{{Role: domain.RoleUser, Content: []domain.ContentBlock{domain.TextBlock(user)}}},
		MaxTokens: maxTokens,
	}
	resp, err := c.CreateMessage(ctx, req)
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == domain.BlockText {
			text += block.Text
		}
	}
	if resp.StopReason == domain.StopMaxTokens {
		return "", domain.E(domain.KindExhausted, "anthropic response truncated at max_tokens")
	}
	return text, nil
}

// CreateMessage sends a full conversation turn, optionally with tools.
func (c *AnthropicClient) CreateMessage(ctx context.Context, req domain.MessageRequest) (domain.MessageResponse, error) {
	wire := anthropicRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Tools:     req.Tools,
		Messages:  make([]anthropicMessage, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		wire.Messages = append(wire.Messages, anthropicMessage{
			Role:    string(msg.Role),
			Content: toWireBlocks(msg.Content),
		})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return domain.MessageResponse{}, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return domain.MessageResponse{}, fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.MessageResponse{}, domain.E(domain.KindTransient, "anthropic request failed: %v", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return domain.MessageResponse{}, domain.E(domain.KindTransient, "read anthropic response: %v", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.MessageResponse{}, fmt.Errorf("decode anthropic response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		kind := domain.KindTransient
		if httpResp.StatusCode >= 400 && httpResp.StatusCode < 500 && httpResp.StatusCode != http.StatusTooManyRequests {
			kind = domain.KindConfig
		}
		return domain.MessageResponse{}, domain.E(kind, "anthropic API status %d: %s", httpResp.StatusCode, msg)
	}

	return domain.MessageResponse{
		StopReason: mapStopReason(parsed.StopReason),
		Content:    fromWireBlocks(parsed.Content),
	}, nil
}

func toWireBlocks(blocks []domain.ContentBlock) []anthropicBlock {
	out := make([]anthropicBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, anthropicBlock{
			Type:      string(b.Type),
			Text:      b.Text,
			ID:        b.ID,
			Name:      b.Name,
			Input:     b.Input,
			ToolUseID: b.ToolUseID,
			Content:   b.Content,
			IsError:   b.IsError,
		})
	}
	return out
}

func fromWireBlocks(blocks []anthropicBlock) []domain.ContentBlock {
	out := make([]domain.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, domain.ContentBlock{
			Type:  domain.BlockType(b.Type),
			Text:  b.Text,
			ID:    b.ID,
			Name:  b.Name,
			Input: b.Input,
		})
	}
	return out
}

// mapStopReason passes unknown reasons (refusal, pause_turn, future
// additions) through unchanged so callers treat them as fatal instead of
// mistaking them for a final answer.
func mapStopReason(raw string) domain.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return domain.StopEndTurn
	case "tool_use":
		return domain.StopToolUse
	case "max_tokens":
		return domain.StopMaxTokens
	default:
		return domain.StopReason(raw)
	}
}
