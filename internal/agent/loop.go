package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/guard"
	"NewsDigest/internal/ports"
)

const defaultMaxTokens = 4096

const systemPrompt = `You are a news digest assistant. Use the tools to fetch the given RSS feeds,
deduplicate the articles, rank them by recency, and read the most promising
ones. Then produce the final digest as a single JSON object with exactly these
fields: "subject" (string), "themes" (array of exactly 3 strings), "items"
(array of 5 to 10 objects with "title", "url", "bullets" of 1 to 5 strings,
and "why_it_matters"), and "html_body" (a complete HTML email body). Reply
with only the JSON object in your final message.`

// ControllerDeps collects everything a digest run needs.
type ControllerDeps struct {
	LLM       ports.ToolCaller
	Tools     *Toolbox
	Limits    guard.Limits
	MaxTokens int
	Recipient string
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Controller drives the bounded tool-calling loop. All per-run state lives in
// the Run call, so one controller serves any number of sequential runs.
type Controller struct {
	deps ControllerDeps
}

func NewController(deps ControllerDeps) (*Controller, error) {
	if deps.LLM == nil {
		return nil, domain.E(domain.KindConfig, "agent controller needs a tool-calling model client")
	}
	if deps.Tools == nil {
		return nil, domain.E(domain.KindConfig, "agent controller needs a toolbox")
	}
	if err := deps.Limits.Validate(); err != nil {
		return nil, err
	}
	if deps.MaxTokens <= 0 {
		deps.MaxTokens = defaultMaxTokens
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Controller{deps: deps}, nil
}

// Run executes one digest conversation over the given feeds and returns the
// validated output. It stops with an exhausted error when the tool-call cap
// or wall clock runs out before the model finishes.
func (c *Controller) Run(ctx context.Context, feedURLs []string) (digest.Output, error) {
	if len(feedURLs) == 0 {
		return digest.Output{}, domain.E(domain.KindConfig, "no feeds to digest")
	}

	runID := uuid.NewString()
	mon := guard.NewMonitorWithClock(c.deps.Limits, c.deps.Clock)
	log := c.logger().With("run_id", runID)

	messages := []domain.Message{{
		Role:    domain.RoleUser,
		Content: []domain.ContentBlock{domain.TextBlock(c.userPrompt(feedURLs))},
	}}

	log.Info("agent run started", "feeds", len(feedURLs))

	for {
		if err := mon.CheckWallClock(); err != nil {
			logUsage(log, "agent run hit wall clock", mon)
			return digest.Output{}, err
		}
		if err := mon.CheckToolCalls(); err != nil {
			logUsage(log, "agent run hit tool-call cap", mon)
			return digest.Output{}, err
		}

		resp, err := c.deps.LLM.CreateMessage(ctx, domain.MessageRequest{
			System:    systemPrompt,
			Messages:  messages,
			Tools:     c.deps.Tools.Schemas(),
			MaxTokens: c.deps.MaxTokens,
		})
		if err != nil {
			return digest.Output{}, err
		}

		switch resp.StopReason {
		case domain.StopEndTurn:
			out, err := c.finish(resp)
			if err != nil {
				return digest.Output{}, err
			}
			toolCalls, fetches, elapsed := mon.Usage()
			log.Info("agent run finished",
				"tool_calls", toolCalls, "fetches", fetches, "elapsed", elapsed, "items", len(out.Items))
			return out, nil

		case domain.StopToolUse:
			messages = append(messages, domain.Message{Role: domain.RoleAssistant, Content: resp.Content})
			results := c.runTools(ctx, resp.Content, mon, log)
			if len(results) == 0 {
				return digest.Output{}, domain.E(domain.KindParse, "model stopped for tool use but sent no tool calls")
			}
			messages = append(messages, domain.Message{Role: domain.RoleUser, Content: results})

		case domain.StopMaxTokens:
			return digest.Output{}, domain.E(domain.KindExhausted, "model response truncated at max_tokens")

		default:
			return digest.Output{}, domain.E(domain.KindParse, "unexpected stop reason %q", resp.StopReason)
		}
	}
}

func (c *Controller) runTools(ctx context.Context, blocks []domain.ContentBlock, mon *guard.Monitor, log *slog.Logger) []domain.ContentBlock {
	var results []domain.ContentBlock
	for _, block := range blocks {
		if block.Type != domain.BlockToolUse {
			continue
		}
		mon.RecordToolCall()

		payload, isError := c.deps.Tools.Dispatch(ctx, block.Name, block.Input, mon)
		log.Debug("tool call handled", "tool", block.Name, "is_error", isError)
		results = append(results, domain.ToolResultBlock(block.ID, payload, isError))
	}
	return results
}

func (c *Controller) finish(resp domain.MessageResponse) (digest.Output, error) {
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == domain.BlockText {
			text.WriteString(block.Text)
		}
	}

	out, err := digest.ExtractJSON(text.String())
	if err != nil {
		return digest.Output{}, err
	}
	if err := digest.Validate(out, digest.AgentBounds()); err != nil {
		return digest.Output{}, err
	}
	return out, nil
}

func (c *Controller) userPrompt(feedURLs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.", c.deps.Clock().Format("Monday, January 2, 2006"))
	if c.deps.Recipient != "" {
		fmt.Fprintf(&b, " The digest goes to %s.", c.deps.Recipient)
	}
	b.WriteString(" Build today's digest from these feeds:\n")
	for _, u := range feedURLs {
		fmt.Fprintf(&b, "- %s\n", u)
	}
	return b.String()
}

func logUsage(log *slog.Logger, msg string, mon *guard.Monitor) {
	toolCalls, fetches, elapsed := mon.Usage()
	log.Warn(msg, "tool_calls", toolCalls, "fetches", fetches, "elapsed", elapsed)
}

func (c *Controller) logger() *slog.Logger {
	if c.deps.Logger != nil {
		return c.deps.Logger
	}
	return slog.Default()
}
