package ports

import (
	"context"

	"NewsDigest/internal/domain"
)

// FeedSource pulls entries from one RSS/Atom feed in document order.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) ([]domain.Article, error)
}

// Extractor retrieves best-effort readable body text for a URL. It never
// fails: unreachable or unextractable pages yield ExtractedOK=false.
type Extractor interface {
	Extract(ctx context.Context, url string) domain.ExtractResult
}

// Completer makes a single plain-text LLM call.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// ToolCaller makes a tool-capable LLM call and returns the structured
// response the agent loop drives on.
type ToolCaller interface {
	CreateMessage(ctx context.Context, req domain.MessageRequest) (domain.MessageResponse, error)
}

// Mailer delivers the finished digest.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

// RunRepository persists digest-run summaries for history/audit.
type RunRepository interface {
	SaveRun(ctx context.Context, run domain.DigestRun) error
}
