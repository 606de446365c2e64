package domain

// Article is the core entity describing one feed entry within a run.
// It is created by the feed source, rewritten by deduplication (canonical
// URL), enriched by ranking and text extraction, and discarded when the
// run ends. Articles are never persisted.
type Article struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	PublishedTS int64   `json:"published_ts"`
	Source      string  `json:"source"`
	Text        string  `json:"text,omitempty"`
	Score       float64 `json:"-"`
}

// ExtractResult is the best-effort outcome of fetching readable article
// text. ExtractedOK is true iff Text is non-empty; extraction never fails
// from the caller's point of view.
type ExtractResult struct {
	URL         string `json:"url"`
	Text        string `json:"text"`
	ExtractedOK bool   `json:"extracted_ok"`
}

// PipelineMode selects which orchestration produces the digest.
type PipelineMode string

const (
	ModeAgent  PipelineMode = "agent"
	ModeSingle PipelineMode = "single"
	ModeFree   PipelineMode = "free"
)

// Email is an outbound message handed to the mailer.
type Email struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// DigestRun is the persisted summary of one completed digest delivery.
type DigestRun struct {
	ID        string
	Mode      PipelineMode
	Subject   string
	Themes    []string
	ItemCount int
	SentTo    string
}
