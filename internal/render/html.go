package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"NewsDigest/internal/digest"
)

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: -apple-system, Segoe UI, Helvetica, Arial, sans-serif; background: #f4f5f7; margin: 0; padding: 24px; color: #1f2933; }
  .wrap { max-width: 640px; margin: 0 auto; }
  h1 { font-size: 22px; margin-bottom: 4px; }
  .date { color: #616e7c; font-size: 13px; margin-bottom: 16px; }
  .themes { margin-bottom: 20px; }
  .theme { display: inline-block; background: #e4e7eb; border-radius: 12px; padding: 4px 12px; margin: 0 6px 6px 0; font-size: 13px; }
  .card { background: #ffffff; border-radius: 8px; padding: 16px 20px; margin-bottom: 14px; box-shadow: 0 1px 2px rgba(0,0,0,0.06); }
  .card h2 { font-size: 16px; margin: 0 0 8px; }
  .card h2 a { color: #1f2933; text-decoration: none; }
  .card ul { margin: 0 0 8px; padding-left: 20px; }
  .card li { margin-bottom: 4px; font-size: 14px; }
  .why { font-size: 13px; color: #616e7c; font-style: italic; }
</style>
</head>
<body>
<div class="wrap">
  <h1>{{.Subject}}</h1>
  <div class="date">{{.Date}}</div>
  <div class="themes">
    {{range .Themes}}<span class="theme">{{.}}</span>{{end}}
  </div>
  {{range $i, $item := .Items}}
  <div class="card">
    <h2>{{inc $i}}. <a href="{{$item.URL}}">{{$item.Title}}</a></h2>
    <ul>
      {{range $item.Bullets}}<li>{{.}}</li>{{end}}
    </ul>
    <p class="why">{{$item.WhyItMatters}}</p>
  </div>
  {{end}}
</div>
</body>
</html>`))

// HTML renders a validated digest into an email-ready HTML document.
func HTML(out digest.Output, now time.Time) (string, error) {
	data := struct {
		Subject string
		Date    string
		Themes  []string
		Items   []digest.Item
	}{
		Subject: out.Subject,
		Date:    now.Format("Monday, January 2, 2006"),
		Themes:  out.Themes,
		Items:   out.Items,
	}

	var b strings.Builder
	if err := digestTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render digest html: %w", err)
	}
	return b.String(), nil
}

// PlainText renders a digest as a plain-text email body.
func PlainText(out digest.Output, now time.Time) string {
	var b strings.Builder
	b.WriteString(out.Subject)
	b.WriteString("\n")
	b.WriteString(now.Format("Monday, January 2, 2006"))
	b.WriteString("\n\n")

	if len(out.Themes) > 0 {
		b.WriteString("Themes: ")
		b.WriteString(strings.Join(out.Themes, ", "))
		b.WriteString("\n\n")
	}

	for i, item := range out.Items {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, item.Title, item.URL)
		for _, bullet := range item.Bullets {
			fmt.Fprintf(&b, "   - %s\n", bullet)
		}
		if item.WhyItMatters != "" {
			fmt.Fprintf(&b, "   Why it matters: %s\n", item.WhyItMatters)
		}
		b.WriteString("\n")
	}
	return b.String()
}
