package assets

import (
	"context"
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// Mode selects the rewrite strategy.
type Mode int

const (
	// ModeReference replaces matched URLs with local file paths.
	ModeReference Mode = iota
	// ModeInline replaces the enclosing script/link tag with the file
	// contents embedded in an inline <script>/<style> block.
	ModeInline
)

// ResidualReferenceError reports absolute non-loopback URLs left in a
// document after rewriting. It is the only fatal condition in this package.
type ResidualReferenceError struct {
	URLs []string
}

func (e *ResidualReferenceError) Error() string {
	return fmt.Sprintf("document still references %d external URL(s): %s",
		len(e.URLs), strings.Join(e.URLs, ", "))
}

// Rewriter rewrites external resource references in rendered HTML.
type Rewriter struct {
	logger zerolog.Logger

	rewritten metric.Int64Counter
	inlined   metric.Int64Counter
	skipped   metric.Int64Counter
}

// NewRewriter creates a Rewriter. Metrics use the global OTel meter and are
// no-ops when no provider is configured.
func NewRewriter(logger zerolog.Logger) (*Rewriter, error) {
	rw := &Rewriter{logger: logger}

	m := meter()
	var err error
	rw.rewritten, err = m.Int64Counter("assets.rewritten",
		metric.WithDescription("External references replaced with local paths"))
	if err != nil {
		return nil, fmt.Errorf("creating rewritten counter: %w", err)
	}
	rw.inlined, err = m.Int64Counter("assets.inlined",
		metric.WithDescription("External references replaced with inline content"))
	if err != nil {
		return nil, fmt.Errorf("creating inlined counter: %w", err)
	}
	rw.skipped, err = m.Int64Counter("assets.skipped",
		metric.WithDescription("Matched references left untouched"))
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}
	return rw, nil
}

// Rewrite replaces known external resource references in html according to
// mode. The tile-server pattern is always replaced from tilesFallback (when
// non-empty) regardless of mode. Resources whose local file is missing or
// unreadable are skipped so a partially-offline document is still produced.
func (rw *Rewriter) Rewrite(html string, mode Mode, table Resolution, tilesFallback string) string {
	for _, p := range Patterns {
		switch {
		case p.Kind == KindTiles:
			if tilesFallback != "" {
				html = rw.replaceLiteral(html, p, tilesFallback)
			}
		case mode == ModeReference:
			local, ok := table[p.Key]
			if !ok || local == "" {
				continue
			}
			html = rw.replaceLiteral(html, p, local)
		case mode == ModeInline:
			local, ok := table[p.Key]
			if !ok || local == "" {
				continue
			}
			html = rw.inlineResource(html, p, local)
		}
	}
	return html
}

// replaceLiteral substitutes every match of the pattern with the replacement
// text verbatim.
func (rw *Rewriter) replaceLiteral(html string, p Pattern, replacement string) string {
	n := len(p.Re.FindAllStringIndex(html, -1))
	if n == 0 {
		return html
	}
	rw.rewritten.Add(context.Background(), int64(n))
	rw.logger.Debug().Str("key", p.Key).Int("matches", n).Msg("Rewrote external reference")
	return p.Re.ReplaceAllLiteralString(html, replacement)
}

// inlineResource replaces the tag enclosing each match with an inline block
// holding the local file's content. Matches are processed last-first so that
// replacements, whose lengths differ from the matched spans, cannot shift the
// offsets of matches still pending. A match whose enclosing tag cannot be
// located is left unmodified.
func (rw *Rewriter) inlineResource(html string, p Pattern, localPath string) string {
	content, err := os.ReadFile(localPath)
	if err != nil {
		rw.skipped.Add(context.Background(), 1)
		rw.logger.Debug().Err(err).Str("key", p.Key).Str("path", localPath).
			Msg("Asset file unreadable, leaving reference")
		return html
	}

	matches := p.Re.FindAllStringIndex(html, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		var replaced bool
		switch p.Kind {
		case KindScript:
			html, replaced = spliceTag(html, start, end,
				"<script", "</script>", "<script>\n"+string(content)+"\n</script>")
		case KindStyle:
			html, replaced = spliceTag(html, start, end,
				"<link", ">", "<style>\n"+string(content)+"\n</style>")
		}
		if replaced {
			rw.inlined.Add(context.Background(), 1)
		} else {
			rw.skipped.Add(context.Background(), 1)
			rw.logger.Debug().Str("key", p.Key).Msg("Tag boundary not found, leaving reference")
		}
	}
	return html
}

// spliceTag replaces the tag span enclosing html[start:end] with inline. The
// span runs from the nearest open token before the match to the first close
// token after it. Returns the input unchanged when either boundary is absent.
func spliceTag(html string, start, end int, openTok, closeTok, inline string) (string, bool) {
	tagStart := strings.LastIndex(html[:start], openTok)
	if tagStart == -1 {
		return html, false
	}
	rel := strings.Index(html[end:], closeTok)
	if rel == -1 {
		return html, false
	}
	tagEnd := end + rel + len(closeTok)
	return html[:tagStart] + inline + html[tagEnd:], true
}

// absoluteURLRe matches absolute-URL-shaped literals during verification.
var absoluteURLRe = regexp.MustCompile(`https?://[^\s"'<>\\]+`)


// VerifyOffline scans html for any remaining absolute URL that is not a
// loopback address and returns a ResidualReferenceError listing all of them.
// The caller can extend its resolution table from the list and retry.
func VerifyOffline(html string) error {
	var offending []string
	seen := make(map[string]bool)
	for _, url := range absoluteURLRe.FindAllString(html, -1) {
		if isLoopback(url) || seen[url] {
			continue
		}
		seen[url] = true
		offending = append(offending, url)
	}
	if len(offending) > 0 {
		return &ResidualReferenceError{URLs: offending}
	}
	return nil
}

// isLoopback reports whether the URL's host is a loopback address. The host
// is matched exactly so names like localhost.example.com or 127.evil.net do
// not slip through.
func isLoopback(url string) bool {
	var rest string
	switch {
	case strings.HasPrefix(url, "http://"):
		rest = url[len("http://"):]
	case strings.HasPrefix(url, "https://"):
		rest = url[len("https://"):]
	default:
		return false
	}
	host := rest
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		host = rest[:i]
	}
	if strings.HasPrefix(host, "[") {
		end := strings.Index(host, "]")
		if end < 0 {
			return false
		}
		host = host[:end+1]
	} else if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	if host == "localhost" || host == "[::1]" {
		return true
	}
	if strings.HasPrefix(host, "127.") {
		return net.ParseIP(host) != nil
	}
	return false
}
