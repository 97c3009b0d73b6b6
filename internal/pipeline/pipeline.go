// Package pipeline implements C8, the orchestrator that turns a URL into a
// Result by composing the Fetcher, MimeDispatcher, Extractor, and
// PostProcessor (spec §4.4), modeled on the teacher's internal/app.App
// request lifecycle.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/bdunogier/graby/internal/charset"
	"github.com/bdunogier/graby/internal/extract"
	"github.com/bdunogier/graby/internal/fetch"
	"github.com/bdunogier/graby/internal/grabyconfig"
	"github.com/bdunogier/graby/internal/mimedispatch"
	"github.com/bdunogier/graby/internal/postprocess"
	"github.com/bdunogier/graby/internal/sanitize"
)

// Result is the record returned to callers (spec §6 "Result record").
type Result struct {
	Status      int
	HTML        string
	Title       string
	Language    string
	URL         string
	ContentType string
	OpenGraph   map[string]string
	Summary     string
}

// Pipeline wires the Fetcher, MimeDispatcher, Extractor, sanitizer, and
// charset converter into the orchestration described by spec §4.4.
type Pipeline struct {
	Config    grabyconfig.Config
	Fetcher   *fetch.Client
	MimeTable *mimedispatch.Dispatcher
	Extractor *extract.Extractor
	Sanitizer *sanitize.Filter
}

// New builds a Pipeline from its collaborators.
func New(cfg grabyconfig.Config, fetcher *fetch.Client, mimeTable *mimedispatch.Dispatcher, extractor *extract.Extractor) *Pipeline {
	return &Pipeline{
		Config:    cfg,
		Fetcher:   fetcher,
		MimeTable: mimeTable,
		Extractor: extractor,
		Sanitizer: sanitize.New(),
	}
}

var wikipediaSuffix = ".wikipedia.org"

// Process runs the full algorithm of spec §4.4 for rawURL.
func (p *Pipeline) Process(ctx context.Context, rawURL string) (Result, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Result{}, err
	}
	if !URLAllowed(normalized, p.Config.AllowedURLs, p.Config.BlockedURLs) {
		return Result{}, fmt.Errorf("%w: %s", ErrPolicyBlocked, normalized)
	}

	resp, err := p.Fetcher.Fetch(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if !URLAllowed(resp.EffectiveURL, p.Config.AllowedURLs, p.Config.BlockedURLs) {
		return Result{}, fmt.Errorf("%w: %s", ErrPolicyBlocked, resp.EffectiveURL)
	}

	contentType := resp.Headers.Get("Content-Type")
	if stub, handled, err := p.dispatchMime(contentType, resp); handled {
		return stub, err
	}

	body := charset.ToUTF8(resp.Body, contentType)
	effectiveURL := resp.EffectiveURL

	promoted := false
	if p.Config.SinglePage {
		if candidate, ok, serr := p.Extractor.DetectSinglePageURL(body, effectiveURL); serr == nil && ok {
			if resolved, ok := resolveAgainst(effectiveURL, candidate); ok && resolved != effectiveURL {
				singleResp, ferr := p.Fetcher.Fetch(ctx, resolved)
				if ferr == nil {
					singleCT := singleResp.Headers.Get("Content-Type")
					if info := p.MimeTable.Dispatch(singleCT); !info.Matched {
						body = charset.ToUTF8(singleResp.Body, singleCT)
						effectiveURL = singleResp.EffectiveURL
						contentType = singleCT
						promoted = true
					}
				}
			}
		}
	}

	res, err := p.Extractor.Process(body, effectiveURL)
	if err != nil {
		log.Warn().Err(err).Str("url", effectiveURL).Msg("extraction error")
	}
	if !res.OK {
		return Result{Status: resp.Status, HTML: p.Config.ErrorMessage, URL: effectiveURL, ContentType: contentType}, nil
	}

	visited := map[string]bool{effectiveURL: true}
	if !promoted && p.Config.MultiPage {
		p.appendMultiPage(ctx, &res, effectiveURL, visited)
	}

	og := ExtractOpenGraphFromBody(body)

	html, err := postprocess.Process(postprocess.Options{
		ContentBlock:        res.ContentBlock,
		EffectiveURL:        effectiveURL,
		RewriteRelativeURLs: p.Config.RewriteRelativeURLs,
		ContentLinks:        postprocess.ContentLinks(p.Config.ContentLinks),
		SkipFootnotes:       isWikipediaHost(effectiveURL),
	})
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: postprocess: %w", err)
	}
	if p.Config.XSSFilter {
		html = p.Sanitizer.Sanitize(html)
	}

	return Result{
		Status:      resp.Status,
		HTML:        html,
		Title:       res.Title,
		Language:    res.Language,
		URL:         effectiveURL,
		ContentType: contentType,
		OpenGraph:   og,
		Summary:     postprocess.Summary(html, p.Config.SummaryWords),
	}, nil
}

// dispatchMime applies the MimeDispatcher to the fetched response and, when
// it matches, produces the "link"/"exclude" result spec §4.4 describes. The
// bool return reports whether the caller should stop processing.
func (p *Pipeline) dispatchMime(contentType string, resp fetch.Response) (Result, bool, error) {
	info := p.MimeTable.Dispatch(contentType)
	if !info.Matched {
		return Result{}, false, nil
	}
	if info.Action == mimedispatch.ActionExclude {
		return Result{}, true, fmt.Errorf("%w: mime %s", ErrPolicyBlocked, info.Mime)
	}
	return Result{
		Status:      resp.Status,
		HTML:        linkStub(info, resp),
		URL:         resp.EffectiveURL,
		ContentType: contentType,
	}, true, nil
}

// linkStub synthesizes the HTML for a "link" mime dispatch decision (spec
// §4.4 "MIME dispatch"). PDF text extraction runs against the body already
// in hand rather than re-fetching, resolving the spec's open question about
// double-fetching the PDF.
func linkStub(info mimedispatch.Info, resp fetch.Response) string {
	switch info.Name {
	case "image":
		return fmt.Sprintf(`<img src=%q>`, resp.EffectiveURL)
	case "pdf":
		text := mimedispatch.ExtractPDFText(resp.Body)
		return fmt.Sprintf(`<a href=%q>Download PDF</a><p>%s</p>`, resp.EffectiveURL, html2Escape(text))
	case "txt":
		return fmt.Sprintf(`<pre>%s</pre>`, html2Escape(string(resp.Body)))
	default:
		return fmt.Sprintf(`<a href=%q>Download %s</a>`, resp.EffectiveURL, info.Name)
	}
}

func html2Escape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}

// appendMultiPage follows Extractor.NextPageURL, appending every additional
// page's content block into res.ContentBlock (spec §4.4 "Multi-page
// composition"). Any failure abandons the loop with a placeholder paragraph
// rather than discarding the already-extracted first page.
func (p *Pipeline) appendMultiPage(ctx context.Context, res *extract.Result, currentURL string, visited map[string]bool) {
	next := res.NextPageURL
	for next != "" {
		resolved, ok := resolveAgainst(currentURL, next)
		if !ok {
			abandon(res)
			return
		}
		if visited[resolved] {
			abandon(res)
			return
		}

		resp, err := p.Fetcher.Fetch(ctx, resolved)
		if err != nil {
			abandon(res)
			return
		}
		ct := resp.Headers.Get("Content-Type")
		if info := p.MimeTable.Dispatch(ct); info.Matched {
			abandon(res)
			return
		}

		body := charset.ToUTF8(resp.Body, ct)
		page, err := p.Extractor.Process(body, resp.EffectiveURL)
		if err != nil || !page.OK {
			abandon(res)
			return
		}

		importAppend(res.ContentBlock, page.ContentBlock)
		visited[resolved] = true
		currentURL = resp.EffectiveURL
		next = page.NextPageURL
	}
}

// abandon appends a placeholder paragraph noting truncation (spec §4.4 step
// 1 "abandon multi-page, record a placeholder paragraph").
func abandon(res *extract.Result) {
	if res.ContentBlock == nil {
		return
	}
	p := &html.Node{Type: html.ElementNode, Data: "p"}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: "[content truncated: remaining pages could not be retrieved]"})
	res.ContentBlock.AppendChild(p)
}

// importAppend moves every child of src under dst, adopting it into dst's
// document (spec §9 "DOM mutation invariants").
func importAppend(dst, src *html.Node) {
	if dst == nil || src == nil {
		return
	}
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

func resolveAgainst(base, ref string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	refURL, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(refURL).String(), true
}

func isWikipediaHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), wikipediaSuffix)
}

// ExtractOpenGraphFromBody parses rawHTML and extracts its OpenGraph
// metadata (spec §4.4 "OpenGraph" runs against the originally fetched HTML,
// before any postprocessing).
func ExtractOpenGraphFromBody(rawHTML []byte) map[string]string {
	doc, err := html.Parse(strings.NewReader(string(rawHTML)))
	if err != nil {
		return map[string]string{}
	}
	return postprocess.ExtractOpenGraph(doc)
}
