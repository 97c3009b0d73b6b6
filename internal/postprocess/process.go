package postprocess

import "golang.org/x/net/html"

// ContentLinks enumerates the content_links policy (spec §6).
type ContentLinks string

const (
	ContentLinksPreserve  ContentLinks = "preserve"
	ContentLinksFootnotes ContentLinks = "footnotes"
	ContentLinksRemove    ContentLinks = "remove"
)

// Options configures Process (spec §4.4 "Post-extraction").
type Options struct {
	ContentBlock        *html.Node
	EffectiveURL        string
	RewriteRelativeURLs bool
	ContentLinks        ContentLinks
	// SkipFootnotes is true for hosts (Wikipedia) the pipeline exempts from
	// footnote conversion regardless of ContentLinks.
	SkipFootnotes bool
}

// Process runs the full post-extraction sequence over opts.ContentBlock and
// returns the serialized result (spec §4.4 "Post-extraction").
func Process(opts Options) (string, error) {
	root := opts.ContentBlock

	Clean(root)
	if opts.RewriteRelativeURLs {
		AbsolutizeURLs(root, opts.EffectiveURL)
	}
	if opts.ContentLinks == ContentLinksFootnotes && !opts.SkipFootnotes {
		ConvertLinksToFootnotes(root)
	}
	NormalizeWhitespace(root)
	DropEmptyTextNodes(root)
	CollapseNesting(root)
	StripEmptyParagraphs(root)
	if opts.ContentLinks == ContentLinksRemove {
		StripAllLinks(root)
	}

	return Serialize(root)
}
