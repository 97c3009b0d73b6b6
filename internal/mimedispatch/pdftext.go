package mimedispatch

import (
	"bytes"
	"compress/zlib"
	"io"
	"regexp"
	"strings"
)

// ExtractPDFText makes a best-effort attempt to pull visible text out of a
// PDF byte stream without a PDF parsing library (none is available anywhere
// in the retrieval pack; see DESIGN.md). It inflates FlateDecode streams and
// scrapes literal-string operands of the Tj/TJ text-showing operators. This
// is deliberately not a full PDF parser: it recovers simple, linearized text
// content and silently yields less on structurally complex documents.
func ExtractPDFText(body []byte) string {
	var out strings.Builder
	for _, stream := range streamBlocks(body) {
		inflated, err := inflate(stream)
		if err != nil {
			inflated = stream
		}
		out.WriteString(scrapeShowText(inflated))
		out.WriteString(" ")
	}
	return strings.TrimSpace(collapseSpaces(out.String()))
}

var streamRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)\r?\nendstream`)

func streamBlocks(body []byte) [][]byte {
	matches := streamRe.FindAllSubmatch(body, -1)
	out := make([][]byte, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

var showTextRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj|\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)

func scrapeShowText(stream []byte) string {
	var out strings.Builder
	for _, m := range showTextRe.FindAllSubmatch(stream, -1) {
		switch {
		case len(m[1]) > 0:
			out.Write(unescapePDFString(m[1]))
			out.WriteString(" ")
		case len(m[2]) > 0:
			for _, lit := range regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`).FindAllSubmatch(m[2], -1) {
				out.Write(unescapePDFString(lit[1]))
				out.WriteString(" ")
			}
		}
	}
	return out.String()
}

func unescapePDFString(b []byte) []byte {
	s := string(b)
	replacer := strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\r`, "")
	return []byte(replacer.Replace(s))
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
