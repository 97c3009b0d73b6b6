// Package charset converts fetched response bodies to UTF-8 before
// parsing (spec §4 "Out of scope (external collaborators)": charset
// conversion is a black-box dependency whose contract is used as-is).
package charset

import (
	"bytes"
	"io"

	"golang.org/x/net/html/charset"
)

// ToUTF8 detects the encoding of body (from the declared contentType and,
// failing that, content sniffing) and returns its UTF-8 transcoding. body
// is returned unchanged if detection or transcoding fails, since a wrong
// guess should never turn a fetch success into a pipeline failure.
func ToUTF8(body []byte, contentType string) []byte {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return body
	}
	return out
}
