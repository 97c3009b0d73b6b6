// Package mimedispatch decides whether a fetched response should become a
// "link", an "exclude", or proceed to extraction, based on Content-Type
// (spec §4.5, C5).
package mimedispatch

import "regexp"

// Action is what the pipeline should do with a response whose MIME type
// matched a dispatch entry.
type Action string

const (
	ActionLink    Action = "link"
	ActionExclude Action = "exclude"
)

// Entry is one configured dispatch directive (spec §3, MimeInfo).
type Entry struct {
	Action Action
	Name   string
}

// Info describes the parsed Content-Type and, if matched, the dispatch
// decision for it.
type Info struct {
	Mime    string
	Type    string
	Subtype string
	Action  Action
	Name    string
	Matched bool
}

var mimeRe = regexp.MustCompile(`([-\w]+)/([-\w+]+)`)

// Dispatcher holds the configured content-type → {action, name} table
// (spec §6 content_type_exc).
type Dispatcher struct {
	Table map[string]Entry
}

// NewDefault returns the default dispatch table for PDF, image, audio,
// video, and plain-text side branches (spec §4.10 / SPEC_FULL.md §4.10).
func NewDefault() *Dispatcher {
	return &Dispatcher{Table: map[string]Entry{
		"application/pdf": {Action: ActionLink, Name: "pdf"},
		"image":           {Action: ActionLink, Name: "image"},
		"audio":           {Action: ActionLink, Name: "audio"},
		"video":           {Action: ActionLink, Name: "video"},
		"text/plain":      {Action: ActionLink, Name: "txt"},
	}}
}

// Dispatch parses contentType and looks it up, trying the full mime first
// and then the top-level type (spec §4.5 "Lookup order").
func (d *Dispatcher) Dispatch(contentType string) Info {
	m := mimeRe.FindStringSubmatch(contentType)
	if m == nil {
		return Info{}
	}
	info := Info{Mime: m[1] + "/" + m[2], Type: m[1], Subtype: m[2]}

	if d == nil || d.Table == nil {
		return info
	}
	if e, ok := d.Table[info.Mime]; ok {
		info.Action, info.Name, info.Matched = e.Action, e.Name, true
		return info
	}
	if e, ok := d.Table[info.Type]; ok {
		info.Action, info.Name, info.Matched = e.Action, e.Name, true
	}
	return info
}
