package bidxd

import (
	"encoding/json"

	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

type BooksParams struct {
	Group string `json:"group,omitempty"`
}

type ChapterParams struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

type ChapterResult struct {
	Book        string                  `json:"book"`
	Chapter     int                     `json:"chapter"`
	Verses      []corpus.Verse          `json:"verses"`
	Annotations map[string]store.Record `json:"annotations"`
	Previous    *corpus.Location        `json:"previous,omitempty"`
	Next        *corpus.Location        `json:"next,omitempty"`
}

type SearchParams struct {
	Query string `json:"query"`
	Group string `json:"group,omitempty"`
	Mode  string `json:"mode,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// SelectionParams names verses either by a reference ("John 3:16-18") or
// by explicit addresses; both may be given.
type SelectionParams struct {
	Reference string          `json:"reference,omitempty"`
	Addresses []verse.Address `json:"addresses,omitempty"`
}

type HighlightParams struct {
	SelectionParams
	Color string `json:"color"`
}

type NoteParams struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

type ListParams struct {
	ByBook bool `json:"by_book,omitempty"`
}

type FormatParams struct {
	Addresses []verse.Address `json:"addresses"`
}

type IndexBuildParams struct {
	Force   bool `json:"force,omitempty"`
	Workers int  `json:"workers,omitempty"`
}

type PresentationParams struct {
	ID string `json:"id"`
}

type PresentationCreateParams struct {
	Name string `json:"name"`
}

type AddSlidesParams struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

type DeleteSlideParams struct {
	SlideID string `json:"slide_id"`
}

type MoveSlideParams struct {
	ID   string `json:"id"`
	From int    `json:"from"`
	To   int    `json:"to"`
}
