package bidxd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"bibleidx/internal/core/indexer"
	"bibleidx/internal/core/search"
	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error (%d): %s", e.Code, e.Message) }

// Client is a synchronous JSON-RPC client. Calls are serialized.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	nextID int64
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

func (c *Client) call(method string, params any, out any) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("client is nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req := Request{JSONRPC: "2.0", Method: method, ID: json.RawMessage(fmt.Sprintf("%d", c.nextID))}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		req.Params = b
	}

	if err := writeLine(c.w, req); err != nil {
		return err
	}
	if err := c.w.Flush(); err != nil {
		return err
	}

	line, err := readLine(c.r)
	if err != nil {
		return err
	}
	var resp rawResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

func (c *Client) Ping() error {
	var out string
	if err := c.call("ping", nil, &out); err != nil {
		return err
	}
	if out != "pong" {
		return fmt.Errorf("unexpected ping result: %q", out)
	}
	return nil
}

func (c *Client) Version() (string, error) {
	var out string
	err := c.call("version", nil, &out)
	return out, err
}

func (c *Client) Books(group string) ([]string, error) {
	var out []string
	err := c.call("books", BooksParams{Group: group}, &out)
	return out, err
}

func (c *Client) Chapter(book string, chapter int) (ChapterResult, error) {
	var out ChapterResult
	err := c.call("chapter", ChapterParams{Book: book, Chapter: chapter}, &out)
	return out, err
}

func (c *Client) Search(p SearchParams) ([]search.Result, error) {
	var out []search.Result
	err := c.call("search", p, &out)
	return out, err
}

func (c *Client) AnnotationsChapter(book string, chapter int) (map[string]store.Record, error) {
	var out map[string]store.Record
	err := c.call("annotations.chapter", ChapterParams{Book: book, Chapter: chapter}, &out)
	return out, err
}

// Annotation returns nil when the verse carries no annotation.
func (c *Client) Annotation(reference string) (*store.Record, error) {
	var out *store.Record
	err := c.call("annotations.get", SelectionParams{Reference: reference}, &out)
	return out, err
}

func (c *Client) SetHighlight(reference string, color verse.HighlightColor) error {
	p := HighlightParams{SelectionParams: SelectionParams{Reference: reference}, Color: string(color)}
	if color == verse.NoHighlight {
		p.Color = "none"
	}
	return c.call("highlight.set", p, nil)
}

func (c *Client) ToggleBookmark(reference string) error {
	return c.call("bookmark.toggle", SelectionParams{Reference: reference}, nil)
}

func (c *Client) RemoveBookmark(reference string) error {
	return c.call("bookmark.remove", SelectionParams{Reference: reference}, nil)
}

func (c *Client) SetNote(reference string, text string) error {
	return c.call("note.set", NoteParams{Reference: reference, Text: text}, nil)
}

func (c *Client) ClearNote(reference string) error {
	return c.call("note.clear", SelectionParams{Reference: reference}, nil)
}

func (c *Client) Bookmarks() ([]store.Record, error) {
	var out []store.Record
	err := c.call("bookmarks.list", ListParams{}, &out)
	return out, err
}

func (c *Client) Notes() ([]store.Record, error) {
	var out []store.Record
	err := c.call("notes.list", ListParams{}, &out)
	return out, err
}

func (c *Client) FormatReference(addrs []verse.Address) (string, error) {
	var out string
	err := c.call("reference.format", FormatParams{Addresses: addrs}, &out)
	return out, err
}

func (c *Client) IndexBuild(p IndexBuildParams) (indexer.Stats, error) {
	var out indexer.Stats
	err := c.call("index.build", p, &out)
	return out, err
}

func (c *Client) Presentations() ([]store.Presentation, error) {
	var out []store.Presentation
	err := c.call("presentation.list", nil, &out)
	return out, err
}

func (c *Client) CreatePresentation(name string) (store.Presentation, error) {
	var out store.Presentation
	err := c.call("presentation.create", PresentationCreateParams{Name: name}, &out)
	return out, err
}

func (c *Client) DeletePresentation(id string) error {
	return c.call("presentation.delete", PresentationParams{ID: id}, nil)
}

func (c *Client) Slides(id string) ([]store.Slide, error) {
	var out []store.Slide
	err := c.call("presentation.slides", PresentationParams{ID: id}, &out)
	return out, err
}

func (c *Client) AddSlides(id string, reference string) ([]store.Slide, error) {
	var out []store.Slide
	err := c.call("presentation.add_slides", AddSlidesParams{ID: id, Reference: reference}, &out)
	return out, err
}

func (c *Client) DeleteSlide(slideID string) error {
	return c.call("presentation.delete_slide", DeleteSlideParams{SlideID: slideID}, nil)
}

func (c *Client) MoveSlide(id string, from, to int) ([]store.Slide, error) {
	var out []store.Slide
	err := c.call("presentation.move_slide", MoveSlideParams{ID: id, From: from, To: to}, &out)
	return out, err
}

func (c *Client) SeedPresentations() (bool, error) {
	var out bool
	err := c.call("presentation.seed", nil, &out)
	return out, err
}
