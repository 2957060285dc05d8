package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing index document, book document or book.
	ErrNotFound = errors.New("not found")
	// ErrDecode reports a document that is not valid corpus JSON.
	ErrDecode = errors.New("decode failed")
	// ErrChapterNotFound reports a chapter number absent from a loaded book.
	ErrChapterNotFound = errors.New("chapter not found")
)

// NotFoundError names the document or book that could not be found.
type NotFoundError struct {
	Resource string // "document", "book"
	Name     string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Is lets errors.Is match ErrNotFound even when Err holds the source error.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DecodeError wraps a JSON failure for one document.
type DecodeError struct {
	Document string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Document, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ChapterError reports a chapter missing from a book.
type ChapterError struct {
	Book    string
	Chapter int
}

func (e *ChapterError) Error() string {
	return fmt.Sprintf("chapter %d not found in %s", e.Chapter, e.Book)
}

func (e *ChapterError) Unwrap() error { return ErrChapterNotFound }
