// Package session implements the editing-session consistency model: a
// dirty-tracked text buffer bound to at most one file (Session), and the
// binding that keeps the generation save target and the prompt editor
// buffer from silently diverging (Binding).
package session

import (
	"errors"

	"github.com/promptweave/promptweave-cli/pkg/files"
)

var (
	// ErrDeclined reports that the user chose to keep unsaved work. It is
	// a normal negative outcome, not a failure: the requested transition
	// is aborted and no state has been touched.
	ErrDeclined = errors.New("declined by user")

	// ErrNoBackingPath reports a save attempt on a buffer that has never
	// been bound to a file.
	ErrNoBackingPath = errors.New("no backing file")
)

// ConfirmFunc answers a discard-unsaved-changes question. A nil func
// always declines, which lets an asynchronous caller intercept ErrDeclined
// and re-drive the operation after showing its own prompt.
type ConfirmFunc func(prompt string) bool

// Session owns one editable text buffer. All mutation goes through its
// methods; dirty is cleared only by Load, Close, or a successful Save.
type Session struct {
	content     string
	backingPath string
	dirty       bool
	enabled     bool
	confirm     ConfirmFunc
}

func New() *Session {
	return &Session{}
}

func (s *Session) SetConfirmFunc(f ConfirmFunc) {
	s.confirm = f
}

func (s *Session) Content() string { return s.content }
func (s *Session) Dirty() bool     { return s.dirty }
func (s *Session) Enabled() bool   { return s.enabled }

func (s *Session) BackingPath() string { return s.backingPath }

// SetEnabled toggles whether the buffer accepts edits. It never touches
// the dirty flag.
func (s *Session) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Load replaces the buffer with the contents of path and binds the
// session to it. On read failure the session is left unchanged.
func (s *Session) Load(path string) error {
	content, err := files.ReadText(path)
	if err != nil {
		return err
	}

	s.content = content
	s.backingPath = path
	s.dirty = false
	s.enabled = true
	return nil
}

// Mutate records a user edit. Disabled sessions ignore edit signals so
// programmatic content replacement cannot raise the dirty flag.
func (s *Session) Mutate(content string) {
	if !s.enabled {
		return
	}
	s.content = content
	s.dirty = true
}

// Save writes the buffer to its backing file. The dirty flag survives a
// failed write so the caller can retry.
func (s *Session) Save() error {
	if s.backingPath == "" {
		return ErrNoBackingPath
	}
	if err := files.WriteText(s.backingPath, s.content); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Close clears the buffer and disables it. A dirty session asks for
// confirmation unless forced; on decline every field is left untouched.
func (s *Session) Close(force bool) error {
	if s.dirty && !force {
		if s.confirm == nil || !s.confirm("Discard unsaved changes?") {
			return ErrDeclined
		}
	}

	s.content = ""
	s.backingPath = ""
	s.dirty = false
	s.enabled = false
	return nil
}
