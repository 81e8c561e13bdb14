package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promptweave/promptweave-cli/pkg/files"
)

// ErrNoTarget reports an append with no generation target set.
var ErrNoTarget = errors.New("no save target set")

// SyncState describes the relationship between the editor buffer and the
// generation target file.
type SyncState int

const (
	// SyncUnbound: no target and no open editor file to disagree about.
	SyncUnbound SyncState = iota
	// SyncInSync: the editor buffer reflects the target file.
	SyncInSync
	// SyncOutOfSync: the editor and the target file are known to
	// disagree. Only an explicit reconciling load clears this.
	SyncOutOfSync
)

func (s SyncState) String() string {
	switch s {
	case SyncInSync:
		return "in-sync"
	case SyncOutOfSync:
		return "out-of-sync"
	default:
		return "unbound"
	}
}

// Binding reconciles the generation save target with the prompt editor
// session whenever the two reference the same file. The editor session is
// owned by the prompt editor view; the binding is the single source of
// truth for which file "save generated output" appends to.
type Binding struct {
	editor  *Session
	target  string
	state   SyncState
	confirm ConfirmFunc
}

func NewBinding(editor *Session, confirm ConfirmFunc) *Binding {
	return &Binding{editor: editor, confirm: confirm}
}

func (b *Binding) Editor() *Session { return b.editor }
func (b *Binding) Target() string   { return b.target }
func (b *Binding) State() SyncState { return b.state }
func (b *Binding) HasTarget() bool  { return b.target != "" }

// SetTarget points "save generated output" at a new file. When the editor
// holds unsaved work for a different file, the user chooses between
// reloading (discarding the edits) and keeping them; keeping them leaves
// the new target in place but marks the binding out of sync.
func (b *Binding) SetTarget(path string) error {
	b.target = path

	if path == "" {
		// No target means nothing to be in or out of sync with; any
		// open editor file stands on its own.
		b.state = SyncUnbound
		return nil
	}

	if b.editor.BackingPath() == path {
		if b.state != SyncOutOfSync {
			b.state = SyncInSync
		}
		return nil
	}

	if b.editor.Dirty() {
		if !b.ask(fmt.Sprintf("Discard unsaved editor changes and load %s?", filepath.Base(path))) {
			b.state = SyncOutOfSync
			return ErrDeclined
		}
	}

	return b.AdoptTarget()
}

// AdoptTarget force-loads the current target into the editor. This is the
// reconciling load that clears an out-of-sync flag.
func (b *Binding) AdoptTarget() error {
	if b.target == "" {
		_ = b.editor.Close(true)
		b.state = SyncUnbound
		return nil
	}

	if _, err := os.Stat(b.target); os.IsNotExist(err) {
		// A target that has not been created yet: the first append will
		// write it. The editor has nothing to show until then.
		_ = b.editor.Close(true)
		b.state = SyncInSync
		return nil
	}

	if err := b.editor.Load(b.target); err != nil {
		// Mirror of a failed editor open: drop the half-open state
		// entirely rather than leave a buffer claiming a file it
		// never read.
		_ = b.editor.Close(true)
		b.target = ""
		b.state = SyncUnbound
		return err
	}

	b.state = SyncInSync
	return nil
}

// Append writes text to the target file, then refreshes the editor when
// it has the same file open. A dirty editor is never reloaded silently:
// on decline the append still stands on disk, the buffer keeps its edits,
// and the binding is marked out of sync.
func (b *Binding) Append(text string) error {
	if b.target == "" {
		return ErrNoTarget
	}

	if err := files.AppendGenerated(b.target, text); err != nil {
		return err
	}

	if b.editor.BackingPath() != b.target {
		return nil
	}

	if b.editor.Dirty() {
		if !b.ask("File updated on disk. Discard editor changes to see the update?") {
			b.state = SyncOutOfSync
			return ErrDeclined
		}
	}

	return b.AdoptTarget()
}

// EditorOpened loads path into the editor and makes it the authoritative
// save target.
func (b *Binding) EditorOpened(path string) error {
	if b.editor.Dirty() {
		if !b.ask("Discard unsaved editor changes?") {
			return ErrDeclined
		}
	}

	if err := b.editor.Load(path); err != nil {
		return err
	}

	b.target = path
	b.state = SyncInSync
	return nil
}

// EditorClosed closes the editor buffer. The save target is cleared only
// when the editor was showing the target file; closing an unrelated file
// must not disturb the target.
func (b *Binding) EditorClosed(force bool) error {
	path := b.editor.BackingPath()
	if err := b.editor.Close(force); err != nil {
		return err
	}

	if path != "" && path == b.target {
		b.target = ""
		b.state = SyncUnbound
	}
	return nil
}

// Reconcile aligns the editor with the current target, used when the
// prompt editor view becomes visible: load the target if the editor shows
// something else, close the editor if the target was cleared, leave an
// empty editor alone when both are absent.
func (b *Binding) Reconcile() error {
	if b.target == "" {
		if b.editor.BackingPath() != "" {
			return b.EditorClosed(true)
		}
		return nil
	}

	if b.editor.BackingPath() == b.target {
		return nil
	}

	if b.editor.Dirty() {
		if !b.ask(fmt.Sprintf("Discard unsaved editor changes and load %s?", filepath.Base(b.target))) {
			b.state = SyncOutOfSync
			return ErrDeclined
		}
	}

	return b.AdoptTarget()
}

func (b *Binding) ask(prompt string) bool {
	return b.confirm != nil && b.confirm(prompt)
}
