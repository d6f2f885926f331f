// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sidebar maintains the conversation list view-model shown next
// to the chat panel.
//
// The list is the in-memory source of truth; render surfaces draw from
// it and never store state of their own. Reconciliation against the
// server's authoritative list is diff-based: entries that survive a
// sync keep their internal identity, so transient UI state hanging off
// an entry (an open rename input, say) survives a background refresh.
//
// Session operations mutate the list from their own goroutine while the
// render loop reads it, so every method locks, and readers get value
// snapshots rather than internal pointers.
package sidebar

import (
	"sync"

	"github.com/jeranaias/tagwise-tui/internal/api"
)

// Placeholder texts for the two degenerate list states.
const (
	EmptyPlaceholder = "No conversations yet"
	ErrorPlaceholder = "Couldn't load conversations"
)

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one conversation row. Readers receive copies; the list keeps
// the canonical entry, whose identity is stable across syncs for
// conversations the server still lists.
type Entry struct {
	ID     string
	Title  string
	Active bool

	// Renaming marks an open rename input; preserved across syncs.
	Renaming bool
}

// =============================================================================
// LIST
// =============================================================================

// List is the ordered conversation list with an id index.
type List struct {
	mu       sync.Mutex
	entries  []*Entry
	byID     map[string]*Entry
	activeID string

	// loaded is set after the first successful sync; a failed refresh
	// only shows the error placeholder while the list is still empty.
	loaded bool
	failed bool
}

// NewList creates an empty list.
func NewList() *List {
	return &List{byID: make(map[string]*Entry)}
}

// Entries returns a snapshot of the entries in display order. The
// copies are safe to read while the list keeps changing.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	for i, entry := range l.entries {
		out[i] = *entry
	}
	return out
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Get returns a copy of the entry for id.
func (l *List) Get(id string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.byID[id]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// ActiveID returns the id of the highlighted conversation, or "".
func (l *List) ActiveID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeID
}

// Placeholder returns the text to show instead of entries, or "" when
// there are entries to render.
func (l *List) Placeholder() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) > 0 {
		return ""
	}
	if l.failed && !l.loaded {
		return ErrorPlaceholder
	}
	return EmptyPlaceholder
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Sync reconciles the list against the server's authoritative listing.
// Existing entries are patched in place (title only when changed,
// active flag always), missing entries are created, absent entries are
// dropped, and the server's ordering is adopted.
func (l *List) Sync(server []api.ConversationInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]*Entry, 0, len(server))
	nextByID := make(map[string]*Entry, len(server))

	for _, info := range server {
		id := info.ID.String()
		entry, ok := l.byID[id]
		if ok {
			if entry.Title != info.Title {
				entry.Title = info.Title
			}
		} else {
			entry = &Entry{ID: id, Title: info.Title}
		}
		entry.Active = id == l.activeID
		next = append(next, entry)
		nextByID[id] = entry
	}

	l.entries = next
	l.byID = nextByID
	l.loaded = true
	l.failed = false
}

// SyncFailed records a failed refresh. A previously successful render
// is not clobbered by a transient failure.
func (l *List) SyncFailed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = true
}

// =============================================================================
// LOCAL MUTATIONS
// =============================================================================

// SetActive moves the active highlight to id ("" clears it).
func (l *List) SetActive(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activeID = id
	for _, entry := range l.entries {
		entry.Active = entry.ID == id
	}
}

// Upsert adds a new entry at the front (newest-first ordering, matching
// the server) or patches the title of an existing one.
func (l *List) Upsert(id, title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.byID[id]; ok {
		if title != "" {
			entry.Title = title
		}
		return
	}
	entry := &Entry{ID: id, Title: title, Active: id == l.activeID}
	l.entries = append([]*Entry{entry}, l.entries...)
	l.byID[id] = entry
	l.loaded = true
}

// Remove drops an entry. Removing the active entry clears the
// highlight.
func (l *List) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.byID[id]
	if !ok {
		return
	}
	delete(l.byID, id)
	for i, e := range l.entries {
		if e == entry {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	if l.activeID == id {
		l.activeID = ""
	}
}

// Rename updates an entry's title.
func (l *List) Rename(id, title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.byID[id]; ok {
		entry.Title = title
	}
}

// SetRenaming marks or clears an entry's open rename input.
func (l *List) SetRenaming(id string, renaming bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.byID[id]; ok {
		entry.Renaming = renaming
	}
}
