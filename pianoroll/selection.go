package pianoroll

import (
	"slices"

	"go-pianoroll/song"
)

// Selection is a set of notes by identity, mirrored onto the registry's
// proxies. A proxy is Selected exactly when its note id is in the set.
type Selection struct {
	reg *Registry
	ids map[song.NoteID]struct{}
}

func NewSelection(reg *Registry) *Selection {
	return &Selection{reg: reg, ids: make(map[song.NoteID]struct{})}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	for id := range s.ids {
		if p := s.reg.Lookup(id); p != nil {
			p.Selected = false
		}
	}
	clear(s.ids)
}

// SelectOnly replaces the selection with ids. Ids without a proxy are ignored.
func (s *Selection) SelectOnly(ids ...song.NoteID) {
	s.Clear()
	for _, id := range ids {
		s.add(id)
	}
}

// Toggle flips membership of one note.
func (s *Selection) Toggle(id song.NoteID) {
	if s.Contains(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// SelectAll selects every note in doc.
func (s *Selection) SelectAll(doc *song.Document) {
	if doc == nil {
		s.Clear()
		return
	}
	s.SelectOnly(doc.IDs()...)
}

// Restore re-applies a selection captured before a rebuild. Notes that no
// longer exist drop out.
func (s *Selection) Restore(ids []song.NoteID) {
	clear(s.ids)
	for _, id := range ids {
		s.add(id)
	}
}

func (s *Selection) Contains(id song.NoteID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected handles in ascending order.
func (s *Selection) IDs() []song.NoteID {
	ids := make([]song.NoteID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Proxies returns the proxies of the selected notes in paint order.
func (s *Selection) Proxies() []*Proxy {
	var out []*Proxy
	for _, p := range s.reg.Proxies() {
		if p.Selected {
			out = append(out, p)
		}
	}
	return out
}

func (s *Selection) add(id song.NoteID) {
	p := s.reg.Lookup(id)
	if p == nil {
		return
	}
	p.Selected = true
	s.ids[id] = struct{}{}
}

func (s *Selection) remove(id song.NoteID) {
	if p := s.reg.Lookup(id); p != nil {
		p.Selected = false
	}
	delete(s.ids, id)
}
