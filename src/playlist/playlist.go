package playlist

import (
	"strings"

	"github.com/google/uuid"
)

// Playlist is an ordered sequence of items plus an independent play queue.
// The main sequence is the sole source of truth for before/after queries;
// the queue is a FIFO of item identities consulted only for "what plays
// next". Item identities within one playlist are unique, and every queue
// entry references an item currently present in the sequence.
//
// Playlists are not safe for concurrent use; all mutation happens on the
// single control path (the playlists service serializes it).
type Playlist struct {
	uuid        uuid.UUID
	title       string
	items       []*Item
	itemsByUUID map[uuid.UUID]*Item
	queue       []uuid.UUID
}

func newPlaylist(id uuid.UUID, title string) *Playlist {
	return &Playlist{
		uuid:        id,
		title:       title,
		itemsByUUID: make(map[uuid.UUID]*Item),
	}
}

// UUID returns the playlist's identity.
func (p *Playlist) UUID() uuid.UUID {
	return p.uuid
}

// Title returns the playlist's human-readable title.
func (p *Playlist) Title() string {
	return p.title
}

// SetTitle renames the playlist.
func (p *Playlist) SetTitle(title string) {
	p.title = title
}

// Count returns the number of items in the main sequence.
func (p *Playlist) Count() int {
	return len(p.items)
}

// IsEmpty reports whether the playlist has no items.
func (p *Playlist) IsEmpty() bool {
	return len(p.items) == 0
}

// AddItems inserts items immediately after the given anchor, or at the head
// when the anchor is uuid.Nil. When a non-nil anchor is not present the call
// is a no-op: callers must re-resolve their anchor rather than rely on a
// fallback position. Items whose identity is already present are skipped.
func (p *Playlist) AddItems(after uuid.UUID, items []*Item) {
	at := 0
	if after != uuid.Nil {
		anchor, ok := p.indexOf(after)
		if !ok {
			return
		}
		at = anchor + 1
	}
	p.insertItems(at, items)
}

// AppendItems adds items at the end of the main sequence.
func (p *Playlist) AppendItems(items []*Item) {
	p.insertItems(len(p.items), items)
}

func (p *Playlist) insertItems(at int, items []*Item) {
	fresh := make([]*Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := p.itemsByUUID[item.uuid]; exists {
			continue
		}
		fresh = append(fresh, item)
		p.itemsByUUID[item.uuid] = item
	}
	if len(fresh) == 0 {
		return
	}
	p.items = append(p.items[:at], append(fresh, p.items[at:]...)...)
}

// RemoveItems permanently removes the given items. Identities not present
// are ignored. Queue entries for removed items are pruned; use TakeItemsRaw
// when removing as the first half of a reorder.
func (p *Playlist) RemoveItems(ids []uuid.UUID) {
	removed := p.takeItems(ids)
	for _, item := range removed {
		p.queueRemove(item.uuid)
	}
}

// TakeItemsRaw removes the given items from the main sequence without
// touching the queue and returns them in their current sequence order.
// It exists solely as the first half of the reorder protocol: take the
// items out, then AddItems them back at their new positions. Queue entries
// keep referring to the items across the gap, so the pair must complete
// before any queue-consuming operation runs.
func (p *Playlist) TakeItemsRaw(items []*Item) []*Item {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item != nil {
			ids = append(ids, item.uuid)
		}
	}
	return p.takeItems(ids)
}

func (p *Playlist) takeItems(ids []uuid.UUID) []*Item {
	doomed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if _, ok := p.itemsByUUID[id]; ok {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	taken := make([]*Item, 0, len(doomed))
	kept := p.items[:0]
	for _, item := range p.items {
		if doomed[item.uuid] {
			taken = append(taken, item)
			delete(p.itemsByUUID, item.uuid)
		} else {
			kept = append(kept, item)
		}
	}
	// Zero the tail so removed items do not linger in the backing array.
	for i := len(kept); i < len(p.items); i++ {
		p.items[i] = nil
	}
	p.items = kept
	return taken
}

// ItemOf looks an item up by identity. Returns nil when absent; a miss is a
// normal outcome during reconciliation, not an error.
func (p *Playlist) ItemOf(id uuid.UUID) *Item {
	return p.itemsByUUID[id]
}

// ItemAfter returns the item following the given one in main-sequence
// order, or nil at the tail or when the identity is absent.
func (p *Playlist) ItemAfter(id uuid.UUID) *Item {
	i, ok := p.indexOf(id)
	if !ok || i+1 >= len(p.items) {
		return nil
	}
	return p.items[i+1]
}

// ItemBefore returns the item preceding the given one in main-sequence
// order, or nil at the head or when the identity is absent.
func (p *Playlist) ItemBefore(id uuid.UUID) *Item {
	i, ok := p.indexOf(id)
	if !ok || i == 0 {
		return nil
	}
	return p.items[i-1]
}

// First returns the first item of the main sequence, or nil when empty.
func (p *Playlist) First() *Item {
	if len(p.items) == 0 {
		return nil
	}
	return p.items[0]
}

func (p *Playlist) indexOf(id uuid.UUID) (int, bool) {
	if _, ok := p.itemsByUUID[id]; !ok {
		return 0, false
	}
	for i, item := range p.items {
		if item.uuid == id {
			return i, true
		}
	}
	return 0, false
}

// IterateItems visits every item in main-sequence order. Mutating the
// playlist during iteration is undefined; snapshot with Items first when a
// visitor needs to mutate (the sort protocol does).
func (p *Playlist) IterateItems(visit func(*Item)) {
	for _, item := range p.items {
		visit(item)
	}
}

// Items returns a snapshot copy of the main sequence.
func (p *Playlist) Items() []*Item {
	snapshot := make([]*Item, len(p.items))
	copy(snapshot, p.items)
	return snapshot
}

// Clear removes every item and empties the queue.
func (p *Playlist) Clear() {
	p.items = nil
	p.itemsByUUID = make(map[uuid.UUID]*Item)
	p.queue = nil
}

// QueueToggle adds the item to the back of the queue, or removes it when
// already queued. Identities not present in the playlist are ignored.
func (p *Playlist) QueueToggle(id uuid.UUID) {
	if _, ok := p.itemsByUUID[id]; !ok {
		return
	}
	for i, queued := range p.queue {
		if queued == id {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
	p.queue = append(p.queue, id)
}

// Queue returns a copy of the queue, front first.
func (p *Playlist) Queue() []uuid.UUID {
	q := make([]uuid.UUID, len(p.queue))
	copy(q, p.queue)
	return q
}

// QueueFirst peeks at the front of the queue, uuid.Nil when empty.
func (p *Playlist) QueueFirst() uuid.UUID {
	if len(p.queue) == 0 {
		return uuid.Nil
	}
	return p.queue[0]
}

// QueueTakeFirst pops the front of the queue, uuid.Nil when empty.
func (p *Playlist) QueueTakeFirst() uuid.UUID {
	if len(p.queue) == 0 {
		return uuid.Nil
	}
	id := p.queue[0]
	p.queue = p.queue[1:]
	return id
}

func (p *Playlist) queueRemove(id uuid.UUID) {
	for i, queued := range p.queue {
		if queued == id {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
}

// ToStringList renders the playlist as ordered item locations, one per
// item, for the plain-text playlist codec.
func (p *Playlist) ToStringList() []string {
	lines := make([]string, 0, len(p.items))
	for _, item := range p.items {
		lines = append(lines, item.url)
	}
	return lines
}

// FromStringList appends one item per non-empty, non-comment line. The
// inverse of ToStringList up to metadata, which the plain codec drops.
func (p *Playlist) FromStringList(lines []string) {
	items := make([]*Item, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, NewItem(line))
	}
	p.AppendItems(items)
}

// clone deep-copies the playlist under the given identity and title. Cloned
// items get fresh identities; the queue is not carried over.
func (p *Playlist) clone(id uuid.UUID, title string) *Playlist {
	c := newPlaylist(id, title)
	items := make([]*Item, 0, len(p.items))
	for _, item := range p.items {
		items = append(items, item.clone())
	}
	c.AppendItems(items)
	return c
}
