package viewsync

import (
	"github.com/google/uuid"

	"playdeck/src/features/searching"
	"playdeck/src/playlist"
)

// View keeps an ordered on-screen row list consistent with one playlist's
// main-sequence order plus the active filter. Rows are bound to item
// identities through a bidirectional table (row order slice + uuid→row
// index) that is rebuilt wholesale on every Repopulate instead of patched
// incrementally; selection, focus and the now-playing marker are all
// resolved by identity, never by row index. The view never holds ordering
// state the model does not: a drag reorder is translated straight back into
// the playlist's take/add pair.
type View struct {
	collection *playlist.Collection
	playlistID uuid.UUID

	rows      []uuid.UUID
	rowByUUID map[uuid.UUID]int

	selected     map[uuid.UUID]struct{}
	current      uuid.UUID
	lastSelected uuid.UUID
	nowPlaying   uuid.UUID

	filterText string
	needles    []string

	// Visibility precomputed by the background searcher, valid only for
	// visibleCacheFor. Items missing from the cache (added after the
	// snapshot) are matched synchronously.
	visibleCache    map[uuid.UUID]bool
	visibleCacheFor string
}

// NewView binds a view to a playlist identity and populates its rows.
func NewView(collection *playlist.Collection, playlistID uuid.UUID) *View {
	v := &View{
		collection: collection,
		playlistID: playlistID,
		rowByUUID:  make(map[uuid.UUID]int),
		selected:   make(map[uuid.UUID]struct{}),
	}
	v.Repopulate()
	return v
}

// PlaylistID returns the identity of the playlist this view displays.
func (v *View) PlaylistID() uuid.UUID {
	return v.playlistID
}

// Playlist resolves the backing playlist, nil when it no longer exists.
func (v *View) Playlist() *playlist.Playlist {
	return v.collection.PlaylistOf(v.playlistID)
}

// Repopulate fully rebuilds the visible row list from the playlist's
// current order filtered by the active filter. Call after any structural
// mutation (add/remove/reorder/sort) and after any filter change. Selection
// and now-playing survive by identity; now-playing is cleared only when its
// item has left the playlist, not when a filter merely hides it.
func (v *View) Repopulate() {
	v.rows = v.rows[:0]
	v.rowByUUID = make(map[uuid.UUID]int)

	pl := v.Playlist()
	if pl != nil {
		pl.IterateItems(func(item *playlist.Item) {
			if v.itemVisible(item) {
				v.rowByUUID[item.UUID()] = len(v.rows)
				v.rows = append(v.rows, item.UUID())
			}
		})
	}

	if v.nowPlaying != uuid.Nil && (pl == nil || pl.ItemOf(v.nowPlaying) == nil) {
		v.nowPlaying = uuid.Nil
	}
	for id := range v.selected {
		if pl == nil || pl.ItemOf(id) == nil {
			delete(v.selected, id)
		}
	}
	if _, visible := v.rowByUUID[v.current]; !visible {
		v.current = uuid.Nil
	}
	if v.current == uuid.Nil {
		if _, visible := v.rowByUUID[v.lastSelected]; visible {
			v.current = v.lastSelected
		}
	}
}

func (v *View) itemVisible(item *playlist.Item) bool {
	if len(v.needles) == 0 {
		return true
	}
	if v.visibleCacheFor == v.filterText && v.visibleCache != nil {
		if visible, ok := v.visibleCache[item.UUID()]; ok {
			return visible
		}
	}
	return searching.MatchItem(item, v.needles)
}

// SetFilter applies filter text synchronously and repopulates.
func (v *View) SetFilter(text string) {
	v.filterText = text
	v.needles = searching.Tokenize(text)
	if len(v.needles) == 0 {
		v.visibleCache = nil
		v.visibleCacheFor = ""
	}
	v.Repopulate()
}

// FilterText returns the current filter text.
func (v *View) FilterText() string {
	return v.filterText
}

// FilterActive reports whether a non-empty filter is applied.
func (v *View) FilterActive() bool {
	return len(v.needles) != 0
}

// Snapshot copies the playlist's items into an immutable form for the
// background searcher.
func (v *View) Snapshot() []searching.Snapshot {
	pl := v.Playlist()
	if pl == nil {
		return nil
	}
	snaps := make([]searching.Snapshot, 0, pl.Count())
	pl.IterateItems(func(item *playlist.Item) {
		snaps = append(snaps, searching.Snapshot{
			ID:     item.UUID(),
			Fields: searching.ItemFields(item),
		})
	})
	return snaps
}

// ApplyVisibleSet installs a visibility set computed by the background
// searcher for the given filter text and repopulates with it.
func (v *View) ApplyVisibleSet(filterText string, visible map[uuid.UUID]bool) {
	v.filterText = filterText
	v.needles = searching.Tokenize(filterText)
	v.visibleCache = visible
	v.visibleCacheFor = filterText
	v.Repopulate()
}

// RowCount returns the number of visible rows.
func (v *View) RowCount() int {
	return len(v.rows)
}

// Rows returns a copy of the visible row order, top to bottom.
func (v *View) Rows() []uuid.UUID {
	rows := make([]uuid.UUID, len(v.rows))
	copy(rows, v.rows)
	return rows
}

// UUIDAtRow returns the item identity bound to a row, uuid.Nil when out of
// range.
func (v *View) UUIDAtRow(row int) uuid.UUID {
	if row < 0 || row >= len(v.rows) {
		return uuid.Nil
	}
	return v.rows[row]
}

// RowOf returns the row an item currently occupies.
func (v *View) RowOf(id uuid.UUID) (int, bool) {
	row, ok := v.rowByUUID[id]
	return row, ok
}

// SetCurrent moves focus to the given item if it is visible and remembers
// it for restoration after the next repopulation.
func (v *View) SetCurrent(id uuid.UUID) {
	if id == uuid.Nil {
		v.current = uuid.Nil
		return
	}
	if _, visible := v.rowByUUID[id]; !visible {
		return
	}
	v.current = id
	v.lastSelected = id
	v.selected[id] = struct{}{}
}

// CurrentItem returns the focused item identity, uuid.Nil when none.
func (v *View) CurrentItem() uuid.UUID {
	return v.current
}

// SetSelection replaces the selection with the given identities; unknown
// ones are dropped on the next repopulation.
func (v *View) SetSelection(ids []uuid.UUID) {
	v.selected = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		v.selected[id] = struct{}{}
	}
}

// SelectedItems returns the selected identities in visible row order;
// selected items hidden by the filter come after, unordered.
func (v *View) SelectedItems() []uuid.UUID {
	ordered := make([]uuid.UUID, 0, len(v.selected))
	for _, id := range v.rows {
		if _, ok := v.selected[id]; ok {
			ordered = append(ordered, id)
		}
	}
	for id := range v.selected {
		if _, visible := v.rowByUUID[id]; !visible {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

// SelectNext moves focus one visible row down.
func (v *View) SelectNext() {
	v.selectRelative(1)
}

// SelectPrevious moves focus one visible row up.
func (v *View) SelectPrevious() {
	v.selectRelative(-1)
}

func (v *View) selectRelative(delta int) {
	if len(v.rows) == 0 {
		return
	}
	row := 0
	if current, ok := v.rowByUUID[v.current]; ok {
		row = current + delta
	}
	if row < 0 || row >= len(v.rows) {
		return
	}
	v.SetCurrent(v.rows[row])
}

// SetNowPlaying moves the now-playing marker. The marker is an identity:
// it stays correct while filters hide and reveal rows, and Repopulate
// clears it when the item leaves the playlist.
func (v *View) SetNowPlaying(id uuid.UUID) {
	if id != uuid.Nil {
		pl := v.Playlist()
		if pl == nil || pl.ItemOf(id) == nil {
			return
		}
	}
	v.nowPlaying = id
}

// NowPlaying returns the marked identity, uuid.Nil when none.
func (v *View) NowPlaying() uuid.UUID {
	return v.nowPlaying
}

// MoveItems translates a drag reorder performed in the view back into the
// model: the moved items are taken out without touching the queue and
// reinserted after the anchor (uuid.Nil for the head). A vanished or moved
// anchor makes the call a no-op. Ends with a full repopulation.
func (v *View) MoveItems(moved []uuid.UUID, after uuid.UUID) {
	pl := v.Playlist()
	if pl == nil || len(moved) == 0 {
		return
	}
	if after != uuid.Nil {
		if pl.ItemOf(after) == nil {
			return
		}
		for _, id := range moved {
			if id == after {
				return
			}
		}
	}
	items := make([]*playlist.Item, 0, len(moved))
	for _, id := range moved {
		if item := pl.ItemOf(id); item != nil {
			items = append(items, item)
		}
	}
	taken := pl.TakeItemsRaw(items)
	pl.AddItems(after, taken)
	v.Repopulate()
}

// RemoveSelected permanently deletes the selected items (queue entries
// included) and repopulates.
func (v *View) RemoveSelected() {
	pl := v.Playlist()
	if pl == nil {
		return
	}
	pl.RemoveItems(v.SelectedItems())
	v.Repopulate()
}
