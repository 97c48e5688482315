package playlist

import (
	"sort"

	"github.com/google/uuid"
)

// SortBy reorders the playlist's main sequence by a caller-supplied key and
// comparator; the engine itself is policy-free. The protocol: snapshot the
// current items while recording each one's row as its original position,
// derive every key once, stable-sort the snapshot, then swap the sequence
// atomically with the reorder pair (TakeItemsRaw + AddItems) so the queue
// is left untouched.
func SortBy[K any](p *Playlist, key func(*Item) K, less func(a, b K) bool) {
	items := make([]*Item, 0, p.Count())
	keys := make(map[uuid.UUID]K, p.Count())
	pos := 0
	p.IterateItems(func(item *Item) {
		// Derive the key before stamping the position so that sorting by
		// OriginalPosition restores the previously recorded order.
		keys[item.UUID()] = key(item)
		item.SetOriginalPosition(pos)
		pos++
		items = append(items, item)
	})
	sort.SliceStable(items, func(i, j int) bool {
		return less(keys[items[i].UUID()], keys[items[j].UUID()])
	})
	p.TakeItemsRaw(items)
	p.AddItems(uuid.Nil, items)
}

// SortByOriginalPosition restores the order recorded by the last SortBy.
func SortByOriginalPosition(p *Playlist) {
	SortBy(p, (*Item).OriginalPosition, func(a, b int) bool { return a < b })
}
