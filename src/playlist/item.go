package playlist

import (
	"github.com/google/uuid"
)

// Item is a single playable reference: a source URL plus whatever metadata
// the player has learned about it. The identity is assigned at creation and
// never changes; every cross-component reference to an item (queue entries,
// selection, the now-playing marker) is by this uuid, never by position.
type Item struct {
	uuid             uuid.UUID
	url              string
	metadata         map[string]string
	originalPosition int
}

// NewItem creates an item for the given URL with a fresh identity.
func NewItem(url string) *Item {
	return &Item{
		uuid: uuid.New(),
		url:  url,
	}
}

// RestoreItem recreates an item with a previously persisted identity.
// Used when loading a session document; everywhere else use NewItem.
func RestoreItem(id uuid.UUID, url string, metadata map[string]string) *Item {
	item := &Item{
		uuid: id,
		url:  url,
	}
	item.SetMetadata(metadata)
	return item
}

// UUID returns the item's immutable identity.
func (i *Item) UUID() uuid.UUID {
	return i.uuid
}

// URL returns the item's source location.
func (i *Item) URL() string {
	return i.url
}

// Metadata returns a copy of the item's metadata mapping.
func (i *Item) Metadata() map[string]string {
	if i.metadata == nil {
		return nil
	}
	md := make(map[string]string, len(i.metadata))
	for k, v := range i.metadata {
		md[k] = v
	}
	return md
}

// MetadataValue returns a single metadata field, or "" when absent.
func (i *Item) MetadataValue(key string) string {
	return i.metadata[key]
}

// SetMetadata replaces the item's metadata mapping.
func (i *Item) SetMetadata(metadata map[string]string) {
	if metadata == nil {
		i.metadata = nil
		return
	}
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	i.metadata = md
}

// OriginalPosition returns the row position recorded before the last sort.
func (i *Item) OriginalPosition() int {
	return i.originalPosition
}

// SetOriginalPosition records the item's current row position so a sort can
// break ties or be undone by sorting on this value.
func (i *Item) SetOriginalPosition(pos int) {
	i.originalPosition = pos
}

// clone returns a copy of the item under a fresh identity.
func (i *Item) clone() *Item {
	c := NewItem(i.url)
	c.SetMetadata(i.metadata)
	return c
}
