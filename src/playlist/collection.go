package playlist

import (
	"fmt"

	"github.com/google/uuid"
)

// QuickPlaylistID is the reserved identity of the always-present scratch
// playlist used for ad-hoc imports. It is the zero uuid: the quick playlist
// exists for the life of the collection and is cleared, never destroyed.
var QuickPlaylistID uuid.UUID

// Collection is the registry of all playlists, keyed by identity. Exactly
// one logical collection exists per running session; it is constructed
// explicitly and passed to whichever components need playlist lookup rather
// than living in package state.
type Collection struct {
	playlists map[uuid.UUID]*Playlist
	order     []uuid.UUID
}

// NewCollection creates a registry containing only the quick playlist.
func NewCollection() *Collection {
	c := &Collection{
		playlists: make(map[uuid.UUID]*Playlist),
	}
	c.register(newPlaylist(QuickPlaylistID, "Quick Playlist"))
	return c
}

func (c *Collection) register(p *Playlist) {
	c.playlists[p.uuid] = p
	c.order = append(c.order, p.uuid)
}

// NewPlaylist allocates a fresh identity, registers an empty playlist under
// it and returns the playlist. The identity never collides with an existing
// one and is never the quick-playlist identity.
func (c *Collection) NewPlaylist(title string) *Playlist {
	id := uuid.New()
	for {
		if _, taken := c.playlists[id]; !taken && id != QuickPlaylistID {
			break
		}
		id = uuid.New()
	}
	p := newPlaylist(id, title)
	c.register(p)
	return p
}

// ClonePlaylist deep-copies the given playlist into a new one with a derived
// title. Cloned items carry the same locations and metadata under fresh
// identities; the original is untouched. Returns nil when the source is
// unknown.
func (c *Collection) ClonePlaylist(id uuid.UUID) *Playlist {
	src := c.playlists[id]
	if src == nil {
		return nil
	}
	dst := c.NewPlaylist(fmt.Sprintf("%s (copy)", src.title))
	items := make([]*Item, 0, len(src.items))
	for _, item := range src.items {
		items = append(items, item.clone())
	}
	dst.AppendItems(items)
	return dst
}

// RemovePlaylist unregisters and destroys the given playlist. Removing the
// quick playlist clears it instead; removing an unknown identity is a no-op.
func (c *Collection) RemovePlaylist(id uuid.UUID) {
	if id == QuickPlaylistID {
		c.playlists[id].Clear()
		return
	}
	if _, ok := c.playlists[id]; !ok {
		return
	}
	delete(c.playlists, id)
	for i, ordered := range c.order {
		if ordered == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// PlaylistOf looks a playlist up by identity. Returns nil on a miss, which
// is a normal outcome: "no playlist selected yet" routes through this
// lookup constantly.
func (c *Collection) PlaylistOf(id uuid.UUID) *Playlist {
	return c.playlists[id]
}

// QuickPlaylist returns the reserved scratch playlist.
func (c *Collection) QuickPlaylist() *Playlist {
	return c.playlists[QuickPlaylistID]
}

// Playlists returns every registered playlist in creation order, quick
// playlist first.
func (c *Collection) Playlists() []*Playlist {
	all := make([]*Playlist, 0, len(c.order))
	for _, id := range c.order {
		all = append(all, c.playlists[id])
	}
	return all
}

// RestorePlaylist registers an empty playlist under a previously persisted
// identity, replacing any current playlist with that identity. Used when
// loading a session document; everywhere else use NewPlaylist.
func (c *Collection) RestorePlaylist(id uuid.UUID, title string) *Playlist {
	p := newPlaylist(id, title)
	if _, exists := c.playlists[id]; exists {
		c.playlists[id] = p
		return p
	}
	c.register(p)
	return p
}
