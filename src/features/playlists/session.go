package playlists

import (
	"github.com/google/uuid"

	"playdeck/src/playlist"
)

// SessionDocument is the persisted form of the whole session: every
// playlist with its items and queue, plus the open tabs. It is written and
// read as one JSON document.
type SessionDocument struct {
	Playlists []PlaylistDocument `json:"playlists"`
	Tabs      []uuid.UUID        `json:"tabs"`
	Current   uuid.UUID          `json:"current"`
}

// PlaylistDocument is the persisted form of one playlist.
type PlaylistDocument struct {
	ID    uuid.UUID      `json:"id"`
	Title string         `json:"title"`
	Items []ItemDocument `json:"items"`
	Queue []uuid.UUID    `json:"queue"`
}

// ItemDocument is the persisted form of one item. Identities are kept so
// queues and tabs referencing them survive the round trip.
type ItemDocument struct {
	ID       uuid.UUID         `json:"id"`
	URL      string            `json:"url"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func documentOf(pl *playlist.Playlist) PlaylistDocument {
	doc := PlaylistDocument{
		ID:    pl.UUID(),
		Title: pl.Title(),
		Queue: pl.Queue(),
	}
	pl.IterateItems(func(item *playlist.Item) {
		doc.Items = append(doc.Items, ItemDocument{
			ID:       item.UUID(),
			URL:      item.URL(),
			Metadata: item.Metadata(),
		})
	})
	return doc
}

func restoreDocument(collection *playlist.Collection, doc PlaylistDocument) *playlist.Playlist {
	pl := collection.PlaylistOf(doc.ID)
	if pl == nil {
		pl = collection.RestorePlaylist(doc.ID, doc.Title)
	} else {
		pl.Clear()
		pl.SetTitle(doc.Title)
	}

	items := make([]*playlist.Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, playlist.RestoreItem(it.ID, it.URL, it.Metadata))
	}
	pl.AppendItems(items)
	for _, id := range doc.Queue {
		pl.QueueToggle(id)
	}
	return pl
}
