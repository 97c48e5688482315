package viewsync

import (
	"log/slog"

	"github.com/google/uuid"

	"playdeck/src/features/searching"
	"playdeck/src/playlist"
)

// ItemDesiredFunc is invoked when an item is made hot (double click or an
// explicit play request); the playback collaborator reacts to it.
type ItemDesiredFunc func(playlistID, itemID uuid.UUID)

// Panel owns one view per open playlist tab plus the current-tab pointer,
// and is the surface the playback collaborator talks to. It mirrors the
// front end's playlist window: tabs open and close, URLs land after the
// current selection, the queue is toggled on the focused row.
//
// The panel is not safe for concurrent use; the playlists service
// serializes every call on the single control path.
type Panel struct {
	collection  *playlist.Collection
	searcher    *searching.Searcher
	views       map[uuid.UUID]*View
	tabs        []uuid.UUID
	current     uuid.UUID
	itemDesired ItemDesiredFunc
}

// NewPanel creates a panel with the quick playlist as its only tab.
func NewPanel(collection *playlist.Collection, searcher *searching.Searcher) *Panel {
	p := &Panel{
		collection: collection,
		searcher:   searcher,
		views:      make(map[uuid.UUID]*View),
	}
	p.AddTab(playlist.QuickPlaylistID)
	return p
}

// OnItemDesired registers the outbound request-to-play callback.
func (p *Panel) OnItemDesired(fn ItemDesiredFunc) {
	p.itemDesired = fn
}

// AddTab opens a tab for the given playlist and makes it current. Opening
// an already open tab just focuses it.
func (p *Panel) AddTab(playlistID uuid.UUID) *View {
	if view, open := p.views[playlistID]; open {
		p.current = playlistID
		return view
	}
	view := NewView(p.collection, playlistID)
	p.views[playlistID] = view
	p.tabs = append(p.tabs, playlistID)
	p.current = playlistID
	return view
}

// CloseTab closes the given tab. The quick playlist is cleared instead of
// destroyed; every other playlist is removed from the collection.
func (p *Panel) CloseTab(playlistID uuid.UUID) {
	view, open := p.views[playlistID]
	if !open {
		return
	}
	if playlistID == playlist.QuickPlaylistID {
		p.collection.QuickPlaylist().Clear()
		view.Repopulate()
		return
	}
	p.collection.RemovePlaylist(playlistID)
	delete(p.views, playlistID)
	for i, tab := range p.tabs {
		if tab == playlistID {
			p.tabs = append(p.tabs[:i], p.tabs[i+1:]...)
			break
		}
	}
	if p.current == playlistID {
		p.current = playlist.QuickPlaylistID
	}
}

// Tabs returns the open tabs in display order.
func (p *Panel) Tabs() []uuid.UUID {
	tabs := make([]uuid.UUID, len(p.tabs))
	copy(tabs, p.tabs)
	return tabs
}

// View returns the view of an open tab, nil otherwise.
func (p *Panel) View(playlistID uuid.UUID) *View {
	return p.views[playlistID]
}

// SetCurrent focuses an open tab; unknown identities are ignored.
func (p *Panel) SetCurrent(playlistID uuid.UUID) {
	if _, open := p.views[playlistID]; open {
		p.current = playlistID
	}
}

// Current returns the identity of the current tab's playlist.
func (p *Panel) Current() uuid.UUID {
	return p.current
}

// CurrentView returns the current tab's view.
func (p *Panel) CurrentView() *View {
	return p.views[p.current]
}

// AddToCurrent imports items into the current playlist, immediately after
// the current selection or at the end when nothing is selected. Returns the
// playlist identity and the identity of the first imported item.
func (p *Panel) AddToCurrent(items []*playlist.Item) (uuid.UUID, uuid.UUID) {
	view := p.CurrentView()
	pl := p.collection.PlaylistOf(p.current)
	if view == nil || pl == nil || len(items) == 0 {
		return p.current, uuid.Nil
	}
	if anchor := view.CurrentItem(); anchor != uuid.Nil && pl.ItemOf(anchor) != nil {
		pl.AddItems(anchor, items)
	} else {
		pl.AppendItems(items)
	}
	view.Repopulate()
	return p.current, items[0].UUID()
}

// ItemToQuickPlaylist clears the quick playlist, focuses its tab and loads
// the single item into it.
func (p *Panel) ItemToQuickPlaylist(item *playlist.Item) (uuid.UUID, uuid.UUID) {
	p.collection.QuickPlaylist().Clear()
	quick := p.AddTab(playlist.QuickPlaylistID)
	quick.Repopulate()
	p.current = playlist.QuickPlaylistID
	return p.AddToCurrent([]*playlist.Item{item})
}

// SetFilter applies filter text synchronously to every open view.
func (p *Panel) SetFilter(text string) {
	for _, view := range p.views {
		view.SetFilter(text)
	}
}

// SetFilterAsync snapshots the current view and hands the filter pass to
// the background searcher. The result is applied by ApplyFilterResult once
// it arrives, unless a newer request has superseded it.
func (p *Panel) SetFilterAsync(text string) uint64 {
	view := p.CurrentView()
	if view == nil || p.searcher == nil {
		return 0
	}
	return p.searcher.Submit(view.PlaylistID(), view.Snapshot(), text)
}

// ApplyFilterResult applies a completed filter pass, discarding it when a
// newer request has been submitted since (last-request-wins) or when its
// tab has been closed.
func (p *Panel) ApplyFilterResult(res searching.Result) {
	if p.searcher != nil && !p.searcher.Current(res.Seq) {
		slog.Debug("discarding stale filter result", "seq", res.Seq)
		return
	}
	if view, open := p.views[res.ListID]; open {
		view.ApplyVisibleSet(res.FilterText, res.Visible)
	}
}

// QuickQueue toggles queue membership of the focused item.
func (p *Panel) QuickQueue() {
	view := p.CurrentView()
	pl := p.collection.PlaylistOf(p.current)
	if view == nil || pl == nil {
		return
	}
	if id := view.CurrentItem(); id != uuid.Nil {
		pl.QueueToggle(id)
	}
}

// PlayCurrentItem emits an itemDesired request for the focused item.
func (p *Panel) PlayCurrentItem() {
	view := p.CurrentView()
	if view == nil || p.itemDesired == nil {
		return
	}
	if id := view.CurrentItem(); id != uuid.Nil {
		p.itemDesired(p.current, id)
	}
}

// Desire emits an itemDesired request for an arbitrary item.
func (p *Panel) Desire(playlistID, itemID uuid.UUID) {
	if p.itemDesired != nil {
		p.itemDesired(playlistID, itemID)
	}
}

// GetItemAfter answers the playback collaborator's "what plays next"
// query: queue entries take priority exactly once each (pop-front), then
// normal main-sequence order resumes after the given item.
func (p *Panel) GetItemAfter(playlistID, itemID uuid.UUID) uuid.UUID {
	pl := p.collection.PlaylistOf(playlistID)
	if pl == nil {
		return uuid.Nil
	}
	if queued := pl.QueueTakeFirst(); queued != uuid.Nil {
		return queued
	}
	after := pl.ItemAfter(itemID)
	if after == nil {
		return uuid.Nil
	}
	return after.UUID()
}

// GetItemBefore answers "what plays previous": pure main-sequence order,
// the queue is never consulted.
func (p *Panel) GetItemBefore(playlistID, itemID uuid.UUID) uuid.UUID {
	pl := p.collection.PlaylistOf(playlistID)
	if pl == nil {
		return uuid.Nil
	}
	before := pl.ItemBefore(itemID)
	if before == nil {
		return uuid.Nil
	}
	return before.UUID()
}

// URLOf resolves an item's location, "" on any miss.
func (p *Panel) URLOf(playlistID, itemID uuid.UUID) string {
	pl := p.collection.PlaylistOf(playlistID)
	if pl == nil {
		return ""
	}
	item := pl.ItemOf(itemID)
	if item == nil {
		return ""
	}
	return item.URL()
}

// SetMetadata updates an item's metadata (e.g. when the player learns a
// title) and refreshes the owning view.
func (p *Panel) SetMetadata(playlistID, itemID uuid.UUID, metadata map[string]string) {
	pl := p.collection.PlaylistOf(playlistID)
	if pl == nil {
		return
	}
	item := pl.ItemOf(itemID)
	if item == nil {
		return
	}
	item.SetMetadata(metadata)
	if view, open := p.views[playlistID]; open {
		view.Repopulate()
	}
}

// NowPlayingChanged is the inbound notification from the playback
// collaborator. A queue head matching the new item is consumed (its
// priority is spent), and the view's marker and focus follow the item.
func (p *Panel) NowPlayingChanged(playlistID, itemID uuid.UUID) {
	view, open := p.views[playlistID]
	if !open {
		return
	}
	pl := p.collection.PlaylistOf(playlistID)
	if pl != nil && itemID != uuid.Nil && pl.QueueFirst() == itemID {
		pl.QueueTakeFirst()
	}
	view.SetCurrent(itemID)
	view.SetNowPlaying(itemID)
}

// Repopulate rebuilds the view of the given playlist after a structural
// mutation performed outside the panel.
func (p *Panel) Repopulate(playlistID uuid.UUID) {
	if view, open := p.views[playlistID]; open {
		view.Repopulate()
	}
}
