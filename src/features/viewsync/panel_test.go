package viewsync

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"playdeck/src/features/searching"
	"playdeck/src/playlist"
)

func newTestPanel(t *testing.T) (*playlist.Collection, *Panel) {
	t.Helper()
	c := playlist.NewCollection()
	return c, NewPanel(c, nil)
}

func itemsOf(urls ...string) []*playlist.Item {
	items := make([]*playlist.Item, 0, len(urls))
	for _, u := range urls {
		items = append(items, playlist.NewItem(u))
	}
	return items
}

func TestPanelOpensWithQuickTab(t *testing.T) {
	_, p := newTestPanel(t)

	if p.Current() != playlist.QuickPlaylistID {
		t.Error("expected the quick playlist tab to be current")
	}
	if len(p.Tabs()) != 1 {
		t.Errorf("expected a single open tab, got %d", len(p.Tabs()))
	}
}

func TestAddTabFocusesExistingTab(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("one")

	first := p.AddTab(pl.UUID())
	p.SetCurrent(playlist.QuickPlaylistID)
	second := p.AddTab(pl.UUID())

	if first != second {
		t.Error("reopening a tab must reuse its view")
	}
	if p.Current() != pl.UUID() {
		t.Error("reopening a tab must focus it")
	}
	if len(p.Tabs()) != 2 {
		t.Errorf("expected 2 tabs, got %d", len(p.Tabs()))
	}
}

func TestCloseTabRemovesPlaylist(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("doomed")
	p.AddTab(pl.UUID())

	p.CloseTab(pl.UUID())

	if c.PlaylistOf(pl.UUID()) != nil {
		t.Error("closing a regular tab must remove its playlist")
	}
	if p.Current() != playlist.QuickPlaylistID {
		t.Error("focus must fall back to the quick playlist")
	}
	if p.View(pl.UUID()) != nil {
		t.Error("closed tab's view must be gone")
	}
}

func TestCloseQuickTabClearsInsteadOfRemoving(t *testing.T) {
	c, p := newTestPanel(t)
	c.QuickPlaylist().AppendItems(itemsOf("a", "b"))
	p.Repopulate(playlist.QuickPlaylistID)

	p.CloseTab(playlist.QuickPlaylistID)

	quick := c.QuickPlaylist()
	if quick == nil {
		t.Fatal("quick playlist must never be destroyed")
	}
	if quick.Count() != 0 {
		t.Error("closing the quick tab must empty its playlist")
	}
	if p.View(playlist.QuickPlaylistID) == nil || p.CurrentView().RowCount() != 0 {
		t.Error("quick tab must stay open with an empty view")
	}
}

func TestAddToCurrentInsertsAfterSelection(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("inbox")
	pl.AppendItems(itemsOf("a", "b"))
	view := p.AddTab(pl.UUID())
	view.SetCurrent(pl.Items()[0].UUID())

	listID, firstID := p.AddToCurrent(itemsOf("x", "y"))

	if listID != pl.UUID() {
		t.Error("items must land in the current playlist")
	}
	want := []string{"a", "x", "y", "b"}
	got := pl.ToStringList()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if pl.ItemOf(firstID).URL() != "x" {
		t.Error("returned identity must be the first imported item")
	}
}

func TestAddToCurrentAppendsWithoutSelection(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("inbox")
	pl.AppendItems(itemsOf("a"))
	p.AddTab(pl.UUID())

	p.AddToCurrent(itemsOf("z"))

	if got := pl.ToStringList(); got[len(got)-1] != "z" {
		t.Error("expected the import to append when nothing is selected")
	}
}

func TestItemToQuickPlaylist(t *testing.T) {
	c, p := newTestPanel(t)
	c.QuickPlaylist().AppendItems(itemsOf("stale"))
	other := c.NewPlaylist("other")
	p.AddTab(other.UUID())

	listID, itemID := p.ItemToQuickPlaylist(playlist.NewItem("fresh"))

	if listID != playlist.QuickPlaylistID {
		t.Error("item must land in the quick playlist")
	}
	quick := c.QuickPlaylist()
	if quick.Count() != 1 || quick.ItemOf(itemID).URL() != "fresh" {
		t.Error("quick playlist must hold exactly the new item")
	}
	if p.Current() != playlist.QuickPlaylistID {
		t.Error("the quick tab must take focus")
	}
}

func TestQuickQueueTogglesFocusedItem(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("a", "b"))
	view := p.AddTab(pl.UUID())
	target := pl.Items()[1]
	view.SetCurrent(target.UUID())

	p.QuickQueue()
	if pl.QueueFirst() != target.UUID() {
		t.Error("expected the focused item queued")
	}
	p.QuickQueue()
	if len(pl.Queue()) != 0 {
		t.Error("expected the second toggle to dequeue")
	}
}

func TestGetItemAfterDrainsQueueFirst(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("a", "b", "c"))
	items := pl.Items()
	pl.QueueToggle(items[2].UUID())
	pl.QueueToggle(items[0].UUID())

	// Queue entries pop in toggle order, each exactly once.
	if got := p.GetItemAfter(pl.UUID(), items[0].UUID()); got != items[2].UUID() {
		t.Errorf("expected first queued item, got %s", got)
	}
	if got := p.GetItemAfter(pl.UUID(), items[2].UUID()); got != items[0].UUID() {
		t.Errorf("expected second queued item, got %s", got)
	}
	// Queue spent: main-sequence order resumes after the given item.
	if got := p.GetItemAfter(pl.UUID(), items[0].UUID()); got != items[1].UUID() {
		t.Errorf("expected the sequence successor, got %s", got)
	}
	if got := p.GetItemAfter(pl.UUID(), items[2].UUID()); got != uuid.Nil {
		t.Error("expected no successor past the last item")
	}
}

func TestGetItemBeforeIgnoresQueue(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("a", "b"))
	items := pl.Items()
	pl.QueueToggle(items[0].UUID())

	if got := p.GetItemBefore(pl.UUID(), items[1].UUID()); got != items[0].UUID() {
		t.Error("previous must follow pure sequence order")
	}
	if len(pl.Queue()) != 1 {
		t.Error("previous must never consume the queue")
	}
}

func TestNowPlayingChangedConsumesMatchingQueueHead(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("a", "b"))
	items := pl.Items()
	pl.QueueToggle(items[1].UUID())
	view := p.AddTab(pl.UUID())

	p.NowPlayingChanged(pl.UUID(), items[1].UUID())

	if len(pl.Queue()) != 0 {
		t.Error("starting a queued item must spend its queue entry")
	}
	if view.NowPlaying() != items[1].UUID() || view.CurrentItem() != items[1].UUID() {
		t.Error("marker and focus must follow the started item")
	}

	// A non-queued start leaves the queue alone.
	pl.QueueToggle(items[1].UUID())
	p.NowPlayingChanged(pl.UUID(), items[0].UUID())
	if len(pl.Queue()) != 1 {
		t.Error("starting a different item must not touch the queue")
	}
}

func TestPlayCurrentItemEmitsDesire(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("a"))
	view := p.AddTab(pl.UUID())
	view.SetCurrent(pl.Items()[0].UUID())

	var gotList, gotItem uuid.UUID
	p.OnItemDesired(func(playlistID, itemID uuid.UUID) {
		gotList, gotItem = playlistID, itemID
	})
	p.PlayCurrentItem()

	if gotList != pl.UUID() || gotItem != pl.Items()[0].UUID() {
		t.Error("expected a request-to-play for the focused item")
	}
}

func TestURLOfMisses(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("file:///a.mp3"))

	if got := p.URLOf(pl.UUID(), pl.Items()[0].UUID()); got != "file:///a.mp3" {
		t.Errorf("unexpected url %q", got)
	}
	if p.URLOf(pl.UUID(), uuid.New()) != "" {
		t.Error("unknown item must resolve to an empty url")
	}
	if p.URLOf(uuid.New(), pl.Items()[0].UUID()) != "" {
		t.Error("unknown playlist must resolve to an empty url")
	}
}

func TestSetMetadataRefreshesView(t *testing.T) {
	c, p := newTestPanel(t)
	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("a"))
	item := pl.Items()[0]
	p.AddTab(pl.UUID())

	p.SetMetadata(pl.UUID(), item.UUID(), map[string]string{"title": "Learned Title"})

	if item.MetadataValue("title") != "Learned Title" {
		t.Error("metadata update must reach the item")
	}
}

func TestAsyncFilterAppliedToView(t *testing.T) {
	c := playlist.NewCollection()
	s := searching.NewSearcher()
	defer s.Close()
	p := NewPanel(c, s)

	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("alpha", "beta"))
	view := p.AddTab(pl.UUID())

	p.SetFilterAsync("alpha")
	select {
	case res := <-s.Results():
		p.ApplyFilterResult(res)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the filter result")
	}

	if view.RowCount() != 1 || view.UUIDAtRow(0) != pl.Items()[0].UUID() {
		t.Error("expected the async filter to hide the non-matching row")
	}
}

func TestStaleFilterResultDiscarded(t *testing.T) {
	c := playlist.NewCollection()
	s := searching.NewSearcher()
	defer s.Close()
	p := NewPanel(c, s)

	pl := c.NewPlaylist("q")
	pl.AppendItems(itemsOf("alpha", "beta"))
	view := p.AddTab(pl.UUID())

	stale := searching.Result{
		Seq:        p.SetFilterAsync("alpha"),
		ListID:     pl.UUID(),
		FilterText: "alpha",
		Visible:    map[uuid.UUID]bool{pl.Items()[0].UUID(): true},
	}
	p.SetFilterAsync("") // supersedes the first request

	p.ApplyFilterResult(stale)
	if view.FilterText() == "alpha" {
		t.Error("a superseded result must never reach the view")
	}
}
