package playlists

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"playdeck/src/features/config"
	"playdeck/src/features/searching"
	"playdeck/src/features/viewsync"
	"playdeck/src/playlist"
)

// fakeStore keeps the session document in memory.
type fakeStore struct {
	data  []byte
	saves int
}

func (f *fakeStore) Save(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	f.data = data
	f.saves++
	return nil
}

func (f *fakeStore) Load(into any) (bool, error) {
	if f.data == nil {
		return false, nil
	}
	return true, json.Unmarshal(f.data, into)
}

// fakeReader serves canned tags per path.
type fakeReader struct {
	tags map[string]map[string]string
}

func (f *fakeReader) ReadFileTags(_ context.Context, path string) (map[string]string, error) {
	if tags, ok := f.tags[path]; ok {
		return tags, nil
	}
	return nil, errors.New("no tags")
}

type fakeThumbs struct {
	path string
}

func (f *fakeThumbs) ThumbnailFor(context.Context, string) (string, error) {
	return f.path, nil
}

func newTestService(t *testing.T) (*Service, *playlist.Collection, *viewsync.Panel, *fakeStore) {
	t.Helper()
	cfg := config.NewManager(&config.Config{
		Import: config.Import{ReadTags: true},
	})
	collection := playlist.NewCollection()
	panel := viewsync.NewPanel(collection, nil)
	store := &fakeStore{}
	reader := &fakeReader{tags: map[string]map[string]string{
		"/music/tagged.mp3": {"title": "Tagged", "artist": "Somebody"},
	}}
	svc := NewService(collection, panel, nil, store, reader, &fakeThumbs{}, cfg)
	return svc, collection, panel, store
}

func TestCreatePlaylistOpensTab(t *testing.T) {
	svc, collection, panel, _ := newTestService(t)

	summary := svc.CreatePlaylist("road trip")

	if collection.PlaylistOf(summary.ID) == nil {
		t.Fatal("playlist not registered in the collection")
	}
	if panel.View(summary.ID) == nil || panel.Current() != summary.ID {
		t.Error("new playlist must open as the current tab")
	}
	if !summary.Open || summary.Quick {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestAddURLsReadsTags(t *testing.T) {
	svc, collection, _, _ := newTestService(t)
	created := svc.CreatePlaylist("inbox")

	listID, ids, err := svc.AddURLs(context.Background(), []string{"/music/tagged.mp3", "/music/bare.mp3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listID != created.ID || len(ids) != 2 {
		t.Fatalf("unexpected target %s / %d items", listID, len(ids))
	}

	pl := collection.PlaylistOf(listID)
	tagged := pl.ItemOf(ids[0])
	if tagged.MetadataValue("title") != "Tagged" || tagged.MetadataValue("artist") != "Somebody" {
		t.Error("embedded tags must reach the item metadata")
	}
	if bare := pl.ItemOf(ids[1]); bare.MetadataValue("title") != "" {
		t.Error("an untagged file must stay bare")
	}
}

func TestRemoveItemsPrunesQueue(t *testing.T) {
	svc, collection, _, _ := newTestService(t)
	created := svc.CreatePlaylist("q")
	_, ids, err := svc.AddURLs(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.QueueToggle(created.ID, ids[0]); err != nil {
		t.Fatal(err)
	}

	if err := svc.RemoveItems(created.ID, ids[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pl := collection.PlaylistOf(created.ID)
	if pl.Count() != 1 || len(pl.Queue()) != 0 {
		t.Error("deletion must remove the item and its queue entry")
	}
}

func TestMoveItemsKeepsQueue(t *testing.T) {
	svc, collection, _, _ := newTestService(t)
	created := svc.CreatePlaylist("q")
	_, ids, err := svc.AddURLs(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.QueueToggle(created.ID, ids[0]); err != nil {
		t.Fatal(err)
	}

	if err := svc.MoveItems(created.ID, ids[:1], ids[2]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pl := collection.PlaylistOf(created.ID)
	if got := pl.ToStringList(); got[2] != "a" {
		t.Errorf("unexpected order %v", got)
	}
	if pl.QueueFirst() != ids[0] {
		t.Error("reorder must not prune the queue")
	}
}

func TestSortByMetadataKey(t *testing.T) {
	svc, collection, _, _ := newTestService(t)
	created := svc.CreatePlaylist("sortable")
	pl := collection.PlaylistOf(created.ID)
	items := []*playlist.Item{
		playlist.RestoreItem(uuid.New(), "c.mp3", map[string]string{"title": "Charlie"}),
		playlist.RestoreItem(uuid.New(), "a.mp3", map[string]string{"title": "alpha"}),
		playlist.RestoreItem(uuid.New(), "b.mp3", map[string]string{"title": "Bravo"}),
	}
	pl.AppendItems(items)

	if err := svc.Sort(created.ID, "title", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a.mp3", "b.mp3", "c.mp3"}
	for i, url := range pl.ToStringList() {
		if url != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], url)
		}
	}

	if err := svc.Sort(created.ID, "original", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pl.ToStringList(); got[0] != "c.mp3" {
		t.Errorf("expected the pre-sort order back, got %v", got)
	}

	if err := svc.Sort(created.ID, "nope", false); !errors.Is(err, ErrUnknownSortKey) {
		t.Errorf("expected ErrUnknownSortKey, got %v", err)
	}
}

func TestImportM3UContent(t *testing.T) {
	svc, collection, panel, _ := newTestService(t)

	content := strings.Join([]string{
		"#EXTM3U",
		"#EXTINF:120,Artist - Song",
		"file:///music/song.mp3",
		"file:///music/other.mp3",
	}, "\n")

	summary, err := svc.ImportM3UContent(context.Background(), "imported", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pl := collection.PlaylistOf(summary.ID)
	if pl == nil || pl.Count() != 2 {
		t.Fatal("import must create a playlist with every entry")
	}
	if pl.First().MetadataValue("artist") != "Artist" {
		t.Error("directive metadata must reach the imported items")
	}
	if panel.View(summary.ID) == nil {
		t.Error("an imported playlist must open as a tab")
	}
}

func TestImportM3UContentAllOrNothing(t *testing.T) {
	svc, collection, _, _ := newTestService(t)
	before := len(collection.Playlists())

	_, err := svc.ImportM3UContent(context.Background(), "broken", "#EXTINF:oops,Bad\nx.mp3")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if len(collection.Playlists()) != before {
		t.Error("a failed import must not create a playlist")
	}
}

func TestExportM3UContent(t *testing.T) {
	svc, collection, _, _ := newTestService(t)
	created := svc.CreatePlaylist("export")
	pl := collection.PlaylistOf(created.ID)
	pl.AppendItems([]*playlist.Item{
		playlist.RestoreItem(uuid.New(), "file:///a.mp3", map[string]string{"title": "A", "duration": "30"}),
	})

	content, err := svc.ExportM3UContent(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(content, "#EXTM3U") || !strings.Contains(content, "#EXTINF:30,A") {
		t.Errorf("unexpected export content:\n%s", content)
	}

	if _, err := svc.ExportM3UContent(uuid.New()); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	svc, _, _, store := newTestService(t)
	created := svc.CreatePlaylist("persisted")
	_, ids, err := svc.AddURLs(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.QueueToggle(created.ID, ids[1]); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveSession(); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// A fresh engine restores from the same store.
	cfg := config.NewManager(&config.Config{})
	collection2 := playlist.NewCollection()
	panel2 := viewsync.NewPanel(collection2, nil)
	svc2 := NewService(collection2, panel2, nil, store, nil, nil, cfg)
	if err := svc2.LoadSession(); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	restored := collection2.PlaylistOf(created.ID)
	if restored == nil || restored.Title() != "persisted" || restored.Count() != 2 {
		t.Fatal("playlist did not survive the round trip")
	}
	if restored.QueueFirst() != ids[1] {
		t.Error("queue must survive the round trip")
	}
	if panel2.View(created.ID) == nil || panel2.Current() != created.ID {
		t.Error("tabs and focus must survive the round trip")
	}
	// Item identities persist, so the restored queue still resolves.
	if restored.ItemOf(ids[0]) == nil {
		t.Error("item identities must survive the round trip")
	}
}

func TestLoadSessionWithoutDocument(t *testing.T) {
	svc, collection, _, _ := newTestService(t)

	if err := svc.LoadSession(); err != nil {
		t.Fatalf("a missing session must not be an error, got %v", err)
	}
	if len(collection.Playlists()) != 1 {
		t.Error("a fresh engine holds only the quick playlist")
	}
}

func TestFilterAppliedAcrossViews(t *testing.T) {
	cfg := config.NewManager(&config.Config{})
	collection := playlist.NewCollection()
	searcher := searching.NewSearcher()
	defer searcher.Close()
	panel := viewsync.NewPanel(collection, searcher)
	svc := NewService(collection, panel, searcher, nil, nil, nil, cfg)

	created := svc.CreatePlaylist("filterable")
	collection.PlaylistOf(created.ID).AppendItems([]*playlist.Item{
		playlist.NewItem("alpha.mp3"),
		playlist.NewItem("beta.mp3"),
	})

	svc.SetFilter("alpha")
	if got := panel.View(created.ID).RowCount(); got != 1 {
		t.Errorf("expected 1 visible row, got %d", got)
	}

	svc.SetFilter("")
	if got := panel.View(created.ID).RowCount(); got != 2 {
		t.Errorf("expected both rows back, got %d", got)
	}
}
