package playback

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"playdeck/src/features/playlists"
	"playdeck/src/features/viewsync"
	"playdeck/src/playlist"
)

func newTestPlayback(t *testing.T) (*Service, *playlist.Playlist, []uuid.UUID, *viewsync.Panel) {
	t.Helper()
	collection := playlist.NewCollection()
	panel := viewsync.NewPanel(collection, nil)
	svc := playlists.NewService(collection, panel, nil, nil, nil, nil, nil)

	created := svc.CreatePlaylist("playable")
	pl := collection.PlaylistOf(created.ID)
	items := []*playlist.Item{
		playlist.NewItem("file:///a.mp3"),
		playlist.NewItem("file:///b.mp3"),
		playlist.NewItem("file:///c.mp3"),
	}
	pl.AppendItems(items)
	panel.Repopulate(created.ID)

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UUID())
	}
	return NewService(svc), pl, ids, panel
}

func TestPlayMarksNowPlaying(t *testing.T) {
	svc, pl, ids, panel := newTestPlayback(t)

	status, err := svc.Play(pl.UUID(), ids[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Playing || status.URL != "file:///a.mp3" {
		t.Errorf("unexpected status %+v", status)
	}
	if panel.View(pl.UUID()).NowPlaying() != ids[0] {
		t.Error("the view marker must follow the started item")
	}
}

func TestPlayUnknownItem(t *testing.T) {
	svc, pl, _, _ := newTestPlayback(t)

	if _, err := svc.Play(pl.UUID(), uuid.New()); !errors.Is(err, ErrNothingPlayable) {
		t.Errorf("expected ErrNothingPlayable, got %v", err)
	}
	if svc.Current().Playing {
		t.Error("a failed play request must leave playback stopped")
	}
}

func TestNextFollowsSequence(t *testing.T) {
	svc, pl, ids, _ := newTestPlayback(t)

	if _, err := svc.Play(pl.UUID(), ids[0]); err != nil {
		t.Fatal(err)
	}
	status, err := svc.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.ItemID != ids[1] {
		t.Errorf("expected the sequence successor, got %s", status.ItemID)
	}
}

func TestNextPrefersQueue(t *testing.T) {
	svc, pl, ids, _ := newTestPlayback(t)
	pl.QueueToggle(ids[2])

	if _, err := svc.Play(pl.UUID(), ids[0]); err != nil {
		t.Fatal(err)
	}
	status, err := svc.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.ItemID != ids[2] {
		t.Errorf("expected the queued item, got %s", status.ItemID)
	}
	if len(pl.Queue()) != 0 {
		t.Error("the queue entry must be spent after playing")
	}

	// Queue drained: next resumes after the playing item in sequence order.
	status, err = svc.Next()
	if err != nil {
		t.Fatal(err)
	}
	if status.Playing {
		t.Errorf("expected playback to stop past the last item, got %+v", status)
	}
}

func TestNextStopsAtEnd(t *testing.T) {
	svc, pl, ids, panel := newTestPlayback(t)

	if _, err := svc.Play(pl.UUID(), ids[2]); err != nil {
		t.Fatal(err)
	}
	status, err := svc.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Playing {
		t.Error("expected playback stopped at the end of the playlist")
	}
	if panel.View(pl.UUID()).NowPlaying() != uuid.Nil {
		t.Error("stopping must clear the now-playing marker")
	}
}

func TestNowPlayingChangedConsumesQueueHead(t *testing.T) {
	svc, pl, ids, panel := newTestPlayback(t)
	pl.QueueToggle(ids[1])

	status := svc.NowPlayingChanged(pl.UUID(), ids[1], "")
	if !status.Playing || status.URL != "file:///b.mp3" {
		t.Errorf("unexpected status %+v", status)
	}
	if panel.View(pl.UUID()).NowPlaying() != ids[1] {
		t.Error("the view marker must follow the reported item")
	}
	if len(pl.Queue()) != 0 {
		t.Error("a matching queue head must be consumed")
	}
}

func TestPreviousIgnoresQueue(t *testing.T) {
	svc, pl, ids, _ := newTestPlayback(t)
	pl.QueueToggle(ids[0])

	if _, err := svc.Play(pl.UUID(), ids[2]); err != nil {
		t.Fatal(err)
	}
	status, err := svc.Previous()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.ItemID != ids[1] {
		t.Errorf("previous must follow pure sequence order, got %s", status.ItemID)
	}
	if len(pl.Queue()) != 1 {
		t.Error("previous must never consume the queue")
	}
}
