package playlist

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewCollectionHasQuickPlaylist(t *testing.T) {
	c := NewCollection()
	quick := c.PlaylistOf(QuickPlaylistID)
	if quick == nil {
		t.Fatal("expected the quick playlist to exist from the start")
	}
	if quick != c.QuickPlaylist() {
		t.Error("QuickPlaylist and PlaylistOf disagree")
	}
}

func TestNewPlaylistRegistersFreshIdentity(t *testing.T) {
	c := NewCollection()
	p := c.NewPlaylist("Mix")
	if p.UUID() == QuickPlaylistID {
		t.Error("new playlist must never get the quick-playlist identity")
	}
	if c.PlaylistOf(p.UUID()) != p {
		t.Error("new playlist not reachable through the registry")
	}
}

func TestPlaylistOfMissReturnsNil(t *testing.T) {
	c := NewCollection()
	if got := c.PlaylistOf(uuid.New()); got != nil {
		t.Errorf("expected nil for unknown identity, got %v", got)
	}
}

func TestRemovePlaylist(t *testing.T) {
	c := NewCollection()
	p := c.NewPlaylist("Mix")
	c.RemovePlaylist(p.UUID())
	if c.PlaylistOf(p.UUID()) != nil {
		t.Error("expected playlist to be unregistered")
	}
	// Unknown identity is a no-op.
	c.RemovePlaylist(uuid.New())
}

func TestRemoveQuickPlaylistClearsInstead(t *testing.T) {
	c := NewCollection()
	quick := c.QuickPlaylist()
	quick.AppendItems([]*Item{NewItem("a")})

	c.RemovePlaylist(QuickPlaylistID)

	if got := c.QuickPlaylist(); got == nil {
		t.Fatal("quick playlist must survive removal")
	} else if !got.IsEmpty() {
		t.Error("expected quick playlist to be cleared")
	}
}

func TestCloneIsolation(t *testing.T) {
	c := NewCollection()
	p := c.NewPlaylist("Mix")
	p.AppendItems([]*Item{NewItem("a"), NewItem("b")})
	p.Items()[0].SetMetadata(map[string]string{"title": "A"})

	clone := c.ClonePlaylist(p.UUID())
	if clone == nil {
		t.Fatal("expected a clone")
	}
	if clone.Title() != "Mix (copy)" {
		t.Errorf("unexpected derived title %q", clone.Title())
	}

	// Same locations and metadata, fresh identities.
	for i, item := range clone.Items() {
		orig := p.Items()[i]
		if item.URL() != orig.URL() {
			t.Errorf("clone item %d url %q != %q", i, item.URL(), orig.URL())
		}
		if item.UUID() == orig.UUID() {
			t.Errorf("clone item %d shares identity with the original", i)
		}
	}
	if clone.Items()[0].MetadataValue("title") != "A" {
		t.Error("expected metadata to be carried into the clone")
	}

	// Mutating the clone leaves the original untouched.
	clone.AppendItems([]*Item{NewItem("c")})
	clone.RemoveItems([]uuid.UUID{clone.Items()[0].UUID()})
	if p.Count() != 2 {
		t.Errorf("original count changed to %d", p.Count())
	}
	if p.ToStringList()[0] != "a" || p.ToStringList()[1] != "b" {
		t.Error("original order changed")
	}
}

func TestClonePlaylistUnknownSource(t *testing.T) {
	c := NewCollection()
	if got := c.ClonePlaylist(uuid.New()); got != nil {
		t.Errorf("expected nil clone for unknown source, got %v", got)
	}
}

func TestPlaylistsOrder(t *testing.T) {
	c := NewCollection()
	a := c.NewPlaylist("A")
	b := c.NewPlaylist("B")

	all := c.Playlists()
	if len(all) != 3 {
		t.Fatalf("expected 3 playlists, got %d", len(all))
	}
	if all[0].UUID() != QuickPlaylistID || all[1] != a || all[2] != b {
		t.Error("expected creation order with the quick playlist first")
	}
}

func TestRestorePlaylistKeepsIdentity(t *testing.T) {
	c := NewCollection()
	id := uuid.New()
	p := c.RestorePlaylist(id, "Saved")
	if p.UUID() != id {
		t.Errorf("expected restored identity %s, got %s", id, p.UUID())
	}
	if c.PlaylistOf(id) != p {
		t.Error("restored playlist not registered")
	}
}
