// Package playback tracks what is playing and resolves next/previous
// against the playlist views. It stands in for the player process: it
// never reorders or mutates playlists, it only asks the panel gateway
// what comes next and reports back what started.
package playback

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrNothingPlayable is returned when a play request cannot be resolved
// to a location.
var ErrNothingPlayable = errors.New("nothing playable")

// PanelGateway is the playlists service surface playback talks to. All
// calls are serialized on the playlists control path.
type PanelGateway interface {
	NextItem(playlistID, itemID uuid.UUID) uuid.UUID
	PreviousItem(playlistID, itemID uuid.UUID) uuid.UUID
	NotifyNowPlaying(playlistID, itemID uuid.UUID)
	ResolveURL(playlistID, itemID uuid.UUID) string
}

// Status is the wire form of the playback state.
type Status struct {
	Playing    bool      `json:"playing"`
	PlaylistID uuid.UUID `json:"playlistId,omitempty"`
	ItemID     uuid.UUID `json:"itemId,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// Service provides playback sequencing over the playlist views.
type Service struct {
	mu      sync.Mutex
	gateway PanelGateway

	playlistID uuid.UUID
	itemID     uuid.UUID
	url        string
}

// NewService creates a new playback service
func NewService(gateway PanelGateway) *Service {
	return &Service{gateway: gateway}
}

// Play starts the given item: resolves its location, marks it now-playing
// and remembers it as the playback position.
func (s *Service) Play(playlistID, itemID uuid.UUID) (Status, error) {
	slog.Debug("Play service called", "playlistID", playlistID, "itemID", itemID)

	url := s.gateway.ResolveURL(playlistID, itemID)
	if url == "" {
		slog.Error("Play failed", "playlistID", playlistID, "itemID", itemID, "error", ErrNothingPlayable)
		return s.Stop(), ErrNothingPlayable
	}

	s.mu.Lock()
	s.playlistID = playlistID
	s.itemID = itemID
	s.url = url
	s.mu.Unlock()

	s.gateway.NotifyNowPlaying(playlistID, itemID)
	slog.Info("Playback started", "playlistID", playlistID, "itemID", itemID, "url", url)
	return s.Current(), nil
}

// Next advances playback: queued items first, then the next item in the
// playlist's sequence. Reaching the end stops playback.
func (s *Service) Next() (Status, error) {
	s.mu.Lock()
	playlistID, itemID := s.playlistID, s.itemID
	s.mu.Unlock()
	slog.Debug("Next service called", "playlistID", playlistID, "itemID", itemID)

	next := s.gateway.NextItem(playlistID, itemID)
	if next == uuid.Nil {
		slog.Info("Playlist exhausted, stopping playback", "playlistID", playlistID)
		return s.Stop(), nil
	}
	return s.Play(playlistID, next)
}

// Previous steps back through the playlist's sequence; the start of the
// playlist stops playback.
func (s *Service) Previous() (Status, error) {
	s.mu.Lock()
	playlistID, itemID := s.playlistID, s.itemID
	s.mu.Unlock()
	slog.Debug("Previous service called", "playlistID", playlistID, "itemID", itemID)

	previous := s.gateway.PreviousItem(playlistID, itemID)
	if previous == uuid.Nil {
		slog.Info("At the start of the playlist, stopping playback", "playlistID", playlistID)
		return s.Stop(), nil
	}
	return s.Play(playlistID, previous)
}

// NowPlayingChanged records a track change the player performed on its
// own (gapless advance, stream redirect) and moves the now-playing
// marker accordingly.
func (s *Service) NowPlayingChanged(playlistID, itemID uuid.UUID, url string) Status {
	if url == "" {
		url = s.gateway.ResolveURL(playlistID, itemID)
	}
	s.mu.Lock()
	s.playlistID = playlistID
	s.itemID = itemID
	s.url = url
	s.mu.Unlock()

	s.gateway.NotifyNowPlaying(playlistID, itemID)
	slog.Debug("Now playing changed by player", "playlistID", playlistID, "itemID", itemID, "url", url)
	return s.Current()
}

// Stop clears the playback position and the now-playing marker.
func (s *Service) Stop() Status {
	s.mu.Lock()
	playlistID := s.playlistID
	s.playlistID = uuid.Nil
	s.itemID = uuid.Nil
	s.url = ""
	s.mu.Unlock()

	if playlistID != uuid.Nil {
		s.gateway.NotifyNowPlaying(playlistID, uuid.Nil)
	}
	return s.Current()
}

// Current returns the playback state.
func (s *Service) Current() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Playing:    s.itemID != uuid.Nil,
		PlaylistID: s.playlistID,
		ItemID:     s.itemID,
		URL:        s.url,
	}
}
