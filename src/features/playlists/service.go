package playlists

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"playdeck/src/features/config"
	"playdeck/src/features/metrics"
	"playdeck/src/features/searching"
	"playdeck/src/features/viewsync"
	"playdeck/src/infra/m3u"
	"playdeck/src/playlist"
)

var (
	// ErrPlaylistNotFound is returned for operations on an unknown playlist.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrItemNotFound is returned for operations on an unknown item.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnknownSortKey is returned for a sort request with an unsupported key.
	ErrUnknownSortKey = errors.New("unknown sort key")
)

// MetadataReader reads embedded tags from a local media file.
type MetadataReader interface {
	ReadFileTags(ctx context.Context, filePath string) (map[string]string, error)
}

// Thumbnailer resolves a location to a cached thumbnail path, "" when the
// location has none.
type Thumbnailer interface {
	ThumbnailFor(ctx context.Context, url string) (string, error)
}

// SessionStore persists the session document.
type SessionStore interface {
	Save(doc any) error
	Load(into any) (bool, error)
}

// Service is the domain service for the playlists feature. Every mutation
// of the collection, the panel and its views goes through the service's
// single mutex; that is the one control path the data model is documented
// to require. The background searcher only ever touches snapshots, and its
// results re-enter through Run under the same lock.
type Service struct {
	mu            sync.Mutex
	collection    *playlist.Collection
	panel         *viewsync.Panel
	searcher      *searching.Searcher
	store         SessionStore
	reader        MetadataReader
	thumbs        Thumbnailer
	configManager *config.Manager
}

// NewService creates a new playlists service. store, reader, thumbs and
// cfgManager may be nil; the corresponding features degrade gracefully.
func NewService(
	collection *playlist.Collection,
	panel *viewsync.Panel,
	searcher *searching.Searcher,
	store SessionStore,
	reader MetadataReader,
	thumbs Thumbnailer,
	cfgManager *config.Manager,
) *Service {
	return &Service{
		collection:    collection,
		panel:         panel,
		searcher:      searcher,
		store:         store,
		reader:        reader,
		thumbs:        thumbs,
		configManager: cfgManager,
	}
}

// Run pumps background search results into the panel until the context is
// cancelled. Results are applied under the service lock, so views never see
// a filter pass race a structural mutation.
func (s *Service) Run(ctx context.Context) {
	if s.searcher == nil {
		return
	}
	for {
		select {
		case res, ok := <-s.searcher.Results():
			if !ok {
				return
			}
			s.mu.Lock()
			s.panel.ApplyFilterResult(res)
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// PlaylistSummary is the wire form of a playlist header.
type PlaylistSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Count int       `json:"count"`
	Quick bool      `json:"quick"`
	Open  bool      `json:"open"`
}

// ItemSummary is the wire form of one row.
type ItemSummary struct {
	ID         uuid.UUID         `json:"id"`
	URL        string            `json:"url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Queued     int               `json:"queued,omitempty"` // 1-based queue position
	NowPlaying bool              `json:"nowPlaying,omitempty"`
	Visible    bool              `json:"visible"`
}

// CreatePlaylist creates a new playlist and opens a tab for it.
func (s *Service) CreatePlaylist(title string) PlaylistSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("CreatePlaylist service called", "title", title)

	pl := s.collection.NewPlaylist(title)
	s.panel.AddTab(pl.UUID())
	metrics.PlaylistsCreated.Inc()

	slog.Debug("CreatePlaylist completed", "id", pl.UUID(), "title", title)
	return s.summaryOf(pl)
}

// ClonePlaylist duplicates a playlist under fresh identities and opens a
// tab for the copy.
func (s *Service) ClonePlaylist(id uuid.UUID) (PlaylistSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("ClonePlaylist service called", "id", id)

	copied := s.collection.ClonePlaylist(id)
	if copied == nil {
		slog.Error("ClonePlaylist failed", "id", id, "error", ErrPlaylistNotFound)
		return PlaylistSummary{}, fmt.Errorf("clone %s: %w", id, ErrPlaylistNotFound)
	}
	s.panel.AddTab(copied.UUID())
	metrics.PlaylistsCreated.Inc()

	slog.Debug("ClonePlaylist completed", "id", id, "copy", copied.UUID())
	return s.summaryOf(copied), nil
}

// RenamePlaylist changes a playlist's title.
func (s *Service) RenamePlaylist(id uuid.UUID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("RenamePlaylist service called", "id", id, "title", title)

	pl := s.collection.PlaylistOf(id)
	if pl == nil {
		return fmt.Errorf("rename %s: %w", id, ErrPlaylistNotFound)
	}
	pl.SetTitle(title)
	return nil
}

// RemovePlaylist removes a playlist (and closes its tab). The quick
// playlist is emptied instead of destroyed.
func (s *Service) RemovePlaylist(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("RemovePlaylist service called", "id", id)

	if s.panel.View(id) != nil {
		s.panel.CloseTab(id)
		return
	}
	s.collection.RemovePlaylist(id)
}

// Playlists returns the headers of every playlist in creation order.
func (s *Service) Playlists() []PlaylistSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.collection.Playlists()
	summaries := make([]PlaylistSummary, 0, len(all))
	for _, pl := range all {
		summaries = append(summaries, s.summaryOf(pl))
	}
	return summaries
}

func (s *Service) summaryOf(pl *playlist.Playlist) PlaylistSummary {
	return PlaylistSummary{
		ID:    pl.UUID(),
		Title: pl.Title(),
		Count: pl.Count(),
		Quick: pl.UUID() == playlist.QuickPlaylistID,
		Open:  s.panel.View(pl.UUID()) != nil,
	}
}

// PlaylistItems returns every item of a playlist in main-sequence order,
// annotated with its queue position, now-playing state and row visibility.
func (s *Service) PlaylistItems(id uuid.UUID) ([]ItemSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pl := s.collection.PlaylistOf(id)
	if pl == nil {
		return nil, fmt.Errorf("items of %s: %w", id, ErrPlaylistNotFound)
	}

	queuePos := make(map[uuid.UUID]int)
	for i, queued := range pl.Queue() {
		queuePos[queued] = i + 1
	}
	view := s.panel.View(id)

	summaries := make([]ItemSummary, 0, pl.Count())
	pl.IterateItems(func(item *playlist.Item) {
		summary := ItemSummary{
			ID:       item.UUID(),
			URL:      item.URL(),
			Metadata: item.Metadata(),
			Queued:   queuePos[item.UUID()],
			Visible:  true,
		}
		if view != nil {
			_, summary.Visible = view.RowOf(item.UUID())
			summary.NowPlaying = view.NowPlaying() == item.UUID()
		}
		summaries = append(summaries, summary)
	})
	return summaries, nil
}

// AddURLs builds items for the given locations, enriches them with
// embedded tags and thumbnails where possible, and inserts them into the
// current playlist after the selection. Returns the target playlist and
// the new item identities.
func (s *Service) AddURLs(ctx context.Context, urls []string) (uuid.UUID, []uuid.UUID, error) {
	items, err := s.buildItems(ctx, urls)
	if err != nil {
		return uuid.Nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("AddURLs service called", "count", len(urls))

	listID, _ := s.panel.AddToCurrent(items)
	metrics.ItemsAdded.Add(float64(len(items)))

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UUID())
	}
	slog.Debug("AddURLs completed", "playlistID", listID, "added", len(ids))
	return listID, ids, nil
}

// PlayURL loads a single location into the quick playlist and requests
// playback of it.
func (s *Service) PlayURL(ctx context.Context, url string) (uuid.UUID, uuid.UUID, error) {
	items, err := s.buildItems(ctx, []string{url})
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("PlayURL service called", "url", url)

	listID, itemID := s.panel.ItemToQuickPlaylist(items[0])
	metrics.ItemsAdded.Inc()
	s.panel.Desire(listID, itemID)
	return listID, itemID, nil
}

// buildItems runs tag reading and thumbnail extraction outside the lock;
// the items are not shared until they are added.
func (s *Service) buildItems(ctx context.Context, urls []string) ([]*playlist.Item, error) {
	if len(urls) == 0 {
		return nil, errors.New("no locations given")
	}
	readTags := s.reader != nil && s.configManager != nil && s.configManager.Get().Import.ReadTags

	items := make([]*playlist.Item, 0, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		item := playlist.NewItem(url)
		metadata := map[string]string{}
		if readTags {
			tags, err := s.reader.ReadFileTags(ctx, strings.TrimPrefix(url, "file://"))
			if err != nil {
				slog.Debug("no readable tags", "url", url, "error", err)
			} else {
				metadata = tags
			}
		}
		if s.thumbs != nil {
			thumb, err := s.thumbs.ThumbnailFor(ctx, url)
			if err != nil {
				slog.Warn("thumbnail extraction failed", "url", url, "error", err)
			} else if thumb != "" {
				metadata["thumbnail"] = thumb
			}
		}
		if len(metadata) > 0 {
			item.SetMetadata(metadata)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, errors.New("no locations given")
	}
	return items, nil
}

// RemoveItems permanently deletes items from a playlist, pruning their
// queue entries.
func (s *Service) RemoveItems(playlistID uuid.UUID, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("RemoveItems service called", "playlistID", playlistID, "count", len(ids))

	pl := s.collection.PlaylistOf(playlistID)
	if pl == nil {
		return fmt.Errorf("remove from %s: %w", playlistID, ErrPlaylistNotFound)
	}
	pl.RemoveItems(ids)
	s.panel.Repopulate(playlistID)
	return nil
}

// MoveItems reorders items within a playlist: the moved set is reinserted
// after the anchor (uuid.Nil for the head). Queue entries survive.
func (s *Service) MoveItems(playlistID uuid.UUID, moved []uuid.UUID, after uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("MoveItems service called", "playlistID", playlistID, "count", len(moved))

	view := s.panel.View(playlistID)
	if view == nil {
		pl := s.collection.PlaylistOf(playlistID)
		if pl == nil {
			return fmt.Errorf("move in %s: %w", playlistID, ErrPlaylistNotFound)
		}
		items := make([]*playlist.Item, 0, len(moved))
		for _, id := range moved {
			if item := pl.ItemOf(id); item != nil {
				items = append(items, item)
			}
		}
		pl.AddItems(after, pl.TakeItemsRaw(items))
		return nil
	}
	view.MoveItems(moved, after)
	return nil
}

// QueueToggle flips an item's queue membership.
func (s *Service) QueueToggle(playlistID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("QueueToggle service called", "playlistID", playlistID, "itemID", itemID)

	pl := s.collection.PlaylistOf(playlistID)
	if pl == nil {
		return fmt.Errorf("queue in %s: %w", playlistID, ErrPlaylistNotFound)
	}
	if pl.ItemOf(itemID) == nil {
		return fmt.Errorf("queue %s: %w", itemID, ErrItemNotFound)
	}
	pl.QueueToggle(itemID)
	return nil
}

// Queue returns a playlist's queue in priority order.
func (s *Service) Queue(playlistID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pl := s.collection.PlaylistOf(playlistID)
	if pl == nil {
		return nil, fmt.Errorf("queue of %s: %w", playlistID, ErrPlaylistNotFound)
	}
	return pl.Queue(), nil
}

// Sort reorders a playlist by the given key. "original" restores the order
// captured by the previous sort; queue entries always survive.
func (s *Service) Sort(playlistID uuid.UUID, key string, descending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("Sort service called", "playlistID", playlistID, "key", key, "descending", descending)

	pl := s.collection.PlaylistOf(playlistID)
	if pl == nil {
		return fmt.Errorf("sort %s: %w", playlistID, ErrPlaylistNotFound)
	}

	switch key {
	case "url":
		sortText(pl, descending, func(i *playlist.Item) string { return i.URL() })
	case "title", "artist", "album":
		sortText(pl, descending, func(i *playlist.Item) string { return i.MetadataValue(key) })
	case "duration":
		sortInt(pl, descending, func(i *playlist.Item) int {
			n, _ := strconv.Atoi(i.MetadataValue("duration"))
			return n
		})
	case "original":
		playlist.SortByOriginalPosition(pl)
	default:
		return fmt.Errorf("sort by %q: %w", key, ErrUnknownSortKey)
	}

	s.panel.Repopulate(playlistID)
	return nil
}

func sortText(pl *playlist.Playlist, descending bool, key func(*playlist.Item) string) {
	playlist.SortBy(pl, func(i *playlist.Item) string { return strings.ToLower(key(i)) },
		func(a, b string) bool {
			if descending {
				return a > b
			}
			return a < b
		})
}

func sortInt(pl *playlist.Playlist, descending bool, key func(*playlist.Item) int) {
	playlist.SortBy(pl, key, func(a, b int) bool {
		if descending {
			return a > b
		}
		return a < b
	})
}

// SetFilter applies filter text synchronously to every open view.
func (s *Service) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("SetFilter service called", "text", text)

	s.panel.SetFilter(text)
	metrics.SearchRequests.Inc()
}

// SetFilterAsync snapshots the current view and hands the filter pass to
// the background searcher; the matching result is applied by Run.
func (s *Service) SetFilterAsync(text string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("SetFilterAsync service called", "text", text)

	metrics.SearchRequests.Inc()
	return s.panel.SetFilterAsync(text)
}

// Tabs returns the open tabs in display order plus the current one.
func (s *Service) Tabs() ([]uuid.UUID, uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel.Tabs(), s.panel.Current()
}

// OpenTab opens (or focuses) a tab for an existing playlist.
func (s *Service) OpenTab(playlistID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("OpenTab service called", "playlistID", playlistID)

	if s.collection.PlaylistOf(playlistID) == nil {
		return fmt.Errorf("open tab %s: %w", playlistID, ErrPlaylistNotFound)
	}
	s.panel.AddTab(playlistID)
	return nil
}

// CloseTab closes a tab; the quick playlist's tab is emptied, not closed.
func (s *Service) CloseTab(playlistID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("CloseTab service called", "playlistID", playlistID)

	s.panel.CloseTab(playlistID)
}

// SetCurrentTab focuses an open tab.
func (s *Service) SetCurrentTab(playlistID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SetCurrent(playlistID)
}

// QuickQueue toggles queue membership of the focused item of the current
// tab.
func (s *Service) QuickQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.QuickQueue()
}

// NextItem resolves what plays after the given item: queue entries first
// (each consumed exactly once), then main-sequence order. uuid.Nil means
// the playlist is exhausted.
func (s *Service) NextItem(playlistID, itemID uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.PlaybackAdvances.WithLabelValues("next").Inc()
	return s.panel.GetItemAfter(playlistID, itemID)
}

// PreviousItem resolves what plays before the given item in pure
// main-sequence order; the queue is never consulted.
func (s *Service) PreviousItem(playlistID, itemID uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.PlaybackAdvances.WithLabelValues("previous").Inc()
	return s.panel.GetItemBefore(playlistID, itemID)
}

// NotifyNowPlaying feeds a playback state change back into the views:
// the matching queue head is consumed and the marker follows the item.
func (s *Service) NotifyNowPlaying(playlistID, itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.NowPlayingChanged(playlistID, itemID)
}

// RequestPlay emits a request-to-play for an arbitrary item.
func (s *Service) RequestPlay(playlistID, itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.Desire(playlistID, itemID)
}

// ResolveURL resolves an item's location, "" on any miss.
func (s *Service) ResolveURL(playlistID, itemID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel.URLOf(playlistID, itemID)
}

// SetItemMetadata replaces an item's metadata (e.g. with details learned
// during playback) and refreshes its view.
func (s *Service) SetItemMetadata(playlistID, itemID uuid.UUID, metadata map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SetMetadata(playlistID, itemID, metadata)
}

// ImportM3U imports an M3U file as a new playlist. The import is
// all-or-nothing: a parse failure creates no playlist.
func (s *Service) ImportM3U(ctx context.Context, filePath, title string) (PlaylistSummary, error) {
	slog.Debug("ImportM3U service called", "filePath", filePath, "title", title)

	content, err := os.ReadFile(filePath)
	if err != nil {
		slog.Error("ImportM3U: failed to read file", "filePath", filePath, "error", err)
		return PlaylistSummary{}, fmt.Errorf("failed to read M3U file: %w", err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	return s.ImportM3UContent(ctx, title, string(content))
}

// ImportM3UContent imports M3U content as a new playlist, all-or-nothing.
func (s *Service) ImportM3UContent(ctx context.Context, title, content string) (PlaylistSummary, error) {
	entries, err := m3u.Parse(content)
	if err != nil {
		slog.Error("ImportM3U: parse failed", "title", title, "error", err)
		return PlaylistSummary{}, fmt.Errorf("failed to parse M3U: %w", err)
	}

	items := make([]*playlist.Item, 0, len(entries))
	for _, entry := range entries {
		item := playlist.NewItem(entry.URL)
		if entry.Metadata != nil {
			item.SetMetadata(entry.Metadata)
		}
		items = append(items, item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pl := s.collection.NewPlaylist(title)
	pl.AppendItems(items)
	s.panel.AddTab(pl.UUID())
	metrics.PlaylistsCreated.Inc()
	metrics.ItemsAdded.Add(float64(len(items)))
	metrics.ImportsCompleted.Inc()

	slog.Info("ImportM3U completed", "playlistID", pl.UUID(), "title", title, "items", len(items))
	return s.summaryOf(pl), nil
}

// ExportM3U writes a playlist to an M3U file.
func (s *Service) ExportM3U(playlistID uuid.UUID, filePath string) error {
	content, err := s.ExportM3UContent(playlistID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		slog.Error("ExportM3U: failed to write file", "filePath", filePath, "error", err)
		return fmt.Errorf("failed to write M3U file: %w", err)
	}
	slog.Debug("ExportM3U completed", "playlistID", playlistID, "filePath", filePath)
	return nil
}

// ExportM3UContent renders a playlist as extended M3U content.
func (s *Service) ExportM3UContent(playlistID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Debug("ExportM3U service called", "playlistID", playlistID)

	pl := s.collection.PlaylistOf(playlistID)
	if pl == nil {
		return "", fmt.Errorf("export %s: %w", playlistID, ErrPlaylistNotFound)
	}

	entries := make([]m3u.Entry, 0, pl.Count())
	pl.IterateItems(func(item *playlist.Item) {
		entries = append(entries, m3u.Entry{URL: item.URL(), Metadata: item.Metadata()})
	})
	return m3u.Generate(entries), nil
}

// HandleDrops imports playlist files that appeared in the drop directory,
// one new playlist per file. A file that fails to parse is skipped.
func (s *Service) HandleDrops(ctx context.Context, paths []string) {
	for _, path := range paths {
		if _, err := s.ImportM3U(ctx, path, ""); err != nil {
			slog.Warn("dropped playlist file rejected", "path", path, "error", err)
		}
	}
}

// SaveSession persists the whole session as one document.
func (s *Service) SaveSession() error {
	if s.store == nil {
		return nil
	}
	s.mu.Lock()
	doc := SessionDocument{}
	for _, pl := range s.collection.Playlists() {
		doc.Playlists = append(doc.Playlists, documentOf(pl))
	}
	doc.Tabs = s.panel.Tabs()
	doc.Current = s.panel.Current()
	s.mu.Unlock()

	slog.Debug("SaveSession service called", "playlists", len(doc.Playlists))
	if err := s.store.Save(doc); err != nil {
		slog.Error("SaveSession failed", "error", err)
		return err
	}
	return nil
}

// LoadSession restores playlists, queues and tabs from the saved document.
// A missing session leaves the fresh state untouched.
func (s *Service) LoadSession() error {
	if s.store == nil {
		return nil
	}
	var doc SessionDocument
	found, err := s.store.Load(&doc)
	if err != nil {
		slog.Error("LoadSession failed", "error", err)
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, plDoc := range doc.Playlists {
		restoreDocument(s.collection, plDoc)
	}
	for _, tab := range doc.Tabs {
		if s.collection.PlaylistOf(tab) != nil {
			s.panel.AddTab(tab)
		}
	}
	if s.collection.PlaylistOf(doc.Current) != nil {
		s.panel.SetCurrent(doc.Current)
	}
	s.panel.Repopulate(playlist.QuickPlaylistID)

	slog.Info("Session restored", "playlists", len(doc.Playlists), "tabs", len(doc.Tabs))
	return nil
}
