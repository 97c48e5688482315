package playlists

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for playlists
type Handler struct {
	service *Service
}

// NewHandler creates a new playlists handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func statusOf(err error) int {
	if errors.Is(err, ErrPlaylistNotFound) || errors.Is(err, ErrItemNotFound) {
		return fiber.StatusNotFound
	}
	if errors.Is(err, ErrUnknownSortKey) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// GetPlaylists returns the headers of every playlist.
func (h *Handler) GetPlaylists(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"playlists": h.service.Playlists()})
}

// GetPlaylistItems returns one playlist's items in sequence order.
func (h *Handler) GetPlaylistItems(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	items, err := h.service.PlaylistItems(id)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"items": items})
}

// CreatePlaylist creates a new playlist
func (h *Handler) CreatePlaylist(c *fiber.Ctx) error {
	var body struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&body); err != nil || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "playlist title is required"})
	}

	summary := h.service.CreatePlaylist(body.Title)
	slog.Info("Playlist created", "id", summary.ID, "title", summary.Title)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": summary})
}

// ClonePlaylist duplicates a playlist
func (h *Handler) ClonePlaylist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	summary, err := h.service.ClonePlaylist(id)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": summary})
}

// RenamePlaylist changes a playlist's title
func (h *Handler) RenamePlaylist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&body); err != nil || body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "playlist title is required"})
	}
	if err := h.service.RenamePlaylist(id, body.Title); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "renamed"})
}

// DeletePlaylist removes a playlist
func (h *Handler) DeletePlaylist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.service.RemovePlaylist(id)
	return c.JSON(fiber.Map{"status": "removed"})
}

// AddItems adds locations to the current playlist
func (h *Handler) AddItems(c *fiber.Ctx) error {
	var body struct {
		URLs []string `json:"urls"`
	}
	if err := c.BodyParser(&body); err != nil || len(body.URLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one location is required"})
	}

	listID, ids, err := h.service.AddURLs(c.Context(), body.URLs)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": listID, "items": ids})
}

// PlayURL loads a single location into the quick playlist and asks for it
// to be played
func (h *Handler) PlayURL(c *fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&body); err != nil || body.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a location is required"})
	}
	listID, itemID, err := h.service.PlayURL(c.Context(), body.URL)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": listID, "item": itemID})
}

// RemoveItems deletes items from a playlist
func (h *Handler) RemoveItems(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var body struct {
		Items []uuid.UUID `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil || len(body.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one item is required"})
	}
	if err := h.service.RemoveItems(id, body.Items); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

// MoveItems reorders items within a playlist
func (h *Handler) MoveItems(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var body struct {
		Items []uuid.UUID `json:"items"`
		After uuid.UUID   `json:"after"` // zero uuid inserts at the head
	}
	if err := c.BodyParser(&body); err != nil || len(body.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one item is required"})
	}
	if err := h.service.MoveItems(id, body.Items, body.After); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "moved"})
}

// ToggleQueue flips an item's queue membership
func (h *Handler) ToggleQueue(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	itemID, err := paramUUID(c, "itemId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.service.QueueToggle(id, itemID); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "toggled"})
}

// QuickQueue toggles queue membership of the focused item of the current tab
func (h *Handler) QuickQueue(c *fiber.Ctx) error {
	h.service.QuickQueue()
	return c.JSON(fiber.Map{"status": "toggled"})
}

// UpdateItemMetadata replaces an item's metadata, e.g. with details the
// player learned while streaming
func (h *Handler) UpdateItemMetadata(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	itemID, err := paramUUID(c, "itemId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var body struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil || body.Metadata == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "metadata is required"})
	}
	h.service.SetItemMetadata(id, itemID, body.Metadata)
	return c.JSON(fiber.Map{"status": "updated"})
}

// GetQueue returns a playlist's queue in priority order
func (h *Handler) GetQueue(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	queue, err := h.service.Queue(id)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"queue": queue})
}

// SortPlaylist reorders a playlist by a metadata key
func (h *Handler) SortPlaylist(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var body struct {
		Key        string `json:"key"`
		Descending bool   `json:"descending"`
	}
	if err := c.BodyParser(&body); err != nil || body.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sort key is required"})
	}
	if err := h.service.Sort(id, body.Key, body.Descending); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "sorted"})
}

// SetFilter applies filter text across the open views
func (h *Handler) SetFilter(c *fiber.Ctx) error {
	var body struct {
		Text  string `json:"text"`
		Async bool   `json:"async"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid filter payload"})
	}
	if body.Async {
		seq := h.service.SetFilterAsync(body.Text)
		return c.JSON(fiber.Map{"status": "queued", "seq": seq})
	}
	h.service.SetFilter(body.Text)
	return c.JSON(fiber.Map{"status": "applied"})
}

// GetTabs returns the open tabs and the current one
func (h *Handler) GetTabs(c *fiber.Ctx) error {
	tabs, current := h.service.Tabs()
	return c.JSON(fiber.Map{"tabs": tabs, "current": current})
}

// OpenTab opens (or focuses) a tab
func (h *Handler) OpenTab(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.service.OpenTab(id); err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "open"})
}

// CloseTab closes a tab
func (h *Handler) CloseTab(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.service.CloseTab(id)
	return c.JSON(fiber.Map{"status": "closed"})
}

// FocusTab makes an open tab current
func (h *Handler) FocusTab(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.service.SetCurrentTab(id)
	return c.JSON(fiber.Map{"status": "focused"})
}

// ImportM3U imports uploaded M3U content as a new playlist
func (h *Handler) ImportM3U(c *fiber.Ctx) error {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Path    string `json:"path"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid import payload"})
	}

	var summary PlaylistSummary
	var err error
	switch {
	case body.Content != "":
		summary, err = h.service.ImportM3UContent(c.Context(), body.Title, body.Content)
	case body.Path != "":
		summary, err = h.service.ImportM3U(c.Context(), body.Path, body.Title)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "either content or path is required"})
	}
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": summary})
}

// ExportM3U renders a playlist as extended M3U content
func (h *Handler) ExportM3U(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	content, err := h.service.ExportM3UContent(id)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "audio/x-mpegurl")
	c.Set("Content-Disposition", "attachment; filename=\"playlist.m3u\"")
	return c.SendString(content)
}

// SaveSession persists the session on demand
func (h *Handler) SaveSession(c *fiber.Ctx) error {
	if err := h.service.SaveSession(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "saved"})
}
