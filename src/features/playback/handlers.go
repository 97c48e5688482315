package playback

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler handles playback requests
type Handler struct {
	service *Service
}

// NewHandler creates a new playback handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Play starts playback of a specific item
func (h *Handler) Play(c *fiber.Ctx) error {
	var body struct {
		PlaylistID uuid.UUID `json:"playlistId"`
		ItemID     uuid.UUID `json:"itemId"`
	}
	if err := c.BodyParser(&body); err != nil || body.ItemID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "playlistId and itemId are required"})
	}

	status, err := h.service.Play(body.PlaylistID, body.ItemID)
	if err != nil {
		if errors.Is(err, ErrNothingPlayable) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Failed to start playback", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to start playback"})
	}
	return c.JSON(status)
}

// Next advances playback
func (h *Handler) Next(c *fiber.Ctx) error {
	status, err := h.service.Next()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(status)
}

// Previous steps playback back
func (h *Handler) Previous(c *fiber.Ctx) error {
	status, err := h.service.Previous()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(status)
}

// NowPlaying records a track change reported by the player
func (h *Handler) NowPlaying(c *fiber.Ctx) error {
	var body struct {
		PlaylistID uuid.UUID `json:"playlistId"`
		ItemID     uuid.UUID `json:"itemId"`
		URL        string    `json:"url"`
	}
	if err := c.BodyParser(&body); err != nil || body.ItemID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "playlistId and itemId are required"})
	}
	return c.JSON(h.service.NowPlayingChanged(body.PlaylistID, body.ItemID, body.URL))
}

// Stop clears the playback position
func (h *Handler) Stop(c *fiber.Ctx) error {
	return c.JSON(h.service.Stop())
}

// Status returns the playback state
func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(h.service.Current())
}
