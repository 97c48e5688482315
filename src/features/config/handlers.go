package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager) *Handler {
	return &Handler{
		configManager: configManager,
	}
}

// UpdateSettings replaces the runtime-tunable part of the configuration.
// Server settings are preserved; they make no sense to change at runtime.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	currentConfig := h.configManager.Get()

	var body struct {
		Logger     Logger     `json:"logger"`
		Import     Import     `json:"import"`
		Thumbnails Thumbnails `json:"thumbnails"`
		Search     Search     `json:"search"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid settings payload"})
	}

	newConfig := &Config{
		Logger:     body.Logger,
		Import:     body.Import,
		Thumbnails: body.Thumbnails,
		Search:     body.Search,
		Server:     currentConfig.Server,
		Storage:    currentConfig.Storage,
	}

	h.configManager.Update(newConfig)
	slog.Info("Configuration updated in memory")

	// Saving may fail in containerized environments; the in-memory update
	// already took effect.
	if err := h.configManager.Save("config.yaml"); err != nil {
		slog.Warn("failed to save config to file", "error", err)
	}

	return c.JSON(fiber.Map{"status": "updated"})
}

// GetConfig returns the current configuration in the requested format.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	slog.Debug("GetConfig handler called", "format", c.Query("fmt", "json"))
	format := c.Query("fmt", "yaml")

	switch format {
	case "yaml":
		c.Set("Content-Type", "text/yaml")
		return c.SendString(h.configManager.GetYAML())
	case "json":
		c.Set("Content-Type", "application/json")
		return c.SendString(h.configManager.GetJSON())
	default:
		return c.Status(fiber.StatusBadRequest).SendString("Invalid format. Use 'json' or 'yaml'")
	}
}

// DownloadSession serves the session document for download.
func (h *Handler) DownloadSession(c *fiber.Ctx) error {
	slog.Debug("DownloadSession handler called")

	sessionPath := h.configManager.Get().Storage.SessionPath
	if sessionPath == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Session path not configured")
	}

	filename := filepath.Base(sessionPath)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Set("Content-Type", "application/json")

	return c.SendFile(sessionPath)
}
