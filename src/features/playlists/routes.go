package playlists

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the playlists feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	playlists := app.Group("/playlists")
	playlists.Get("/", handler.GetPlaylists)
	playlists.Post("/", handler.CreatePlaylist)
	playlists.Get("/:id/items", handler.GetPlaylistItems)
	playlists.Post("/:id/clone", handler.ClonePlaylist)
	playlists.Put("/:id", handler.RenamePlaylist)
	playlists.Delete("/:id", handler.DeletePlaylist)
	playlists.Post("/items", handler.AddItems)
	playlists.Post("/play", handler.PlayURL)
	playlists.Delete("/:id/items", handler.RemoveItems)
	playlists.Post("/:id/move", handler.MoveItems)
	playlists.Post("/:id/sort", handler.SortPlaylist)
	playlists.Get("/:id/queue", handler.GetQueue)
	playlists.Post("/:id/queue/:itemId", handler.ToggleQueue)
	playlists.Put("/:id/items/:itemId/metadata", handler.UpdateItemMetadata)
	playlists.Post("/queue/quick", handler.QuickQueue)
	playlists.Post("/import", handler.ImportM3U)
	playlists.Get("/:id/export", handler.ExportM3U)

	app.Post("/filter", handler.SetFilter)

	tabs := app.Group("/tabs")
	tabs.Get("/", handler.GetTabs)
	tabs.Post("/:id", handler.OpenTab)
	tabs.Delete("/:id", handler.CloseTab)
	tabs.Put("/:id", handler.FocusTab)

	app.Post("/session/save", handler.SaveSession)
}
