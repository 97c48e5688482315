package playback

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the playback feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	pb := app.Group("/playback")
	pb.Get("/", handler.Status)
	pb.Post("/play", handler.Play)
	pb.Post("/next", handler.Next)
	pb.Post("/previous", handler.Previous)
	pb.Post("/now-playing", handler.NowPlaying)
	pb.Post("/stop", handler.Stop)
}
