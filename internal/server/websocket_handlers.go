package server

import (
	"log/slog"

	"socialcore/internal/middleware"
	"socialcore/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests to the websocket endpoint.
func (s *Server) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler streams follow and unfollow events targeting the caller.
// @Summary Follow event stream
// @Description Websocket delivering {"type","follower","target","at"} events for the authenticated profile
// @Tags notifications
// @Security BearerAuth
// @Router /ws [get]
func (s *Server) WebSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		profile, _ := conn.Locals(middleware.LocalProfileName).(string)
		if profile == "" {
			_ = conn.WriteJSON(models.ErrorResponse{Message: "Authorization required"})
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(profile, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.String("profile", profile),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteJSON(models.ErrorResponse{Message: err.Error()})
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", slog.String("profile", profile))

		go client.WritePump()
		client.ReadPump()

		middleware.Logger.Info("websocket disconnected", slog.String("profile", profile))
	})
}
