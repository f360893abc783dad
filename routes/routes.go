package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/acemanager/ace-server/handlers"
	"github.com/acemanager/ace-server/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", authHandler.LoginHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", tournamentHandler.ListTournamentsHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetTournamentHandler)
		r.Get("/{tournamentID}/progress", tournamentHandler.GetProgressHandler)
		r.Get("/{tournamentID}/groups/{groupID}/standings", tournamentHandler.GetStandingsHandler)

		// Защищенные маршруты только для администратора
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("admin"))

			r.Post("/", tournamentHandler.CreateTournamentHandler)
			r.Put("/{tournamentID}/settings", tournamentHandler.UpdateSettingsHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteTournamentHandler)

			r.Post("/{tournamentID}/groups", tournamentHandler.AddGroupHandler)
			r.Post("/{tournamentID}/players", tournamentHandler.AddPlayerHandler)
			r.Put("/{tournamentID}/players/{playerID}", tournamentHandler.RenamePlayerHandler)
			r.Delete("/{tournamentID}/players/{playerID}", tournamentHandler.DeletePlayerHandler)

			r.Post("/{tournamentID}/schedule", tournamentHandler.GenerateScheduleHandler)
			r.Post("/{tournamentID}/bracket", tournamentHandler.BuildBracketHandler)

			r.Put("/{tournamentID}/matches/{matchID}", matchHandler.UpdateMatchScoreHandler)
			r.Put("/{tournamentID}/knockout-matches/{matchID}", matchHandler.UpdateKnockoutMatchScoreHandler)

			r.Put("/{tournamentID}/logo", tournamentHandler.UploadLogoHandler)
		})
	})
}
