package handlers

import (
	"database/sql"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/quasarhq/quasar-backend/config"
	"github.com/quasarhq/quasar-backend/game"
	"github.com/quasarhq/quasar-backend/middleware"
	"github.com/quasarhq/quasar-backend/repository"
)

// App bundles the HTTP surface's collaborators. DB may be nil when the
// server runs without Postgres; the account endpoints then report
// service unavailable while gameplay continues.
type App struct {
	DB     *sql.DB
	Store  repository.Store
	Game   *game.Game
	Cfg    *config.Config
	Log    *zap.SugaredLogger
	Assets *AssetCache
}

func (a *App) NewRouter() *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/api/register", a.Register).Methods("POST")
	r.HandleFunc("/api/login", a.Login).Methods("POST")
	r.HandleFunc("/api/refresh/token", a.RefreshToken).Methods("POST")
	r.HandleFunc("/ws", a.WsHandler)

	// Secured routes
	secured := r.PathPrefix("/api").Subrouter()
	secured.Use(middleware.JWTValidation(a.Cfg.JWTSecret))
	secured.HandleFunc("/player/{id}", a.FetchPlayer).Methods("GET")
	secured.HandleFunc("/logout", a.Logout).Methods("POST")

	// Everything else is arena client assets.
	r.PathPrefix("/").Handler(a.Assets)
	return r
}
