package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quasarhq/quasar-backend/config"
	"github.com/quasarhq/quasar-backend/game"
	"github.com/quasarhq/quasar-backend/handlers"
	"github.com/quasarhq/quasar-backend/models"
	"github.com/quasarhq/quasar-backend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}
	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	arena, err := models.LoadArena(cfg.RootDir, cfg.Arena)
	if err != nil {
		sugar.Fatalw("unable to load arena data", "arena", cfg.Arena, "err", err)
	}

	db, store := openStore(cfg, sugar)

	hooks := game.Hooks{
		Restart: func() { restartServer(sugar) },
		Shutdown: func() {
			logger.Sync()
			os.Exit(0)
		},
	}

	g := game.NewGame(game.Config{
		Arena: arena,
		Store: store,
		Authenticators: map[string]game.Authenticator{
			"jwt":       game.NewJWTAuthenticator(cfg.JWTSecret),
			"anonymous": game.NewAnonymousAuthenticator(),
		},
		Hooks:       hooks,
		Seed:        cfg.RandomSeed,
		DumpPackets: cfg.DumpPackets,
		Logger:      sugar,
	})
	go g.Run()

	// SIGTERM puts the arena into lameduck mode; the process exits
	// once the roster drains.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		sugar.Infow("entering lameduck mode")
		g.Close()
	}()

	app := &handlers.App{
		DB:     db,
		Store:  store,
		Game:   g,
		Cfg:    cfg,
		Log:    sugar,
		Assets: handlers.NewAssetCache(cfg.RootDir, sugar),
	}

	sugar.Infow("server started", "port", cfg.Port, "root", cfg.RootDir, "arena", cfg.Arena, "store", cfg.StoreDriver)
	if err := http.ListenAndServe(":"+cfg.Port, app.NewRouter()); err != nil {
		sugar.Fatalw("server stopped", "err", err)
	}
}

// openStore connects the configured persistence backend. Failures are
// not fatal: the server degrades to a disabled store and gameplay
// continues without score or ban persistence.
func openStore(cfg *config.Config, sugar *zap.SugaredLogger) (*sql.DB, repository.Store) {
	switch cfg.StoreDriver {
	case "postgres":
		db, err := repository.ConnectToPostgreSQL(cfg)
		if err != nil {
			sugar.Warnw("running without a database", "err", err)
			return nil, repository.NewDisabledStore()
		}
		store, err := repository.NewPostgresStore(db)
		if err != nil {
			sugar.Warnw("running without a database", "err", err)
			db.Close()
			return nil, repository.NewDisabledStore()
		}
		sugar.Infow("connected to PostgreSQL")
		return db, store
	case "mongo":
		store, err := repository.ConnectMongoDB(cfg.MongoURI, cfg.DBName)
		if err != nil {
			sugar.Warnw("running without a database", "err", err)
			return nil, repository.NewDisabledStore()
		}
		sugar.Infow("connected to MongoDB")
		return nil, store
	case "none":
		sugar.Infow("persistence disabled by configuration")
		return nil, repository.NewDisabledStore()
	default:
		sugar.Warnw("unknown store driver, persistence disabled", "driver", cfg.StoreDriver)
		return nil, repository.NewDisabledStore()
	}
}

// restartServer forks a detached replacement process; the current one
// keeps serving until its roster drains.
func restartServer(sugar *zap.SugaredLogger) {
	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		sugar.Errorw("unable to fork replacement server", "err", err)
		return
	}
	cmd.Process.Release()
}
