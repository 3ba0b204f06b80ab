package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lracdim/trazer-backend/db"
	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/auth"
	"github.com/lracdim/trazer-backend/internal/cache"
	"github.com/lracdim/trazer-backend/internal/handlers"
	"github.com/lracdim/trazer-backend/internal/router"
	"github.com/lracdim/trazer-backend/internal/store"
	"github.com/lracdim/trazer-backend/internal/tracking"
	"github.com/lracdim/trazer-backend/internal/watchdog"
	"github.com/lracdim/trazer-backend/internal/ws"
)

func main() {
	var err error

	err = godotenv.Load()

	if err != nil {
		log.Println("No .env file loaded, relying on environment")
	}

	if err = auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err = db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var statusCache *cache.StatusCache

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		statusCache, err = cache.NewStatusCache(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 5*time.Second)

		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}

		defer statusCache.Close()
	}

	hub := ws.NewHub()

	alertStore := store.NewAlertStore(db.DB)
	shiftStore := store.NewShiftStore(db.DB)
	locationStore := store.NewLocationStore(db.DB)

	ledger := alerts.NewLedger(alertStore)
	engine := tracking.NewEngine(shiftStore, locationStore, ledger, hub)
	projector := tracking.NewProjector(shiftStore, locationStore, alertStore)

	dog := watchdog.New(shiftStore, locationStore, ledger, hub)
	dog.Start()
	defer dog.Stop()

	h := handlers.New(engine, projector, ledger, shiftStore, hub, statusCache)

	r := router.NewRouter(h)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err = r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
