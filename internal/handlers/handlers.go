package handlers

import (
	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/cache"
	"github.com/lracdim/trazer-backend/internal/tracking"
	"github.com/lracdim/trazer-backend/internal/ws"
)

// Handlers bundles the core components behind the HTTP surface. The notifier
// and stores are constructed once in main and injected here; nothing in this
// package reaches for realtime state through globals.
type Handlers struct {
	Engine      *tracking.Engine
	Projector   *tracking.Projector
	Ledger      *alerts.Ledger
	Shifts      tracking.ShiftStore
	Hub         *ws.Hub
	Notifier    ws.Notifier
	StatusCache *cache.StatusCache
}

func New(
	engine *tracking.Engine,
	projector *tracking.Projector,
	ledger *alerts.Ledger,
	shifts tracking.ShiftStore,
	hub *ws.Hub,
	statusCache *cache.StatusCache,
) *Handlers {
	return &Handlers{
		Engine:      engine,
		Projector:   projector,
		Ledger:      ledger,
		Shifts:      shifts,
		Hub:         hub,
		Notifier:    hub,
		StatusCache: statusCache,
	}
}
