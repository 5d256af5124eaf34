package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/regionsweeper/internal/config"
	"github.com/vancomm/regionsweeper/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	router := a.router
	if base := config.BasePath(); base != "" {
		router = a.router.PathPrefix(base).Subrouter()
	}

	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handlers.NewRegionHandler(a.logger, a.catalog).Routes(router)
	handlers.NewSessionHandler(a.logger, handlers.SessionHandlerParams{
		Store:     a.store,
		Catalog:   a.catalog,
		Tokens:    a.tokens,
		WebSocket: a.ws,
		NewRand:   createRand,
		AutoChord: config.AutoChord(),
	}).Routes(router)
}
