package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/regionsweeper/internal/regions"
)

type RegionHandler struct {
	logger  *slog.Logger
	catalog *regions.Catalog
}

func NewRegionHandler(logger *slog.Logger, catalog *regions.Catalog) *RegionHandler {
	return &RegionHandler{logger: logger, catalog: catalog}
}

func (h *RegionHandler) Routes(router *mux.Router) {
	router.Methods(http.MethodGet).Path("/regions").HandlerFunc(h.List)
	router.Methods(http.MethodGet).Path("/regions/{key}").HandlerFunc(h.Get)
}

func (h *RegionHandler) List(w http.ResponseWriter, r *http.Request) {
	SendJSONOrLog(w, h.logger, CatalogDTO{
		Start:   h.catalog.Start,
		Regions: h.catalog.Regions(),
	})
}

func (h *RegionHandler) Get(w http.ResponseWriter, r *http.Request) {
	region, err := h.catalog.Get(mux.Vars(r)["key"])
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusNotFound, err)
		return
	}
	SendJSONOrLog(w, h.logger, region)
}
