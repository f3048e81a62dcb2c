package approvalroute

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bp848/mqdriven-sub004/internal/transport"
	"github.com/bp848/mqdriven-sub004/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllRoutes() ([]RouteResponse, error)
	GetRoute(id int64) (*Route, error)
	CreateRoute(dto CreateRouteDTO) (*RouteResponse, error)
	UpdateRoute(id int64, dto UpdateRouteDTO) (*RouteResponse, error)
	DeactivateRoute(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Service.GetAllRoutes()
	if err != nil {
		h.Logger.Error("GetRoutes: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoutesResponse{Routes: routes})
}

func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	routeID, ok := h.routeIDFromURL(w, r)
	if !ok {
		return
	}

	route, err := h.Service.GetRoute(routeID)
	if err != nil {
		h.Logger.Error("GetRoute: service error", "error", err, "route_id", routeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, route.ToResponse())
}

func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var dto CreateRouteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRoute: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	route, err := h.Service.CreateRoute(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRoute: route created", "route_id", route.ID, "steps", len(route.Steps))
	h.WriteJSON(w, http.StatusCreated, route)
}

func (h *Handler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	routeID, ok := h.routeIDFromURL(w, r)
	if !ok {
		return
	}

	var dto UpdateRouteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRoute: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	route, err := h.Service.UpdateRoute(routeID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, route)
}

func (h *Handler) DeactivateRoute(w http.ResponseWriter, r *http.Request) {
	routeID, ok := h.routeIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeactivateRoute(routeID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) routeIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid route ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid route ID")
		return 0, false
	}
	return id, true
}
