package httpx

import (
	"context"
	"net/http"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// VehiclesBackend is the slice of the vehicle service the handlers need.
type VehiclesBackend interface {
	SearchByPlate(ctx context.Context, plate string) ([]model.Vehicle, error)
}

type vehicleHandlers struct {
	vehicles VehiclesBackend
}

// Search returns vehicles whose plate contains the query.
func (h *vehicleHandlers) Search(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.SearchByPlate(r.Context(), r.URL.Query().Get("plate"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}
