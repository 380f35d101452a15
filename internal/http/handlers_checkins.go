package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// CheckInsBackend is the slice of the check-in service the handlers need.
type CheckInsBackend interface {
	Latest(ctx context.Context, vehicleID string) (*model.CheckInRecord, error)
	CheckIn(ctx context.Context, vehicleID string, actor auth.User) (*model.CheckInRecord, error)
	CheckOut(ctx context.Context, recordID string, actor auth.User) (*model.CheckInRecord, error)
}

type checkInHandlers struct {
	checkins CheckInsBackend
}

// Latest returns the most recent record for a vehicle, null when it has
// never checked in.
func (h *checkInHandlers) Latest(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_vehicle_id",
			Err:     errors.New("vehicle_id query parameter is required"),
		})
		return
	}

	rec, err := h.checkins.Latest(r.Context(), vehicleID)
	if err != nil {
		writeCheckInError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"record": rec})
}

// Create opens a check-in record. A vehicle already inside gets a 403;
// the console treats that as authoritative and re-derives its state.
func (h *checkInHandlers) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req struct {
		VehicleID string `json:"vehicle_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.VehicleID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnprocessableEntity,
			ErrCode: "validation_failed",
			Err:     errors.New("validation failed"),
			Fields:  map[string]string{"vehicle_id": "vehicle_id is required"},
		})
		return
	}

	rec, err := h.checkins.CheckIn(r.Context(), req.VehicleID, sess.User())
	if err != nil {
		writeCheckInError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"record": rec})
}

// Checkout closes the record named in the path.
func (h *checkInHandlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	rec, err := h.checkins.CheckOut(r.Context(), r.PathValue("id"), sess.User())
	if err != nil {
		writeCheckInError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"record": rec})
}

// writeCheckInError maps the data-layer sentinels onto the REST
// contract: illegal transitions are 403, unknown entities 404.
func writeCheckInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, data.ErrAlreadyInside):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "vehicle_already_inside", Err: err})
	case errors.Is(err, data.ErrAlreadyClosed):
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "record_already_closed", Err: err})
	case errors.Is(err, data.ErrVehicleNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "vehicle_not_found", Err: err})
	case errors.Is(err, data.ErrCheckInNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "checkin_not_found", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
	}
}
