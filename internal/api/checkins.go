package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// SearchVehicles returns vehicles whose plate matches the query as a
// substring. An empty query lists vehicles (bounded server-side).
func (c *Client) SearchVehicles(ctx context.Context, plate string) ([]model.Vehicle, error) {
	var out struct {
		Vehicles []model.Vehicle `json:"vehicles"`
	}
	query := url.Values{}
	if plate != "" {
		query.Set("plate", plate)
	}
	err := c.do(ctx, requestParams{
		Method: http.MethodGet,
		Path:   "/vehicles",
		Query:  query,
		Out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Vehicles, nil
}

// LatestCheckIn returns the most recent check-in record for a vehicle,
// or nil when the vehicle has never checked in.
func (c *Client) LatestCheckIn(ctx context.Context, vehicleID string) (*model.CheckInRecord, error) {
	var out struct {
		Record *model.CheckInRecord `json:"record"`
	}
	query := url.Values{"vehicle_id": []string{vehicleID}}
	err := c.do(ctx, requestParams{
		Method: http.MethodGet,
		Path:   "/checkins/latest",
		Query:  query,
		Out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Record, nil
}

// CreateCheckIn opens a new check-in record for a vehicle. The server is
// authoritative: a vehicle that is already inside yields a permission
// error, never a second open record.
func (c *Client) CreateCheckIn(ctx context.Context, vehicleID string) (*model.CheckInRecord, error) {
	var out struct {
		Record *model.CheckInRecord `json:"record"`
	}
	err := c.do(ctx, requestParams{
		Method: http.MethodPost,
		Path:   "/checkins",
		Body:   map[string]string{"vehicle_id": vehicleID},
		Out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Record, nil
}

// Checkout closes an open check-in record. Closing an already-closed
// record is rejected by the server, never silently accepted.
func (c *Client) Checkout(ctx context.Context, recordID string) (*model.CheckInRecord, error) {
	var out struct {
		Record *model.CheckInRecord `json:"record"`
	}
	err := c.do(ctx, requestParams{
		Method: http.MethodPost,
		Path:   "/checkins/" + url.PathEscape(recordID) + "/checkout",
		Out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Record, nil
}
