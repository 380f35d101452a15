// Package model contains the domain entities for gate operations.
package model

// Vehicle is the subject of presence tracking. Only the fields the gate
// console needs are modeled here; the full vehicle record lives behind
// the fleet CRUD surface.
type Vehicle struct {
	ID      string `json:"id"`
	Plate   string `json:"plate"`
	Label   string `json:"label"`
	OwnerID string `json:"owner_id,omitempty"`
}
