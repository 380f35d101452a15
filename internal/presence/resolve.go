package presence

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// ErrNoMatch is returned when a plate search matches nothing.
var ErrNoMatch = errors.New("no vehicle matches the search")

// AmbiguousMatchError is returned when a plate search matches more than
// one vehicle. The operator must disambiguate explicitly; the console
// never auto-selects among multiple candidates.
type AmbiguousMatchError struct {
	Query      string
	Candidates []model.Vehicle
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("plate search %q matches %d vehicles", e.Query, len(e.Candidates))
}

// Resolve locates the vehicle a transition will be applied to:
//
//   - zero matches is an error
//   - exactly one match is auto-selected
//   - multiple matches require explicit operator disambiguation
func (s *Service) Resolve(ctx context.Context, plateQuery string) (model.Vehicle, error) {
	vehicles, err := s.backend.SearchVehicles(ctx, plateQuery)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("search plate %q: %w", plateQuery, err)
	}

	switch len(vehicles) {
	case 0:
		return model.Vehicle{}, ErrNoMatch
	case 1:
		return vehicles[0], nil
	default:
		return model.Vehicle{}, &AmbiguousMatchError{Query: plateQuery, Candidates: vehicles}
	}
}
