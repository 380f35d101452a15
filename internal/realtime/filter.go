package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// Filter evaluates a JMESPath expression against incoming events and
// keeps only those it matches. An operator can watch a single plate
// with an expression like `payload.vehicle.plate == 'ABC-1234'`.
type Filter struct {
	expr string
}

// NewFilter validates a filter expression. An empty expression is
// rejected; callers that want no filtering pass a nil *Filter instead.
func NewFilter(expr string) (*Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("filter expression is empty")
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, err)
	}
	return &Filter{expr: expr}, nil
}

// Expression returns the filter's source expression.
func (f *Filter) Expression() string { return f.expr }

// Match reports whether the event satisfies the filter expression.
// Evaluation errors and non-truthy results both drop the event.
func (f *Filter) Match(ev model.ActivityEvent) bool {
	var payload any
	if len(ev.Payload) > 0 {
		// Best effort: an undecodable payload is matched with nil.
		_ = json.Unmarshal(ev.Payload, &payload)
	}

	data := map[string]any{
		"kind":      string(ev.Kind),
		"timestamp": ev.Timestamp.Format(time.RFC3339),
		"payload":   payload,
	}

	result, err := jmespath.Search(f.expr, data)
	if err != nil {
		return false
	}
	return truthy(result)
}

// truthy follows JMESPath semantics: false, null, empty string, empty
// collection are all false.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
