package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPresenceOf(t *testing.T) {
	out := ts("2026-02-01T10:00:00Z")

	tests := []struct {
		name   string
		latest *CheckInRecord
		want   Presence
	}{
		{name: "no record ever", latest: nil, want: PresenceOutside},
		{
			name:   "open record means inside",
			latest: &CheckInRecord{CheckedInAt: ts("2026-02-01T08:00:00Z")},
			want:   PresenceInside,
		},
		{
			name:   "closed record means outside",
			latest: &CheckInRecord{CheckedInAt: ts("2026-02-01T08:00:00Z"), CheckedOutAt: &out},
			want:   PresenceOutside,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PresenceOf(tt.latest))
		})
	}
}

func TestCheckInRecord_Duration(t *testing.T) {
	in := ts("2026-02-01T08:00:00Z")
	out := ts("2026-02-01T11:05:00Z")
	now := ts("2026-02-01T09:30:00Z")

	open := CheckInRecord{CheckedInAt: in}
	assert.Equal(t, 90*time.Minute, open.Duration(now))

	closed := CheckInRecord{CheckedInAt: in, CheckedOutAt: &out}
	// Closed records measure to their checkout time regardless of now.
	assert.Equal(t, 3*time.Hour+5*time.Minute, closed.Duration(now))
}

func TestCheckInRecord_DurationNeverNegative(t *testing.T) {
	rec := CheckInRecord{CheckedInAt: ts("2026-02-01T08:00:00Z")}
	assert.Equal(t, time.Duration(0), rec.Duration(ts("2026-02-01T07:00:00Z")))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0h 00m"},
		{in: 5 * time.Minute, want: "0h 05m"},
		{in: 3*time.Hour + 5*time.Minute, want: "3h 05m"},
		{in: 26*time.Hour + 45*time.Minute, want: "26h 45m"},
		{in: -time.Minute, want: "0h 00m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestDecodeEnvelope(t *testing.T) {
	raw := []byte(`{"event":"vehicle.checked-in","data":{"driver":"Ada"},"published_at":"2026-02-01T08:00:00Z"}`)
	env, err := DecodeEnvelope(raw)
	assert.NoError(t, err)
	assert.Equal(t, "vehicle.checked-in", env.Event)

	_, err = DecodeEnvelope([]byte(`{"event":"vehicle.exploded","data":{}}`))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}
