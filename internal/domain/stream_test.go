package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecommendEvent_Validate(t *testing.T) {
	venue := Venue{Name: "Signal Iduna Park", Latitude: 51.4926, Longitude: 7.4519}

	tests := []struct {
		name        string
		event       RecommendEvent
		expectErr   bool
		description string
	}{
		{
			name: "complete event",
			event: RecommendEvent{
				RequestID:    uuid.New(),
				StartAddress: "Dortmund Hbf",
				Venue:        venue,
				Candidates:   []ParkingCandidate{{ID: 1, Name: "P1", Latitude: 51.49, Longitude: 7.45}},
			},
			expectErr:   false,
			description: "Should accept an event with all fields set",
		},
		{
			name: "no candidates is still valid",
			event: RecommendEvent{
				RequestID:    uuid.New(),
				StartAddress: "Dortmund Hbf",
				Venue:        venue,
			},
			expectErr:   false,
			description: "Empty candidate lists are reported by the orchestrator, not here",
		},
		{
			name: "missing request id",
			event: RecommendEvent{
				StartAddress: "Dortmund Hbf",
				Venue:        venue,
			},
			expectErr:   true,
			description: "Should reject an event without a request id",
		},
		{
			name: "missing start address",
			event: RecommendEvent{
				RequestID: uuid.New(),
				Venue:     venue,
			},
			expectErr:   true,
			description: "Should reject an event without a start address",
		},
		{
			name: "missing venue",
			event: RecommendEvent{
				RequestID:    uuid.New(),
				StartAddress: "Dortmund Hbf",
			},
			expectErr:   true,
			description: "Should reject an event without venue coordinates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.expectErr {
				assert.Error(t, err, tt.description)
			} else {
				assert.NoError(t, err, tt.description)
			}
		})
	}
}

func TestHaversineMeters(t *testing.T) {
	// Dortmund Hbf to Signal Iduna Park is roughly 2.9 km
	d := HaversineMeters(51.5178, 7.4593, 51.4926, 7.4519)
	assert.InDelta(t, 2850, d, 150)

	assert.Equal(t, 0.0, HaversineMeters(51.5, 7.4, 51.5, 7.4))
}

func TestParseLatLng(t *testing.T) {
	lat, lng, ok := ParseLatLng("51.4926, 7.4519")
	assert.True(t, ok)
	assert.Equal(t, 51.4926, lat)
	assert.Equal(t, 7.4519, lng)

	_, _, ok = ParseLatLng("Strobelallee 50, Dortmund")
	assert.False(t, ok)

	_, _, ok = ParseLatLng("91,7")
	assert.False(t, ok)

	assert.Equal(t, "51.4926,7.4519", FormatLatLng(51.4926, 7.4519))
}
