package action

import (
	"testing"

	"github.com/KevinKickass/OpenSenseCore/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestTriggerExceeded(t *testing.T) {
	tests := []struct {
		name      string
		trigger   Trigger
		value     types.Value
		threshold types.Value
		want      bool
	}{
		{"gt above", GT, types.Float(2.0), types.Float(1.0), true},
		{"gt below", GT, types.Float(0.5), types.Float(1.0), false},
		{"gt equal", GT, types.Float(1.0), types.Float(1.0), false},
		{"gte equal", GTE, types.Float(1.0), types.Float(1.0), true},
		{"lt below", LT, types.Int(5), types.Int(10), true},
		{"lt above", LT, types.Int(15), types.Int(10), false},
		{"lte equal", LTE, types.Int(10), types.Int(10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.Exceeded(tt.value, tt.threshold))
		})
	}
}

func TestTriggerExceededPanicsOnMismatchedKinds(t *testing.T) {
	assert.Panics(t, func() { GT.Exceeded(types.Float(1), types.Int(1)) })
}

func TestTriggerString(t *testing.T) {
	assert.Equal(t, ">", GT.String())
	assert.Equal(t, "<", LT.String())
	assert.Equal(t, "≥", GTE.String())
	assert.Equal(t, "≤", LTE.String())
}
