package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/clipedit-cli/pkg/crop"
)

func TestCropFormResultRect(t *testing.T) {
	tests := []struct {
		name    string
		current crop.Rect
		result  CropFormResult
		want    crop.Rect
	}{
		{
			name:    "preset wins",
			current: crop.Full,
			result:  CropFormResult{Preset: 1, X: "0.9", Y: "0.9", Width: "0.1", Height: "0.1"},
			want:    crop.Rect{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8},
		},
		{
			name:    "shrink and move",
			current: crop.Full,
			result:  CropFormResult{Preset: presetCustom, X: "0.5", Y: "0.25", Width: "0.5", Height: "0.5"},
			want:    crop.Rect{X: 0.5, Y: 0.25, Width: 0.5, Height: 0.5},
		},
		{
			name:    "move left and grow",
			current: crop.Rect{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5},
			result:  CropFormResult{Preset: presetCustom, X: "0", Y: "0", Width: "1", Height: "1"},
			want:    crop.Full,
		},
		{
			name:    "position capped by size",
			current: crop.Full,
			result:  CropFormResult{Preset: presetCustom, X: "0.8", Y: "0", Width: "0.5", Height: "1"},
			want:    crop.Rect{X: 0.5, Y: 0, Width: 0.5, Height: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.result.Rect(tt.current)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}
}

func TestCropFormResultRejectsBadInput(t *testing.T) {
	current := crop.Rect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5}
	for _, bad := range []string{"", "abc", "1.5", "-0.1"} {
		r := NewCropFormResult(current)
		r.Width = bad
		got, err := r.Rect(current)
		assert.Error(t, err, bad)
		assert.Equal(t, current, got)
	}
}

func TestNewCropFormResult(t *testing.T) {
	r := NewCropFormResult(crop.Rect{X: 0.05, Y: 0.1, Width: 0.9, Height: 0.8})
	assert.Equal(t, presetCustom, r.Preset)
	assert.Equal(t, "0.050", r.X)
	assert.Equal(t, "0.900", r.Width)
	assert.NotNil(t, NewCropForm(r))
	confirm := false
	assert.NotNil(t, NewConfirmDeleteForm("Kickoff", &confirm))
}
