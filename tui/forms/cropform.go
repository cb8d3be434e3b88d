package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/user/clipedit-cli/pkg/crop"
)

// presetCustom is the select value meaning "use the numeric fields".
const presetCustom = -1

// CropFormResult holds the values of the numeric crop editor. The numbers
// are kept as strings while the form is open.
type CropFormResult struct {
	Preset int
	X      string
	Y      string
	Width  string
	Height string
}

// NewCropFormResult fills a result from the current crop.
func NewCropFormResult(r crop.Rect) *CropFormResult {
	return &CropFormResult{
		Preset: presetCustom,
		X:      formatFraction(r.X),
		Y:      formatFraction(r.Y),
		Width:  formatFraction(r.Width),
		Height: formatFraction(r.Height),
	}
}

// Rect returns the crop the form describes. A chosen preset wins over the
// numeric fields. Fields go through the same capping as the crop sliders;
// sizes are applied before positions, twice, so that moving and resizing in
// one edit settles on the requested values when they fit.
func (r *CropFormResult) Rect(current crop.Rect) (crop.Rect, error) {
	if r.Preset >= 0 && r.Preset < len(crop.Presets) {
		return crop.Presets[r.Preset].Rect, nil
	}
	out := current
	fields := []struct {
		f crop.Field
		s string
	}{
		{crop.FieldWidth, r.Width},
		{crop.FieldHeight, r.Height},
		{crop.FieldX, r.X},
		{crop.FieldY, r.Y},
	}
	for pass := 0; pass < 2; pass++ {
		for _, fs := range fields {
			v, err := parseFraction(fs.s)
			if err != nil {
				return current, err
			}
			out = crop.SetField(out, fs.f, v)
		}
	}
	return out, nil
}

// NewCropForm creates the numeric crop editor.
func NewCropForm(result *CropFormResult) *huh.Form {
	options := []huh.Option[int]{huh.NewOption("Custom (use fields below)", presetCustom)}
	for i, p := range crop.Presets {
		options = append(options, huh.NewOption(p.Name, i))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Edit Crop").Description("Fractions of the frame, 0 to 1"),

			huh.NewSelect[int]().
				Title("Preset").
				Options(options...).
				Value(&result.Preset),

			fractionInput("X", &result.X),
			fractionInput("Y", &result.Y),
			fractionInput("Width", &result.Width),
			fractionInput("Height", &result.Height),
		),
	).WithTheme(Theme())
}

func fractionInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Value(value).
		Validate(func(s string) error {
			_, err := parseFraction(s)
			return err
		})
}

func parseFraction(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("must be between 0 and 1")
	}
	return v, nil
}

func formatFraction(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
