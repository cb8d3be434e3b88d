// Package forms provides huh-based form components for the editor.
package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// NewConfirmDeleteForm asks whether to delete the named clip. The answer is
// bound to confirm.
func NewConfirmDeleteForm(name string, confirm *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", name)).
				Description("The clip record is removed. The source video is not touched.").
				Affirmative("Delete").
				Negative("Keep").
				Value(confirm),
		),
	).WithTheme(Theme())
}
