package views

import (
	"fmt"

	"github.com/rivo/tview"
	"github.com/stecurtis/imx/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{TextView: tv}
	hv.render(theme)
	return hv
}

func (hv *HelpView) render(theme *ui.Theme) {
	kc := fmt.Sprintf("#%06x", theme.MenuKeyColor.Hex())

	help := fmt.Sprintf(`
  [::b]Menu[-:-:-]

  [%s]Enter[-:-:-]  Select item         [%s]Esc[-:-:-]   Back to menu
  [%s]q[-:-:-]      Quit (from menu)    [%s]Ctrl-C[-:-:-] Quit immediately

  [::b]Contacts[-:-:-]

  [%s]d[-:-:-]      Disable selected contact
  [%s]r[-:-:-]      Refresh list

  [::b]Exports[-:-:-]

  Exports run automatically every few minutes while imxd is running.
  "Run Export Now" triggers an immediate pass over all enabled contacts.
  If it reports the message store is unavailable, grant Full Disk Access
  to the binary in System Settings and retry.

  Snapshots, CSV mirrors and daily rollups are written per contact under
  the data root shown in the status bar.
`,
		kc, kc, kc, kc, kc, kc,
	)

	_, _ = fmt.Fprint(hv, help)
}
