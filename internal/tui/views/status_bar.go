package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
	"github.com/stecurtis/imx/internal/tui/model"
)

// StatusBar displays the data root, exporter state and flash messages.
type StatusBar struct {
	*tview.TextView
	dataRoot string
	state    string
	flash    string
	flashLvl model.Level
}

// NewStatusBar creates a new status bar.
func NewStatusBar(dataRoot string) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{TextView: tv, dataRoot: dataRoot, state: "IDLE"}
	sb.render()
	return sb
}

// SetState updates the exporter state display.
func (sb *StatusBar) SetState(state string) {
	sb.state = state
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string, level model.Level) {
	sb.flash = msg
	sb.flashLvl = level
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", sb.dataRoot, sb.state, clock)
	if sb.flash != "" {
		color := "yellow"
		if sb.flashLvl == model.Warn {
			color = "red"
		}
		line += fmt.Sprintf(" | [%s]%s[-]", color, sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}
