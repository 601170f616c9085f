package views

import (
	"strconv"

	"github.com/rivo/tview"
	"github.com/stecurtis/imx/internal/config"
	"github.com/stecurtis/imx/internal/tui/ui"
)

// SettingsForm edits the exporter configuration.
type SettingsForm struct {
	*tview.Form
	storePath   string
	dataRoot    string
	refresh     string
	attachments bool
	onSave      func(cfg *config.Config)
	onCancel    func()
}

// NewSettingsForm creates the settings form pre-filled from cfg.
func NewSettingsForm(theme *ui.Theme, cfg *config.Config) *SettingsForm {
	form := tview.NewForm()
	form.SetBorder(true).SetTitle(" Settings ")
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)

	sf := &SettingsForm{
		Form:        form,
		storePath:   cfg.StorePath,
		dataRoot:    cfg.DataRoot,
		refresh:     strconv.Itoa(cfg.RefreshMinutes),
		attachments: cfg.IncludeAttachments,
	}

	form.AddInputField("Message store", sf.storePath, 48, nil, func(text string) { sf.storePath = text })
	form.AddInputField("Data root", sf.dataRoot, 48, nil, func(text string) { sf.dataRoot = text })
	form.AddInputField("Refresh minutes", sf.refresh, 8, tview.InputFieldInteger, func(text string) { sf.refresh = text })
	form.AddCheckbox("Include attachments", sf.attachments, func(checked bool) { sf.attachments = checked })
	form.AddButton("Save", func() {
		if sf.onSave != nil {
			sf.onSave(sf.collect())
		}
	})
	form.AddButton("Cancel", func() {
		if sf.onCancel != nil {
			sf.onCancel()
		}
	})

	return sf
}

func (sf *SettingsForm) collect() *config.Config {
	cfg := config.Default()
	if sf.storePath != "" {
		cfg.StorePath = sf.storePath
	}
	if sf.dataRoot != "" {
		cfg.DataRoot = sf.dataRoot
	}
	if n, err := strconv.Atoi(sf.refresh); err == nil && n > 0 {
		cfg.RefreshMinutes = n
	}
	cfg.IncludeAttachments = sf.attachments
	return cfg
}

// SetOnSave sets the callback when the form is submitted.
func (sf *SettingsForm) SetOnSave(fn func(cfg *config.Config)) {
	sf.onSave = fn
}

// SetOnCancel sets the callback when the form is dismissed.
func (sf *SettingsForm) SetOnCancel(fn func()) {
	sf.onCancel = fn
}
