package views

import (
	"github.com/rivo/tview"
	"github.com/stecurtis/imx/internal/tui/ui"
)

// ContactForm registers a new contact for export.
type ContactForm struct {
	*tview.Form
	number   string
	label    string
	onSave   func(number, label string)
	onCancel func()
}

// NewContactForm creates the add-contact form.
func NewContactForm(theme *ui.Theme) *ContactForm {
	form := tview.NewForm()
	form.SetBorder(true).SetTitle(" Add Contact ")
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)

	cf := &ContactForm{Form: form}

	form.AddInputField("Number", "", 32, nil, func(text string) { cf.number = text })
	form.AddInputField("Label", "", 32, nil, func(text string) { cf.label = text })
	form.AddButton("Save", func() {
		if cf.onSave != nil {
			cf.onSave(cf.number, cf.label)
		}
	})
	form.AddButton("Cancel", func() {
		if cf.onCancel != nil {
			cf.onCancel()
		}
	})

	return cf
}

// SetOnSave sets the callback when the form is submitted.
func (cf *ContactForm) SetOnSave(fn func(number, label string)) {
	cf.onSave = fn
}

// SetOnCancel sets the callback when the form is dismissed.
func (cf *ContactForm) SetOnCancel(fn func()) {
	cf.onCancel = fn
}

// Reset clears the form fields.
func (cf *ContactForm) Reset() {
	cf.number = ""
	cf.label = ""
	if item, ok := cf.GetFormItem(0).(*tview.InputField); ok {
		item.SetText("")
	}
	if item, ok := cf.GetFormItem(1).(*tview.InputField); ok {
		item.SetText("")
	}
	cf.SetFocus(0)
}
