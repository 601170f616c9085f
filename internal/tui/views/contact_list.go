package views

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stecurtis/imx/internal/tui/ui"
)

// ContactRow is one rendered contact with its export progress.
type ContactRow struct {
	Number  string
	Label   string
	Enabled bool
	LastRun string
	Cursor  *int64
}

// ContactList is the registered contacts table (K9s-inspired).
type ContactList struct {
	*tview.Table
	theme *ui.Theme
	rows  []ContactRow
}

// NewContactList creates a new contact table.
func NewContactList(theme *ui.Theme) *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Contacts ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &ContactList{Table: table, theme: theme}
}

// Update refreshes the table with new data.
func (cl *ContactList) Update(rows []ContactRow) {
	cl.rows = rows
	cl.Clear()

	headers := []string{" LABEL", " NUMBER", " STATE", " LAST RUN", " CURSOR"}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	for i, r := range rows {
		row := i + 1
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		lastRun := r.LastRun
		if lastRun == "" {
			lastRun = "never"
		}
		cursor := "-"
		if r.Cursor != nil {
			cursor = strconv.FormatInt(*r.Cursor, 10)
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(r.Label)).SetMaxWidth(24).SetExpansion(1).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+r.Number).SetMaxWidth(20).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+state).SetMaxWidth(10).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 3, tview.NewTableCell(" "+lastRun).SetMaxWidth(22).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 4, tview.NewTableCell(" "+cursor).SetMaxWidth(12).SetTextColor(cl.theme.FgColor))
	}
}

// Selected returns the number of the currently selected contact.
func (cl *ContactList) Selected() string {
	row, _ := cl.GetSelection()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(cl.rows) {
		return cl.rows[idx].Number
	}
	return ""
}
