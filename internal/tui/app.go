// Package tui implements the interactive terminal front end for imx.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stecurtis/imx/internal/bus"
	"github.com/stecurtis/imx/internal/catalog"
	"github.com/stecurtis/imx/internal/config"
	"github.com/stecurtis/imx/internal/export"
	"github.com/stecurtis/imx/internal/lock"
	"github.com/stecurtis/imx/internal/msgstore"
	"github.com/stecurtis/imx/internal/paths"
	"github.com/stecurtis/imx/internal/state"
	"github.com/stecurtis/imx/internal/status"
	"github.com/stecurtis/imx/internal/tui/model"
	"github.com/stecurtis/imx/internal/tui/ui"
	"github.com/stecurtis/imx/internal/tui/views"
	"go.uber.org/zap"
)

// App is the main TUI application shell.
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	theme   *ui.Theme
	cfg     *config.Config
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger
	flash   *model.Flash

	menu         *tview.List
	statusBar    *views.StatusBar
	contactList  *views.ContactList
	contactForm  *views.ContactForm
	settingsForm *views.SettingsForm
	helpView     *views.HelpView

	done chan struct{}
}

// NewApp creates the TUI application around a loaded config.
func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	theme := ui.DefaultTheme()
	b := bus.New()

	a := &App{
		app:          tview.NewApplication(),
		pages:        tview.NewPages(),
		theme:        theme,
		cfg:          cfg,
		bus:          b,
		machine:      status.NewMachine(b),
		logger:       logger,
		flash:        &model.Flash{},
		statusBar:    views.NewStatusBar(cfg.DataRoot),
		contactList:  views.NewContactList(theme),
		contactForm:  views.NewContactForm(theme),
		settingsForm: views.NewSettingsForm(theme, cfg),
		helpView:     views.NewHelpView(theme),
		done:         make(chan struct{}),
	}

	a.setupMenu()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupMenu() {
	menu := tview.NewList().
		AddItem("Run Export Now", "Check all enabled contacts for new messages", 'r', a.runExport).
		AddItem("Contacts", "Browse registered contacts", 'c', a.showContacts).
		AddItem("Add Contact", "Register a phone number for export", 'a', a.showAddContact).
		AddItem("Settings", "Message store path, data root, schedule", 's', a.showSettings).
		AddItem("Help", "Key bindings and notes", '?', func() { a.pages.SwitchToPage("help") }).
		AddItem("Quit", "Exit imx", 'q', func() { a.app.Stop() })
	menu.SetBorder(true).SetTitle(" imx ")
	menu.SetBorderColor(a.theme.BorderColor)
	menu.SetBackgroundColor(a.theme.BgColor)
	menu.SetTitleColor(a.theme.TitleColor)
	menu.SetMainTextColor(a.theme.FgColor)
	menu.SetSecondaryTextColor(tview.Styles.SecondaryTextColor)
	menu.SetShortcutColor(a.theme.MenuKeyColor)

	a.menu = menu
}

func (a *App) setupCallbacks() {
	a.contactForm.SetOnSave(func(number, label string) {
		a.addContact(number, label)
	})
	a.contactForm.SetOnCancel(a.backToMenu)

	a.settingsForm.SetOnSave(func(cfg *config.Config) {
		a.saveSettings(cfg)
	})
	a.settingsForm.SetOnCancel(a.backToMenu)
}

func (a *App) setupLayout() {
	a.pages.AddPage("menu", a.menu, true, true)
	a.pages.AddPage("contacts", a.contactList, true, false)
	a.pages.AddPage("add", a.contactForm, true, false)
	a.pages.AddPage("settings", a.settingsForm, true, false)
	a.pages.AddPage("help", a.helpView, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape && currentPage != "menu" {
			a.backToMenu()
			return nil
		}

		// Let text input widgets handle all keys normally.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		if currentPage == "contacts" && event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'd':
				a.disableSelected()
				return nil
			case 'r':
				a.refreshContacts()
				return nil
			}
		}

		return event
	})
}

func (a *App) backToMenu() {
	a.pages.SwitchToPage("menu")
	a.app.SetFocus(a.menu)
}

func (a *App) showContacts() {
	a.refreshContacts()
	a.pages.SwitchToPage("contacts")
	a.app.SetFocus(a.contactList)
}

func (a *App) showAddContact() {
	a.contactForm.Reset()
	a.pages.SwitchToPage("add")
	a.app.SetFocus(a.contactForm)
}

func (a *App) showSettings() {
	a.pages.SwitchToPage("settings")
	a.app.SetFocus(a.settingsForm)
}

func (a *App) refreshContacts() {
	idx, err := catalog.Load(paths.IndexPath(a.cfg.DataRoot))
	if err != nil {
		a.setFlash("contact index unreadable: "+err.Error(), model.Warn)
	}

	rows := make([]views.ContactRow, 0, len(idx.Contacts))
	for _, c := range idx.Contacts {
		row := views.ContactRow{Number: c.Number, Label: c.Label, Enabled: c.Enabled}
		st, err := state.Load(paths.StatePath(a.cfg.DataRoot, c.Number))
		if err == nil {
			if st.LastRun != nil {
				row.LastRun = *st.LastRun
			}
			row.Cursor = st.LastRowID
		}
		rows = append(rows, row)
	}
	a.contactList.Update(rows)
}

func (a *App) addContact(number, label string) {
	if err := paths.ValidateNumber(number); err != nil {
		a.setFlash(err.Error(), model.Warn)
		return
	}
	idxPath := paths.IndexPath(a.cfg.DataRoot)
	idx, err := catalog.Load(idxPath)
	if err != nil {
		a.setFlash("contact index unreadable, rebuilding: "+err.Error(), model.Warn)
	}
	idx.Upsert(number, label)
	if err := paths.EnsureDataRoot(a.cfg.DataRoot); err != nil {
		a.setFlash("data root: "+err.Error(), model.Warn)
		return
	}
	if err := catalog.Save(idxPath, idx); err != nil {
		a.setFlash("save contact index: "+err.Error(), model.Warn)
		return
	}
	a.setFlash("registered "+number, model.Info)
	a.backToMenu()
}

func (a *App) disableSelected() {
	number := a.contactList.Selected()
	if number == "" {
		return
	}
	idxPath := paths.IndexPath(a.cfg.DataRoot)
	idx, err := catalog.Load(idxPath)
	if err != nil {
		a.setFlash("contact index unreadable: "+err.Error(), model.Warn)
		return
	}
	if !idx.Disable(number) {
		return
	}
	if err := catalog.Save(idxPath, idx); err != nil {
		a.setFlash("save contact index: "+err.Error(), model.Warn)
		return
	}
	a.setFlash("disabled "+number+" (exported data kept)", model.Info)
	a.refreshContacts()
}

func (a *App) saveSettings(cfg *config.Config) {
	if err := config.Save(paths.ConfigPath(), cfg); err != nil {
		a.setFlash("save config: "+err.Error(), model.Warn)
		return
	}
	a.cfg = cfg
	a.setFlash("settings saved; restart imxd to apply the schedule", model.Info)
	a.backToMenu()
}

func (a *App) runExport() {
	if err := a.machine.Transition(status.Running); err != nil {
		a.setFlash("export already in progress", model.Warn)
		return
	}

	go func() {
		defer a.refreshAsync()

		lk, err := lock.Acquire(paths.LockPath(a.cfg.DataRoot))
		if err != nil {
			_ = a.machine.Transition(status.Error)
			var held *lock.LockHeldError
			if errors.As(err, &held) {
				a.setFlash(fmt.Sprintf("another imx process holds the lock (pid %d)", held.PID), model.Warn)
			} else {
				a.setFlash("lock: "+err.Error(), model.Warn)
			}
			return
		}
		defer func() { _ = lk.Release() }()

		exporter := export.New(export.Options{
			StorePath:          a.cfg.StorePath,
			DataRoot:           a.cfg.DataRoot,
			IncludeAttachments: a.cfg.IncludeAttachments,
			Scope:              msgstore.Incremental(),
		}, a.bus, a.logger)

		summary, err := exporter.Run()
		if err != nil {
			_ = a.machine.Transition(status.Error)
			if errors.Is(err, msgstore.ErrStoreUnavailable) {
				a.setFlash("message store unavailable; grant Full Disk Access and retry", model.Warn)
			} else {
				a.setFlash("export failed: "+err.Error(), model.Warn)
			}
			return
		}

		_ = a.machine.Transition(status.Idle)
		a.setFlash(fmt.Sprintf("export done: %d new message(s) across %d contact(s)",
			summary.NewRecords, summary.ContactsWithNew), model.Info)
	}()
}

func (a *App) setFlash(msg string, level model.Level) {
	a.flash.Set(msg, level, 5*time.Second)
}

func (a *App) refreshAsync() {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetState(string(a.machine.Current()))
		msg, lvl := a.flash.Get()
		a.statusBar.SetFlash(msg, lvl)
		if page, _ := a.pages.GetFrontPage(); page == "contacts" {
			a.refreshContacts()
		}
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	go a.watchEvents()
	go a.tickStatusBar()
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	close(a.done)
	a.app.Stop()
}

// watchEvents mirrors exporter progress into the status bar as runs happen.
func (a *App) watchEvents() {
	ch, cancel := a.bus.Subscribe("export.", 16)
	defer cancel()

	for {
		select {
		case evt := <-ch:
			switch evt.Kind {
			case "export.contact_done":
				if res, ok := evt.Payload.(export.Result); ok && res.NewRecords > 0 {
					a.setFlash(fmt.Sprintf("%s: %d new", res.Number, res.NewRecords), model.Info)
				}
			}
			a.refreshAsync()
		case <-a.done:
			return
		}
	}
}

func (a *App) tickStatusBar() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetState(string(a.machine.Current()))
				msg, lvl := a.flash.Get()
				a.statusBar.SetFlash(msg, lvl)
			})
		case <-a.done:
			return
		}
	}
}
