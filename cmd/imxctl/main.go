package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/stecurtis/imx/internal/bus"
	"github.com/stecurtis/imx/internal/catalog"
	"github.com/stecurtis/imx/internal/config"
	"github.com/stecurtis/imx/internal/export"
	"github.com/stecurtis/imx/internal/lock"
	"github.com/stecurtis/imx/internal/logging"
	"github.com/stecurtis/imx/internal/msgstore"
	"github.com/stecurtis/imx/internal/paths"
	"github.com/stecurtis/imx/internal/state"
)

func main() {
	configFlag := flag.String("config", "", "config file path (overrides default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	allFlag := flag.Bool("all", false, "run: re-read full history instead of incremental")
	daysFlag := flag.Int("days", 0, "run: only read messages from the last N days")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = paths.ConfigPath()
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := paths.EnsureBaseDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: config unreadable, using defaults: %v\n", err)
	}
	if err := paths.EnsureDataRoot(cfg.DataRoot); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: imxctl add <number> [label]")
			os.Exit(1)
		}
		label := ""
		if len(args) >= 3 {
			label = args[2]
		}
		cmdAdd(cfg, args[1], label, *jsonFlag)
	case "list":
		cmdList(cfg, *jsonFlag)
	case "disable":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: imxctl disable <number>")
			os.Exit(1)
		}
		cmdDisable(cfg, args[1])
	case "run":
		cmdRun(cfg, scopeFromFlags(*allFlag, *daysFlag), *jsonFlag)
	case "status":
		cmdStatus(cfg, *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: imxctl [--config <path>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  add <number> [label]   Register a contact for export")
	fmt.Fprintln(os.Stderr, "  list                   List registered contacts")
	fmt.Fprintln(os.Stderr, "  disable <number>       Stop exporting a contact (data kept)")
	fmt.Fprintln(os.Stderr, "  run [--all|--days N]   Run an export pass now")
	fmt.Fprintln(os.Stderr, "  status                 Show daemon and data-root status")
}

func scopeFromFlags(all bool, days int) msgstore.ImportScope {
	switch {
	case all:
		return msgstore.All()
	case days > 0:
		return msgstore.LastNDays(days)
	default:
		return msgstore.Incremental()
	}
}

func cmdAdd(cfg *config.Config, number, label string, jsonOut bool) {
	if err := paths.ValidateNumber(number); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	idxPath := paths.IndexPath(cfg.DataRoot)
	idx, err := catalog.Load(idxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: contact index unreadable, rebuilding: %v\n", err)
	}
	idx.Upsert(number, label)
	if err := catalog.Save(idxPath, idx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		outputJSON(idx.Get(number))
		return
	}
	fmt.Printf("Registered %s\n", number)
}

func cmdList(cfg *config.Config, jsonOut bool) {
	idx, err := catalog.Load(paths.IndexPath(cfg.DataRoot))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	type row struct {
		Number  string `json:"number"`
		Label   string `json:"label"`
		Enabled bool   `json:"enabled"`
		LastRun string `json:"last_run,omitempty"`
		Cursor  *int64 `json:"last_rowid"`
	}
	rows := make([]row, 0, len(idx.Contacts))
	for _, c := range idx.Contacts {
		r := row{Number: c.Number, Label: c.Label, Enabled: c.Enabled}
		if st, err := state.Load(paths.StatePath(cfg.DataRoot, c.Number)); err == nil {
			if st.LastRun != nil {
				r.LastRun = *st.LastRun
			}
			r.Cursor = st.LastRowID
		}
		rows = append(rows, r)
	}

	if jsonOut {
		outputJSON(rows)
		return
	}
	if len(rows) == 0 {
		fmt.Println("No contacts registered.")
		return
	}
	for _, r := range rows {
		enabled := "enabled"
		if !r.Enabled {
			enabled = "disabled"
		}
		lastRun := r.LastRun
		if lastRun == "" {
			lastRun = "never"
		}
		fmt.Printf("%-20s %-24s %-8s last run %s\n", r.Number, r.Label, enabled, lastRun)
	}
}

func cmdDisable(cfg *config.Config, number string) {
	idxPath := paths.IndexPath(cfg.DataRoot)
	idx, err := catalog.Load(idxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !idx.Disable(number) {
		fmt.Fprintf(os.Stderr, "error: contact %s not found\n", number)
		os.Exit(1)
	}
	if err := catalog.Save(idxPath, idx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Disabled %s (exported data kept)\n", number)
}

func cmdRun(cfg *config.Config, scope msgstore.ImportScope, jsonOut bool) {
	lk, err := lock.Acquire(paths.LockPath(cfg.DataRoot))
	if err != nil {
		var held *lock.LockHeldError
		if errors.As(err, &held) {
			fmt.Fprintf(os.Stderr, "error: another imx process holds the lock (pid %d); stop imxd first\n", held.PID)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
	defer func() { _ = lk.Release() }()

	b := bus.New()
	// Buffered wide enough to hold one event per contact; drained after the run.
	results, cancel := b.Subscribe("export.contact_done", 256)
	defer cancel()

	exporter := export.New(export.Options{
		StorePath:          cfg.StorePath,
		DataRoot:           cfg.DataRoot,
		IncludeAttachments: cfg.IncludeAttachments,
		Scope:              scope,
	}, b, logging.NewConsole())

	summary, err := exporter.Run()
	if err != nil {
		if errors.Is(err, msgstore.ErrStoreUnavailable) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			fmt.Fprintln(os.Stderr, "grant Full Disk Access to imxctl in System Settings and retry")
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	if jsonOut {
		outputJSON(summary)
		return
	}

	for {
		select {
		case evt := <-results:
			if res, ok := evt.Payload.(export.Result); ok {
				fmt.Printf("%-20s %-16s %d new, %d total\n", res.Number, res.Outcome, res.NewRecords, res.TotalRecords)
			}
			continue
		default:
		}
		break
	}
	fmt.Printf("Checked %d contact(s): %d new message(s), %d failure(s)\n",
		summary.ContactsChecked, summary.NewRecords, summary.Failures)
	if summary.Failures > 0 {
		os.Exit(1)
	}
}

func cmdStatus(cfg *config.Config, jsonOut bool) {
	type statusOut struct {
		DataRoot      string `json:"data_root"`
		StorePath     string `json:"store_path"`
		Contacts      int    `json:"contacts"`
		DaemonRunning bool   `json:"daemon_running"`
		DaemonPID     int    `json:"daemon_pid,omitempty"`
	}

	out := statusOut{DataRoot: cfg.DataRoot, StorePath: cfg.StorePath}

	idx, err := catalog.Load(paths.IndexPath(cfg.DataRoot))
	if err == nil {
		out.Contacts = len(idx.Enabled())
	}

	lk, err := lock.Acquire(paths.LockPath(cfg.DataRoot))
	if err != nil {
		var held *lock.LockHeldError
		if errors.As(err, &held) {
			out.DaemonRunning = true
			out.DaemonPID = held.PID
		}
	} else {
		_ = lk.Release()
	}

	if jsonOut {
		outputJSON(out)
		return
	}
	fmt.Printf("Data root:  %s\n", out.DataRoot)
	fmt.Printf("Store:      %s\n", out.StorePath)
	fmt.Printf("Contacts:   %d enabled\n", out.Contacts)
	if out.DaemonRunning {
		fmt.Printf("Daemon:     running (pid %d)\n", out.DaemonPID)
	} else {
		fmt.Println("Daemon:     not running")
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
