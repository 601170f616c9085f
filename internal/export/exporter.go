package export

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/stecurtis/imx/internal/appletime"
	"github.com/stecurtis/imx/internal/bus"
	"github.com/stecurtis/imx/internal/catalog"
	"github.com/stecurtis/imx/internal/msgstore"
	"github.com/stecurtis/imx/internal/paths"
	"github.com/stecurtis/imx/internal/state"
	"go.uber.org/zap"
)

// Outcome classifies one contact's run.
type Outcome int

const (
	// OutcomeExported: new records were merged and artifacts rewritten.
	OutcomeExported Outcome = iota
	// OutcomeNoNewMessages: the cursor already covered everything.
	OutcomeNoNewMessages
	// OutcomeNoMessages: first run and the store holds nothing for the
	// contact's handles.
	OutcomeNoMessages
	// OutcomeNoHandles: the identifier matched no handle rows. Not an
	// error; reported distinctly so the caller can flag a likely typo.
	OutcomeNoHandles
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExported:
		return "exported"
	case OutcomeNoNewMessages:
		return "no new messages"
	case OutcomeNoMessages:
		return "no messages found"
	case OutcomeNoHandles:
		return "no matching handles in store"
	default:
		return "unknown"
	}
}

// Result summarizes one contact's export.
type Result struct {
	Number       string
	Label        string
	Outcome      Outcome
	NewRecords   int
	TotalRecords int
	Cursor       *int64
}

// RunSummary aggregates a whole run over all enabled contacts.
type RunSummary struct {
	RunID           string
	ContactsChecked int
	ContactsWithNew int
	NewRecords      int
	Failures        int
}

// Options configures an Exporter. The core takes explicit paths only and
// never resolves ambient locations itself.
type Options struct {
	StorePath          string
	DataRoot           string
	IncludeAttachments bool
	Scope              msgstore.ImportScope
}

// Exporter runs incremental exports for registered contacts.
type Exporter struct {
	opts   Options
	bus    *bus.Bus
	logger *zap.Logger
}

// New creates an exporter.
func New(opts Options, b *bus.Bus, logger *zap.Logger) *Exporter {
	return &Exporter{opts: opts, bus: b, logger: logger}
}

// Run executes one export pass: it opens the store read-only for the
// duration of the run, processes every enabled contact sequentially, and
// closes the store on all exit paths. A contact-level failure is logged and
// skipped; only an unavailable store aborts the run, before any state is
// touched.
func (e *Exporter) Run() (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}

	if err := paths.EnsureDataRoot(e.opts.DataRoot); err != nil {
		return summary, fmt.Errorf("create data root: %w", err)
	}

	idx, err := catalog.Load(paths.IndexPath(e.opts.DataRoot))
	if err != nil {
		e.logger.Warn("contact index unreadable, treating as empty", zap.Error(err))
	}
	contacts := idx.Enabled()
	if len(contacts) == 0 {
		e.logger.Info("no enabled contacts, nothing to export", zap.String("run_id", summary.RunID))
		return summary, nil
	}

	db, err := msgstore.Open(e.opts.StorePath)
	if err != nil {
		return summary, err
	}
	defer func() { _ = db.Close() }()

	e.publish("export.run_started", summary)
	e.logger.Info("export run started",
		zap.String("run_id", summary.RunID),
		zap.Int("contacts", len(contacts)))

	for _, c := range contacts {
		summary.ContactsChecked++
		res, err := e.runContact(db, c, summary.RunID)
		if err != nil {
			summary.Failures++
			e.logger.Error("contact export failed",
				zap.String("run_id", summary.RunID),
				zap.String("contact", c.Number),
				zap.Error(err))
			continue
		}
		if res.NewRecords > 0 {
			summary.ContactsWithNew++
			summary.NewRecords += res.NewRecords
		}
		e.publish("export.contact_done", res)
		e.logger.Info("contact checked",
			zap.String("run_id", summary.RunID),
			zap.String("contact", c.Number),
			zap.String("outcome", res.Outcome.String()),
			zap.Int("new_records", res.NewRecords),
			zap.Int("total_records", res.TotalRecords))
	}

	e.publish("export.run_done", summary)
	e.logger.Info("export run done",
		zap.String("run_id", summary.RunID),
		zap.Int("contacts_with_new", summary.ContactsWithNew),
		zap.Int("new_records", summary.NewRecords),
		zap.Int("failures", summary.Failures))
	return summary, nil
}

// RunContact exports a single contact outside a batch run.
func (e *Exporter) RunContact(db *msgstore.DB, c catalog.Contact) (Result, error) {
	return e.runContact(db, c, uuid.NewString())
}

func (e *Exporter) runContact(db *msgstore.DB, c catalog.Contact, runID string) (Result, error) {
	res := Result{Number: c.Number, Label: c.Label}

	dir := paths.ContactDir(e.opts.DataRoot, c.Number)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, fmt.Errorf("create contact dir: %w", err)
	}

	handles, err := db.ResolveHandles(c.Number)
	if err != nil {
		return res, err
	}
	if len(handles) == 0 {
		res.Outcome = OutcomeNoHandles
		return res, nil
	}

	statePath := paths.StatePath(e.opts.DataRoot, c.Number)
	st, err := state.Load(statePath)
	if err != nil {
		e.logger.Warn("state unreadable, re-exporting from scratch",
			zap.String("contact", c.Number), zap.Error(err))
	}

	rows, err := db.FetchMessages(handles, e.opts.Scope, st.LastRowID)
	if err != nil {
		return res, err
	}

	now := appletime.FormatISO(time.Now().Truncate(time.Second))

	if len(rows) == 0 {
		if st.LastRowID != nil {
			res.Outcome = OutcomeNoNewMessages
		} else {
			res.Outcome = OutcomeNoMessages
		}
		res.Cursor = st.LastRowID
		// LastRun moves even on empty runs so tooling can tell "ran but
		// found nothing" from "never ran". Artifacts stay untouched,
		// keeping them byte-stable.
		st.LastRun = &now
		st.LastRunID = runID
		if err := state.Save(statePath, st); err != nil {
			return res, fmt.Errorf("save state: %w", err)
		}
		return res, nil
	}

	snapPath := paths.SnapshotPath(e.opts.DataRoot, c.Number)
	snap, err := loadSnapshot(snapPath)
	if err != nil {
		e.logger.Warn("snapshot unreadable, rebuilding from fetched rows",
			zap.String("contact", c.Number), zap.Error(err))
	}

	// Under the Incremental scope the cursor already excludes merged rows;
	// the identity set guards the no-duplicates invariant for the wider
	// scopes (All, LastNDays) that ignore the cursor.
	seen := make(map[int64]bool, len(snap.Messages))
	for _, rec := range snap.Messages {
		seen[rec.RowID] = true
	}

	var fetched []Record
	for _, raw := range rows {
		if seen[raw.RowID] {
			continue
		}
		var atts []msgstore.Attachment
		if e.opts.IncludeAttachments {
			if atts, err = db.FetchAttachments(raw.RowID); err != nil {
				return res, err
			}
		}
		fetched = append(fetched, newRecord(raw, atts))
	}

	merged, cursor := merge(snap.Messages, fetched, st.LastRowID)
	res.Cursor = cursor
	res.TotalRecords = len(merged)

	if len(fetched) == 0 {
		res.Outcome = OutcomeNoNewMessages
		st.LastRun = &now
		st.LastRunID = runID
		if err := state.Save(statePath, st); err != nil {
			return res, fmt.Errorf("save state: %w", err)
		}
		return res, nil
	}

	// Artifacts first, cursor last: a crash in between re-delivers the same
	// rows next run, which the merge absorbs. The reverse order could lose
	// the delta for good.
	if err := writeSnapshot(snapPath, Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		UpdatedAt:     now,
		Messages:      merged,
	}); err != nil {
		return res, fmt.Errorf("write snapshot: %w", err)
	}
	if err := writeCSV(paths.CSVPath(e.opts.DataRoot, c.Number), merged); err != nil {
		return res, fmt.Errorf("write csv: %w", err)
	}
	if err := writeRollup(paths.RollupPath(e.opts.DataRoot, c.Number), BuildRollup(merged)); err != nil {
		return res, fmt.Errorf("write rollup: %w", err)
	}

	st.LastRowID = cursor
	st.LastRun = &now
	st.LastRunID = runID
	if err := state.Save(statePath, st); err != nil {
		return res, fmt.Errorf("save state: %w", err)
	}

	res.Outcome = OutcomeExported
	res.NewRecords = len(fetched)
	return res, nil
}

func (e *Exporter) publish(kind string, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
