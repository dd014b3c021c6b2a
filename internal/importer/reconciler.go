package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/date"
	"github.com/mwalkowiak/spendlite/internal/ofx"
	"github.com/mwalkowiak/spendlite/internal/storage"
)

// Recorder persists a single expense. Satisfied by *storage.SQLiteStore.
type Recorder interface {
	RecordExpense(ctx context.Context, userID int64, categoryName string, amount float64, description string, day date.Date) error
}

// Verdict summarizes a completed batch.
type Verdict string

const (
	// VerdictAllSucceeded means every row was persisted.
	VerdictAllSucceeded Verdict = "all succeeded"
	// VerdictPartial means some rows were persisted and some failed.
	VerdictPartial Verdict = "partial"
	// VerdictAllFailed means no row was persisted.
	VerdictAllFailed Verdict = "all failed"
)

// Result reports aggregate success/failure counts for a batch. Per-row error
// detail is logged, not retained.
type Result struct {
	Succeeded int
	Failed    int
}

// Verdict classifies the batch outcome.
func (r Result) Verdict() Verdict {
	switch {
	case r.Failed == 0:
		return VerdictAllSucceeded
	case r.Succeeded == 0:
		return VerdictAllFailed
	default:
		return VerdictPartial
	}
}

// Fallback layouts tried when the configured date format does not match.
// Day-first layouts come before month-first, matching the bank exports this
// importer grew up on.
var fallbackDateLayouts = []string{
	date.Format,
	"2006-1-2",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
}

// Reconciler feeds parsed table rows through a Recorder, tallying per-row
// success and failure without ever aborting the batch.
type Reconciler struct {
	recorder Recorder

	// DateFormat is tried first when parsing dates; fallback layouts cover
	// the rest. Defaults to ISO.
	DateFormat string

	// OnRow, when set, is invoked after each row with its outcome.
	OnRow func(row int, err error)
}

// NewReconciler creates a reconciler writing through the given recorder.
func NewReconciler(recorder Recorder) *Reconciler {
	return &Reconciler{
		recorder:   recorder,
		DateFormat: date.Format,
	}
}

// Execute records every data row independently. A malformed row is counted
// as a failure and skipped; the batch always runs to completion regardless
// of where malformed rows sit in the file.
func (rec *Reconciler) Execute(ctx context.Context, table *Table, mapping ColumnMapping, defaultCategory string, userID int64) (Result, error) {
	if table == nil {
		return Result{}, fmt.Errorf("table cannot be nil")
	}
	if mapping.Amount < 0 || mapping.Date < 0 {
		return Result{}, fmt.Errorf("amount and date columns must be mapped")
	}

	var result Result
	for i, row := range table.Rows {
		err := rec.executeRow(ctx, row, mapping, defaultCategory, userID)
		if err != nil {
			result.Failed++
			slog.Warn("import row failed", "row", i+1, "error", err)
		} else {
			result.Succeeded++
		}
		if rec.OnRow != nil {
			rec.OnRow(i, err)
		}
	}

	slog.Info("import batch finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"verdict", string(result.Verdict()))
	return result, nil
}

// ExecuteEntries records pre-parsed statement entries with the same per-entry
// failure isolation as Execute. Zero-amount entries are informational notices
// in bank statements and are counted as failures rather than persisted.
func (rec *Reconciler) ExecuteEntries(ctx context.Context, entries []ofx.Entry, defaultCategory string, userID int64) Result {
	var result Result
	for i, entry := range entries {
		err := rec.recordEntry(ctx, entry, defaultCategory, userID)
		if err != nil {
			result.Failed++
			common.LogError(err, "statement entry skipped", common.Fields{"entry": i + 1})
		} else {
			result.Succeeded++
		}
		if rec.OnRow != nil {
			rec.OnRow(i, err)
		}
	}

	slog.Info("statement batch finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"verdict", string(result.Verdict()))
	return result
}

func (rec *Reconciler) recordEntry(ctx context.Context, entry ofx.Entry, defaultCategory string, userID int64) error {
	if entry.Amount == 0 {
		return fmt.Errorf("%w: entry %q", storage.ErrZeroAmount, entry.Description)
	}

	category := strings.TrimSpace(defaultCategory)
	if category == "" {
		category = storage.DefaultCategoryName
	}

	return rec.recorder.RecordExpense(ctx, userID, category, entry.Amount, entry.Description, entry.Date)
}

func (rec *Reconciler) executeRow(ctx context.Context, row []string, mapping ColumnMapping, defaultCategory string, userID int64) error {
	amount, err := ParseAmount(cell(row, mapping.Amount))
	if err != nil {
		return err
	}

	day, err := rec.parseDate(cell(row, mapping.Date))
	if err != nil {
		return err
	}

	category := strings.TrimSpace(cell(row, mapping.Category))
	if category == "" {
		category = strings.TrimSpace(defaultCategory)
	}
	if category == "" {
		category = storage.DefaultCategoryName
	}

	description := strings.TrimSpace(cell(row, mapping.Description))

	return rec.recorder.RecordExpense(ctx, userID, category, amount, description, day)
}

// cell returns the column value, tolerating short rows and unmapped columns.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ParseAmount parses a decimal amount, tolerating thousands separators,
// no-break spaces, and a lone comma as the decimal separator. Zero amounts
// are rejected.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("%w: blank", common.ErrInvalidAmount)
	}

	switch {
	case strings.Contains(s, "."):
		// Period is the decimal separator; commas are thousands separators.
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable %q: %v", common.ErrInvalidAmount, raw, err)
	}
	if value == 0 {
		return 0, fmt.Errorf("%w: %q is zero", common.ErrInvalidAmount, raw)
	}
	return value, nil
}

func (rec *Reconciler) parseDate(raw string) (date.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return date.Date{}, fmt.Errorf("%w: blank", common.ErrInvalidDate)
	}

	layouts := fallbackDateLayouts
	if rec.DateFormat != "" {
		layouts = append([]string{rec.DateFormat}, fallbackDateLayouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return date.FromTime(t), nil
		}
	}
	return date.Date{}, fmt.Errorf("%w: unparseable %q", common.ErrInvalidDate, raw)
}
