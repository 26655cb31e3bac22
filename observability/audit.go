// Package observability persists an audit trail of extraction
// operations to SQLite. Logging is asynchronous and never fails the
// operation being logged.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/domsnip/idgen"
)

// AuditEntry is a single extraction record.
type AuditEntry struct {
	EntryID   string
	Timestamp time.Time

	Source   string // URL, file path, or "inline"
	Selector string
	Mode     string // "live" or "static"

	Transport string
	RequestID string

	Status       string // "success", "error"
	ErrorMessage string
	DurationMs   int64

	Nodes        int
	Declarations int
	Variables    int
	Pseudo       int
	OutputBytes  int
}

// AuditFilter controls query results from the extraction log.
type AuditFilter struct {
	StartTime *time.Time
	EndTime   *time.Time
	Source    *string
	Mode      *string
	Status    *string
	Limit     int // default 100
	Offset    int
	OrderBy   string // "timestamp" or "duration_ms"
	OrderDir  string // "ASC" or "DESC"
}

// AuditLogger persists extraction records asynchronously.
type AuditLogger struct {
	db    *sql.DB
	newID idgen.Generator
	ch    chan *AuditEntry
	stop  chan struct{}
	done  chan struct{}
}

// AuditOption configures an AuditLogger.
type AuditOption func(*AuditLogger)

// WithAuditIDGenerator sets a custom ID generator for entry IDs.
func WithAuditIDGenerator(gen idgen.Generator) AuditOption {
	return func(a *AuditLogger) { a.newID = gen }
}

// NewAuditLogger creates an async audit logger. Recommended bufferSize: 1000.
func NewAuditLogger(db *sql.DB, bufferSize int, opts ...AuditOption) *AuditLogger {
	a := &AuditLogger{
		db:    db,
		newID: idgen.Prefixed("aud_", idgen.Default),
		ch:    make(chan *AuditEntry, bufferSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	go a.flushLoop()
	return a
}

// Log inserts an audit entry synchronously.
func (a *AuditLogger) Log(ctx context.Context, entry *AuditEntry) error {
	a.fillDefaults(entry)
	return a.insert(ctx, entry)
}

// LogAsync queues an entry for async persistence.
// Falls back to synchronous insert if the buffer is full.
func (a *AuditLogger) LogAsync(entry *AuditEntry) {
	a.fillDefaults(entry)
	select {
	case a.ch <- entry:
	default:
		slog.Warn("observability: audit buffer full, sync fallback", "source", entry.Source)
		if err := a.insert(context.Background(), entry); err != nil {
			slog.Error("observability: sync fallback failed", "error", err)
		}
	}
}

// Query retrieves audit entries matching the given filter.
func (a *AuditLogger) Query(ctx context.Context, f *AuditFilter) ([]*AuditEntry, error) {
	q := `SELECT entry_id, timestamp, source, selector, mode,
		transport, request_id, status, error_message, duration_ms,
		nodes, declarations, variables, pseudo, output_bytes
		FROM extraction_log WHERE 1=1`
	var args []any

	if f.StartTime != nil {
		q += " AND timestamp >= ?"
		args = append(args, f.StartTime.Unix())
	}
	if f.EndTime != nil {
		q += " AND timestamp <= ?"
		args = append(args, f.EndTime.Unix())
	}
	if f.Source != nil {
		q += " AND source = ?"
		args = append(args, *f.Source)
	}
	if f.Mode != nil {
		q += " AND mode = ?"
		args = append(args, *f.Mode)
	}
	if f.Status != nil {
		q += " AND status = ?"
		args = append(args, *f.Status)
	}

	orderBy := "timestamp"
	if f.OrderBy != "" {
		switch f.OrderBy {
		case "timestamp", "duration_ms", "source", "status":
			orderBy = f.OrderBy
		default:
			return nil, fmt.Errorf("invalid order_by column: %q", f.OrderBy)
		}
	}
	orderDir := "DESC"
	if f.OrderDir != "" {
		switch strings.ToUpper(f.OrderDir) {
		case "ASC", "DESC":
			orderDir = strings.ToUpper(f.OrderDir)
		default:
			return nil, fmt.Errorf("invalid order_dir: %q", f.OrderDir)
		}
	}
	q += fmt.Sprintf(" ORDER BY %s %s", orderBy, orderDir)

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts int64
		var transport, requestID, errMsg sql.NullString
		var durMs, nodes, decls, vars, pseudo, bytes sql.NullInt64
		if err := rows.Scan(&e.EntryID, &ts, &e.Source, &e.Selector, &e.Mode,
			&transport, &requestID, &e.Status, &errMsg, &durMs,
			&nodes, &decls, &vars, &pseudo, &bytes); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Transport = transport.String
		e.RequestID = requestID.String
		e.ErrorMessage = errMsg.String
		e.DurationMs = durMs.Int64
		e.Nodes = int(nodes.Int64)
		e.Declarations = int(decls.Int64)
		e.Variables = int(vars.Int64)
		e.Pseudo = int(pseudo.Int64)
		e.OutputBytes = int(bytes.Int64)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Purge deletes entries older than the retention window. Returns the
// number of rows removed.
func (a *AuditLogger) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM extraction_log WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close drains pending entries and stops the flush loop.
func (a *AuditLogger) Close() {
	close(a.stop)
	<-a.done
}

func (a *AuditLogger) fillDefaults(e *AuditEntry) {
	if e.EntryID == "" {
		e.EntryID = a.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Status == "" {
		e.Status = "success"
	}
}

func (a *AuditLogger) flushLoop() {
	defer close(a.done)
	for {
		select {
		case e := <-a.ch:
			if err := a.insert(context.Background(), e); err != nil {
				slog.Error("observability: audit insert failed", "error", err)
			}
		case <-a.stop:
			for {
				select {
				case e := <-a.ch:
					if err := a.insert(context.Background(), e); err != nil {
						slog.Error("observability: audit drain failed", "error", err)
					}
				default:
					return
				}
			}
		}
	}
}

func (a *AuditLogger) insert(ctx context.Context, e *AuditEntry) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO extraction_log (entry_id, timestamp, source, selector,
			mode, transport, request_id, status, error_message, duration_ms,
			nodes, declarations, variables, pseudo, output_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID, e.Timestamp.Unix(), e.Source, e.Selector,
		e.Mode, e.Transport, e.RequestID, e.Status, e.ErrorMessage, e.DurationMs,
		e.Nodes, e.Declarations, e.Variables, e.Pseudo, e.OutputBytes)
	return err
}
