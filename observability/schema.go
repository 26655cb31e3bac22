package observability

import "database/sql"

// Schema contains the DDL for the extraction audit table.
// Call Init(db) to apply it, or embed the constant in your own schema
// management.
const Schema = `
CREATE TABLE IF NOT EXISTS extraction_log (
    entry_id TEXT PRIMARY KEY,
    timestamp INTEGER NOT NULL,
    source TEXT NOT NULL,
    selector TEXT NOT NULL,
    mode TEXT NOT NULL,
    transport TEXT,
    request_id TEXT,
    status TEXT NOT NULL,
    error_message TEXT,
    duration_ms INTEGER,
    nodes INTEGER,
    declarations INTEGER,
    variables INTEGER,
    pseudo INTEGER,
    output_bytes INTEGER,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_extraction_timestamp ON extraction_log(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_extraction_source ON extraction_log(source);
CREATE INDEX IF NOT EXISTS idx_extraction_status ON extraction_log(status);
`

// Init applies the schema to the database.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
