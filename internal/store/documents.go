package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ghosh9691/mmelParser/internal/mmel"
)

// Document is one stored parse of a source file.
type Document struct {
	ID          string      `db:"id" json:"id"`
	Family      string      `db:"family" json:"family"`
	Dialect     string      `db:"dialect" json:"dialect"`
	Filename    string      `db:"filename" json:"filename"`
	ContentHash string      `db:"content_hash" json:"content_hash"`
	EntryCount  int         `db:"entry_count" json:"entry_count"`
	Quality     QualityJSON `db:"quality" json:"quality"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// QualityJSON stores mmel.Quality as a JSON column.
type QualityJSON mmel.Quality

func (q QualityJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (q *QualityJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = QualityJSON{}
		return nil
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	default:
		return fmt.Errorf("scan quality: unsupported type %T", src)
	}
}

type entryRow struct {
	ID                string `db:"id"`
	DocumentFamily    string `db:"document_family"`
	SectionCode       string `db:"section_code"`
	ItemNumber        string `db:"item_number"`
	Occurrence        int    `db:"occurrence"`
	Line              int    `db:"line"`
	Title             string `db:"title"`
	DeferralCategory  string `db:"deferral_category"`
	QuantityInstalled int    `db:"quantity_installed"`
	QuantityRequired  int    `db:"quantity_required"`
	RemarksSummary    string `db:"remarks_summary"`
}

type listRow struct {
	EntryID  string `db:"entry_id"`
	Position int    `db:"position"`
	Text     string `db:"text"`
}

// Tables holding the ordered list fields of an entry.
const (
	tableMaintenance = "maintenance_procedures"
	tableOperational = "operational_procedures"
	tableSteps       = "remarks_steps"
)

// SaveDocument stores doc and its entries in one transaction. Empty IDs
// are assigned; CreatedAt and EntryCount are set from the call.
func (s *Store) SaveDocument(ctx context.Context, doc *Document, entries []mmel.Entry) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.CreatedAt = time.Now().UTC()
	doc.EntryCount = len(entries)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin save", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO documents (
		id, family, dialect, filename, content_hash, entry_count, quality, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		doc.ID, doc.Family, doc.Dialect, doc.Filename, doc.ContentHash, doc.EntryCount, doc.Quality, doc.CreatedAt)
	if err != nil {
		return wrap("insert document", err)
	}

	insertEntry, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO entries (
		id, document_id, position, document_family, section_code, item_number, occurrence, line,
		title, deferral_category, quantity_installed, quantity_required, remarks_summary
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return wrap("prepare entry insert", err)
	}
	defer insertEntry.Close()

	lists := map[string]*sqlx.Stmt{}
	for _, table := range []string{tableMaintenance, tableOperational, tableSteps} {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(
			"INSERT INTO "+table+" (entry_id, position, text) VALUES (?, ?, ?)"))
		if err != nil {
			return wrap("prepare "+table+" insert", err)
		}
		defer stmt.Close()
		lists[table] = stmt
	}

	for i, e := range entries {
		entryID := uuid.NewString()
		_, err := insertEntry.ExecContext(ctx,
			entryID, doc.ID, i, e.DocumentFamily, e.SectionCode, e.ItemNumber, e.Occurrence, e.Line,
			e.Title, e.DeferralCategory, e.QuantityInstalled, e.QuantityRequired, e.RemarksSummary)
		if err != nil {
			return wrap(fmt.Sprintf("insert entry %s", e.ItemNumber), err)
		}
		for table, items := range map[string][]string{
			tableMaintenance: e.MaintenanceProcedures,
			tableOperational: e.OperationalProcedures,
			tableSteps:       e.RemarksSteps,
		} {
			for pos, text := range items {
				if _, err := lists[table].ExecContext(ctx, entryID, pos, text); err != nil {
					return wrap("insert "+table, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("commit save", err)
	}
	s.log.Debug("document saved", "doc_id", doc.ID, "entries", len(entries))
	return nil
}

// GetDocument returns the document with id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.db.GetContext(ctx, &doc, s.db.Rebind("SELECT * FROM documents WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("get document", err)
	}
	return &doc, nil
}

// FindByHash returns the most recent document with the given content hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (*Document, error) {
	var doc Document
	err := s.db.GetContext(ctx, &doc, s.db.Rebind(
		"SELECT * FROM documents WHERE content_hash = ? ORDER BY created_at DESC LIMIT 1"), hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("find by hash", err)
	}
	return &doc, nil
}

// ListDocuments returns stored documents, newest first. An empty family
// lists all of them.
func (s *Store) ListDocuments(ctx context.Context, family string) ([]Document, error) {
	docs := []Document{}
	var err error
	if family == "" {
		err = s.db.SelectContext(ctx, &docs, "SELECT * FROM documents ORDER BY created_at DESC")
	} else {
		err = s.db.SelectContext(ctx, &docs, s.db.Rebind(
			"SELECT * FROM documents WHERE UPPER(TRIM(family)) = ? ORDER BY created_at DESC"),
			normalizeFamily(family))
	}
	if err != nil {
		return nil, wrap("list documents", err)
	}
	return docs, nil
}

// ListEntries reassembles the entries of a document in their original order.
func (s *Store) ListEntries(ctx context.Context, docID string) ([]mmel.Entry, error) {
	if _, err := s.GetDocument(ctx, docID); err != nil {
		return nil, err
	}

	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`SELECT
		id, document_family, section_code, item_number, occurrence, line,
		title, deferral_category, quantity_installed, quantity_required, remarks_summary
		FROM entries WHERE document_id = ? ORDER BY position`), docID)
	if err != nil {
		return nil, wrap("list entries", err)
	}

	lists := make(map[string]map[string][]string, 3)
	for _, table := range []string{tableMaintenance, tableOperational, tableSteps} {
		var items []listRow
		err := s.db.SelectContext(ctx, &items, s.db.Rebind(
			"SELECT l.entry_id, l.position, l.text FROM "+table+" l "+
				"JOIN entries e ON e.id = l.entry_id WHERE e.document_id = ? "+
				"ORDER BY l.entry_id, l.position"), docID)
		if err != nil {
			return nil, wrap("list "+table, err)
		}
		byEntry := make(map[string][]string)
		for _, it := range items {
			byEntry[it.EntryID] = append(byEntry[it.EntryID], it.Text)
		}
		lists[table] = byEntry
	}

	entries := make([]mmel.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, mmel.Entry{
			DocumentFamily:        r.DocumentFamily,
			SectionCode:           r.SectionCode,
			ItemNumber:            r.ItemNumber,
			Occurrence:            r.Occurrence,
			Line:                  r.Line,
			Title:                 r.Title,
			DeferralCategory:      r.DeferralCategory,
			QuantityInstalled:     r.QuantityInstalled,
			QuantityRequired:      r.QuantityRequired,
			RemarksSummary:        r.RemarksSummary,
			RemarksSteps:          orEmpty(lists[tableSteps][r.ID]),
			MaintenanceProcedures: orEmpty(lists[tableMaintenance][r.ID]),
			OperationalProcedures: orEmpty(lists[tableOperational][r.ID]),
		})
	}
	return entries, nil
}

// DeleteDocument removes a document and everything stored under it.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin delete", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{tableMaintenance, tableOperational, tableSteps} {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			"DELETE FROM "+table+" WHERE entry_id IN (SELECT id FROM entries WHERE document_id = ?)"), id)
		if err != nil {
			return wrap("delete "+table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM entries WHERE document_id = ?"), id); err != nil {
		return wrap("delete entries", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM documents WHERE id = ?"), id)
	if err != nil {
		return wrap("delete document", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit delete", err)
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
