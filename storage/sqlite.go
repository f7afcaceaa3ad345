package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"citation-hand/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	name_norm  TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS citations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	type        TEXT NOT NULL,
	title       TEXT NOT NULL,
	authors     TEXT NOT NULL,
	year        INTEGER,
	publisher   TEXT,
	place       TEXT,
	edition     INTEGER,
	journal     TEXT,
	volume      INTEGER,
	issue       TEXT,
	pages       TEXT,
	doi         TEXT,
	url         TEXT,
	access_date TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_citations_type ON citations(type);

CREATE TABLE IF NOT EXISTS project_citations (
	project_id  INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	citation_id INTEGER NOT NULL REFERENCES citations(id) ON DELETE CASCADE,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (project_id, citation_id)
);
CREATE INDEX IF NOT EXISTS idx_project_citations_citation ON project_citations(citation_id);
`

const citationColumns = `c.id, c.type, c.title, c.authors, c.year, c.publisher, c.place, c.edition, c.journal,
	c.volume, c.issue, c.pages, c.doi, c.url, c.access_date, c.created_at, c.updated_at`

// SQLiteProvider speichert in einer eingebetteten SQLite-Datenbank (reines Go, kein cgo).
type SQLiteProvider struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite öffnet bzw. erzeugt die Datenbank unter path und legt das Schema an.
func OpenSQLite(path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Eine Verbindung: Transaktionen laufen nacheinander, wie bei der Speicher-Variante.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteProvider{db: db, now: time.Now}, nil
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

func (p *SQLiteProvider) View(ctx context.Context, fn func(Store) error) error {
	return fn(&sqliteStore{q: p.db, readOnly: true, now: p.now})
}

func (p *SQLiteProvider) RunInTx(ctx context.Context, fn func(Store) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteStore{q: tx, now: p.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// queryer ist die gemeinsame Schnittstelle von *sql.DB und *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteStore struct {
	q        queryer
	readOnly bool
	now      func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *sqliteStore) writable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (s *sqliteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseStamp(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func (s *sqliteStore) ProjectExists(ctx context.Context, id uint) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count project: %w", err)
	}
	return n > 0, nil
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p       models.Project
		created string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.NameNorm, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.CreatedAt = parseStamp(created)
	return &p, nil
}

func (s *sqliteStore) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return scanProject(s.q.QueryRowContext(ctx,
		`SELECT id, name, name_norm, created_at FROM projects WHERE id = ?`, id))
}

func (s *sqliteStore) ProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return scanProject(s.q.QueryRowContext(ctx,
		`SELECT id, name, name_norm, created_at FROM projects WHERE name_norm = ?`, models.NormalizeProjectName(name)))
}

func (s *sqliteStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, name_norm, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) CreateProject(ctx context.Context, p *models.Project) error {
	if err := s.writable(); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.NameNorm = models.NormalizeProjectName(p.Name)
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO projects (name, name_norm, created_at) VALUES (?, ?, ?)`,
		p.Name, p.NameNorm, p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert project %q: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("project id: %w", err)
	}
	p.ID = uint(id)
	return nil
}

func (s *sqliteStore) DeleteProject(ctx context.Context, id uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM project_citations WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete project links: %w", err)
	}
	return s.execAffecting(ctx, "delete project", `DELETE FROM projects WHERE id = ?`, id)
}

// execAffecting führt query aus und liefert ErrNotFound, wenn keine Zeile betroffen war.
func (s *sqliteStore) execAffecting(ctx context.Context, op, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCitation(row rowScanner) (*models.Citation, error) {
	var (
		c                                models.Citation
		year, edition, volume            sql.NullInt64
		publisher, place, journal, issue sql.NullString
		pages, doi, url, accessDate      sql.NullString
		created, updated                 string
	)
	err := row.Scan(&c.ID, &c.Type, &c.Title, &c.Authors, &year, &publisher, &place, &edition, &journal,
		&volume, &issue, &pages, &doi, &url, &accessDate, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan citation: %w", err)
	}
	c.Year = intFromNull(year)
	c.Publisher = stringFromNull(publisher)
	c.Place = stringFromNull(place)
	c.Edition = intFromNull(edition)
	c.Journal = stringFromNull(journal)
	c.Volume = intFromNull(volume)
	c.Issue = stringFromNull(issue)
	c.Pages = stringFromNull(pages)
	c.DOI = stringFromNull(doi)
	c.URL = stringFromNull(url)
	c.AccessDate = stringFromNull(accessDate)
	c.CreatedAt = parseStamp(created)
	c.UpdatedAt = parseStamp(updated)
	return &c, nil
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func stringFromNull(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func (s *sqliteStore) queryCitations(ctx context.Context, query string, args ...any) ([]*models.Citation, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query citations: %w", err)
	}
	defer rows.Close()

	var out []*models.Citation
	for rows.Next() {
		c, err := scanCitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetCitation(ctx context.Context, id uint) (*models.Citation, error) {
	return scanCitation(s.q.QueryRowContext(ctx,
		`SELECT `+citationColumns+` FROM citations c WHERE c.id = ?`, id))
}

func citationArgs(c *models.Citation) []any {
	return []any{
		string(c.Type), c.Title, c.Authors, nullInt(c.Year), nullString(c.Publisher), nullString(c.Place),
		nullInt(c.Edition), nullString(c.Journal), nullInt(c.Volume), nullString(c.Issue), nullString(c.Pages),
		nullString(c.DOI), nullString(c.URL), nullString(c.AccessDate),
	}
}

func (s *sqliteStore) InsertCitation(ctx context.Context, c *models.Citation) error {
	if err := s.writable(); err != nil {
		return err
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	args := append(citationArgs(c), s.stamp(), s.stamp())
	res, err := s.q.ExecContext(ctx, `INSERT INTO citations
		(type, title, authors, year, publisher, place, edition, journal, volume, issue, pages, doi, url, access_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert citation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("citation id: %w", err)
	}
	c.ID = uint(id)
	return nil
}

func (s *sqliteStore) MutateCitation(ctx context.Context, c *models.Citation) error {
	if err := s.writable(); err != nil {
		return err
	}
	c.UpdatedAt = s.now()
	args := append(citationArgs(c), s.stamp(), c.ID)
	return s.execAffecting(ctx, "update citation", `UPDATE citations SET
		type = ?, title = ?, authors = ?, year = ?, publisher = ?, place = ?, edition = ?, journal = ?,
		volume = ?, issue = ?, pages = ?, doi = ?, url = ?, access_date = ?, updated_at = ?
		WHERE id = ?`, args...)
}

func (s *sqliteStore) DeleteCitation(ctx context.Context, id uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM project_citations WHERE citation_id = ?`, id); err != nil {
		return fmt.Errorf("delete citation links: %w", err)
	}
	return s.execAffecting(ctx, "delete citation", `DELETE FROM citations WHERE id = ?`, id)
}

func (s *sqliteStore) ListByProject(ctx context.Context, projectID uint) ([]*models.Citation, error) {
	return s.queryCitations(ctx, `SELECT `+citationColumns+` FROM citations c
		JOIN project_citations pc ON pc.citation_id = c.id
		WHERE pc.project_id = ? ORDER BY c.id`, projectID)
}

func (s *sqliteStore) ListByType(ctx context.Context, t models.CitationType) ([]*models.Citation, error) {
	return s.queryCitations(ctx, `SELECT `+citationColumns+` FROM citations c WHERE c.type = ? ORDER BY c.id`, string(t))
}

func (s *sqliteStore) ListAssociations(ctx context.Context, citationID uint) ([]uint, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT project_id FROM project_citations WHERE citation_id = ? ORDER BY project_id`, citationID)
	if err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	defer rows.Close()

	var out []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *sqliteStore) HasAssociation(ctx context.Context, projectID, citationID uint) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_citations WHERE project_id = ? AND citation_id = ?`, projectID, citationID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count association: %w", err)
	}
	return n > 0, nil
}

func (s *sqliteStore) AddAssociation(ctx context.Context, projectID, citationID uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO project_citations (project_id, citation_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (project_id, citation_id) DO NOTHING`, projectID, citationID, s.stamp())
	if err != nil {
		return fmt.Errorf("insert association: %w", err)
	}
	return nil
}

func (s *sqliteStore) RemoveAssociation(ctx context.Context, projectID, citationID uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	return s.execAffecting(ctx, "delete association",
		`DELETE FROM project_citations WHERE project_id = ? AND citation_id = ?`, projectID, citationID)
}
