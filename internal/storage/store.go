package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/runnerr0/waymark/internal/logging"
)

const logURLMaxLen = 60

// Querier is the subset of *sql.DB and *sql.Tx the store and its
// collaborators issue statements through. Collaborators invoked inside a
// write transaction receive the transaction, so they observe its
// uncommitted state.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store is the ingestion and reconciliation core of the history database.
// All writes funnel through ApplyObservation, which executes as a single
// transaction; reads run directly against the connection.
type Store struct {
	db       *sql.DB
	guid     GuidFunc
	frecency FrecencyFunc
	settings *FrecencySettings
}

// Option configures a Store.
type Option func(*Store)

// WithGuidFunc substitutes the guid collaborator (tests use deterministic
// generators).
func WithGuidFunc(fn GuidFunc) Option {
	return func(s *Store) { s.guid = fn }
}

// WithFrecencyFunc substitutes the frecency collaborator.
func WithFrecencyFunc(fn FrecencyFunc) Option {
	return func(s *Store) { s.frecency = fn }
}

// WithFrecencySettings overrides the settings handed to the frecency
// collaborator.
func WithFrecencySettings(settings *FrecencySettings) Option {
	return func(s *Store) { s.settings = settings }
}

// New creates a Store from an already-opened and migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		guid:     RandomGuid,
		frecency: CalculateFrecency,
		settings: DefaultFrecencySettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const pageColumns = `guid, url, id, title, hidden, typed, frecency,
       visit_count_local, visit_count_remote,
       last_visit_date_local, last_visit_date_remote`

func scanPageInfo(row *sql.Row) (*FetchedPageInfo, error) {
	var fetched FetchedPageInfo
	p := &fetched.Page
	err := row.Scan(
		&p.Guid, &p.URL, &p.ID, &p.Title, &p.Hidden, &p.Typed, &p.Frecency,
		&p.VisitCountLocal, &p.VisitCountRemote,
		&p.LastVisitDateLocal, &p.LastVisitDateRemote,
		&fetched.LastVisitID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, &StorageError{Op: "fetch page", Err: err}
	}
	return &fetched, nil
}

// fetchPageInfo looks a page up by exact URL. The precomputed hash narrows
// the index probe; the literal URL comparison guards against hash
// collisions.
func fetchPageInfo(ctx context.Context, q Querier, pageURL *url.URL) (*FetchedPageInfo, error) {
	spec := pageURL.String()
	row := q.QueryRowContext(ctx, `
		SELECT `+pageColumns+`,
		       (SELECT id FROM visits
		        WHERE place_id = p.id
		          AND (visit_date = p.last_visit_date_local OR
		               visit_date = p.last_visit_date_remote)
		        LIMIT 1) AS last_visit_id
		FROM places p
		WHERE url_hash = ? AND url = ?`, HashURL(spec), spec)
	return scanPageInfo(row)
}

// FetchPageInfo returns the reconciled state of the page with the given
// URL, or nil if it has never been observed.
func (s *Store) FetchPageInfo(ctx context.Context, pageURL *url.URL) (*FetchedPageInfo, error) {
	if pageURL == nil {
		return nil, ErrInvalidURL
	}
	return fetchPageInfo(ctx, s.db, pageURL)
}

// createPage inserts a fresh page row: generated guid, hidden until a
// non-hidden visit arrives, frecency sentinel -1, zeroed aggregates.
func (s *Store) createPage(ctx context.Context, q Querier, pageURL *url.URL) (PageInfo, error) {
	guid, err := s.guid()
	if err != nil {
		return PageInfo{}, &CollaboratorError{Name: "guid", Err: err}
	}
	spec := pageURL.String()
	res, err := q.ExecContext(ctx, `
		INSERT INTO places (guid, url, url_hash)
		VALUES (?, ?, ?)`, guid, spec, HashURL(spec))
	if err != nil {
		return PageInfo{}, &StorageError{Op: "create page", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return PageInfo{}, &StorageError{Op: "create page", Err: err}
	}
	return PageInfo{
		URL:      spec,
		Guid:     guid,
		ID:       RowID(id),
		Hidden:   true,
		Frecency: -1,
	}, nil
}

// resolvePage finds or creates the page for an observation. Two writers
// racing to create the same URL are resolved by the url uniqueness
// constraint: the loser re-runs the lookup and treats the page as already
// created.
func (s *Store) resolvePage(ctx context.Context, q Querier, pageURL *url.URL) (PageInfo, error) {
	fetched, err := fetchPageInfo(ctx, q, pageURL)
	if err != nil {
		return PageInfo{}, err
	}
	if fetched != nil {
		return fetched.Page, nil
	}
	page, err := s.createPage(ctx, q, pageURL)
	if err == nil {
		return page, nil
	}
	if !IsUniqueViolation(err) {
		return PageInfo{}, err
	}
	fetched, ferr := fetchPageInfo(ctx, q, pageURL)
	if ferr != nil {
		return PageInfo{}, ferr
	}
	if fetched == nil {
		return PageInfo{}, err
	}
	return fetched.Page, nil
}

// addVisit appends one immutable visit row. It does not touch the page's
// aggregate columns; the insert trigger keeps those consistent and the
// caller owns frecency.
func addVisit(ctx context.Context, q Querier, pageID, fromVisit RowID, visitDate Timestamp, visitType VisitType, isLocal bool) (RowID, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO visits (from_visit, place_id, visit_date, visit_type, is_local)
		VALUES (?, ?, ?, ?, ?)`,
		fromVisit, pageID, visitDate, visitType, isLocal)
	if err != nil {
		return 0, &StorageError{Op: "insert visit", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "insert visit", Err: err}
	}
	return RowID(id), nil
}

// ApplyObservation reconciles one navigation event into page state inside a
// single transaction: resolve the page, stage the title/hidden/typed column
// changes, insert the visit, flush the staged columns in one UPDATE, then
// recompute and persist frecency. It returns the new visit's id, or nil for
// a metadata-only observation. Either everything commits or nothing is
// visible.
func (s *Store) ApplyObservation(ctx context.Context, obs *Observation) (*RowID, error) {
	if obs == nil || obs.url == nil {
		return nil, ErrInvalidURL
	}
	log := logging.FromContext(ctx)
	log.Debug().
		Str("url", logging.TruncateURL(obs.url.String(), logURLMaxLen)).
		Bool("visit", obs.visitType != nil).
		Msg("applying observation")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	visitID, err := s.applyObservation(ctx, tx, obs)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit observation", Err: err}
	}
	return visitID, nil
}

func (s *Store) applyObservation(ctx context.Context, tx *sql.Tx, obs *Observation) (*RowID, error) {
	page, err := s.resolvePage(ctx, tx, obs.url)
	if err != nil {
		return nil, err
	}

	var upd pageUpdate
	if obs.title != nil {
		page.Title = *obs.title
		upd.set("title", page.Title)
	}

	updateFrecency := false
	var visitID *RowID
	if obs.visitType != nil {
		// A single non-hidden visit makes the page non-hidden, and it
		// never goes back.
		if !obs.hidden() {
			upd.set("hidden", false)
		}
		if *obs.visitType == VisitTypeTyped {
			page.Typed++
			upd.set("typed", page.Typed)
		}

		at := Now()
		if obs.at != nil {
			at = *obs.at
		}
		id, err := addVisit(ctx, tx, page.ID, 0, at, *obs.visitType, !obs.isRemote)
		if err != nil {
			return nil, err
		}
		// A new visit implies new frecency, except in error cases.
		if !obs.isError {
			updateFrecency = true
		}
		visitID = &id
	}

	if err := upd.apply(ctx, tx, page.ID); err != nil {
		return nil, err
	}

	// Frecency runs after the staged columns land: its inputs include the
	// hidden/typed state this observation just wrote and the visit just
	// inserted.
	if updateFrecency {
		score, err := s.frecency(ctx, tx, s.settings, page.ID, obs.redirectFrecencyBoost())
		if err != nil {
			return nil, collaboratorErr("frecency", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE places SET frecency = ? WHERE id = ?`, score, page.ID); err != nil {
			return nil, &StorageError{Op: "persist frecency", Err: err}
		}
	}

	return visitID, nil
}

// collaboratorErr wraps err unless it is already one of this package's
// typed kinds (the reference calculator reports StorageError itself).
func collaboratorErr(name string, err error) error {
	switch err.(type) {
	case *StorageError, *CollaboratorError:
		return err
	}
	if errors.Is(err, ErrNoSuchPage) {
		return err
	}
	return &CollaboratorError{Name: name, Err: err}
}

// UpdateFrecency recomputes and persists the frecency score for a page
// outside the observation pipeline. The public contract is preserved for
// hosts that trigger recomputation directly; ApplyObservation does not use
// it.
func (s *Store) UpdateFrecency(ctx context.Context, id RowID, redirectBoost bool) error {
	score, err := s.frecency(ctx, s.db, s.settings, id, redirectBoost)
	if err != nil {
		return collaboratorErr("frecency", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE places SET frecency = ? WHERE id = ?`, score, id)
	if err != nil {
		return &StorageError{Op: "persist frecency", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "persist frecency", Err: err}
	}
	if n == 0 {
		return ErrNoSuchPage
	}
	return nil
}

// GetVisited reports, for each input URL in order, whether it was ever
// visited. Duplicates are resolved independently. The input is chunked to
// stay under the engine's bound-parameter limit; each chunk joins a derived
// (index, url_hash, url) table against places on hash then exact URL.
func (s *Store) GetVisited(ctx context.Context, urls []*url.URL) ([]bool, error) {
	result := make([]bool, len(urls))
	specs := make([]string, len(urls))
	for i, u := range urls {
		if u == nil {
			return nil, ErrInvalidURL
		}
		specs[i] = u.String()
	}

	log := logging.FromContext(ctx)
	err := eachChunk(specs, maxVariableNumber, func(chunk []string, offset int) error {
		log.Debug().Int("chunk", len(chunk)).Int("offset", offset).Msg("visited lookup chunk")

		var values strings.Builder
		args := make([]interface{}, len(chunk))
		for i, spec := range chunk {
			if i > 0 {
				values.WriteByte(',')
			}
			fmt.Fprintf(&values, "(%d,%d,?)", offset+i, HashURL(spec))
			args[i] = spec
		}
		query := fmt.Sprintf(`
			WITH to_fetch(fetch_url_index, url_hash, url) AS (VALUES %s)
			SELECT fetch_url_index
			FROM places p
			JOIN to_fetch f
			ON p.url_hash = f.url_hash
			  AND p.url = f.url`, values.String())

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return &StorageError{Op: "visited lookup", Err: err}
		}
		defer rows.Close()
		for rows.Next() {
			var idx int
			if err := rows.Scan(&idx); err != nil {
				return &StorageError{Op: "visited lookup", Err: err}
			}
			result[idx] = true
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetVisitedURLs returns the distinct URLs of pages with at least one visit
// dated in [start, end], restricted to local visits unless includeRemote is
// set. Only page-level existence matters, so it runs an EXISTS subquery per
// page row instead of a join.
func (s *Store) GetVisitedURLs(ctx context.Context, start, end Timestamp, includeRemote bool) ([]string, error) {
	andIsLocal := "AND is_local"
	if includeRemote {
		andIsLocal = ""
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT p.url
		FROM places p
		WHERE EXISTS (
			SELECT 1 FROM visits v
			WHERE place_id = p.id
			  AND visit_date BETWEEN ? AND ?
			  %s
			LIMIT 1
		)`, andIsLocal), start, end)
	if err != nil {
		return nil, &StorageError{Op: "visited range query", Err: err}
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, &StorageError{Op: "visited range query", Err: err}
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Stats holds aggregate statistics about the history database.
type Stats struct {
	TotalPages  int64
	TotalVisits int64
	OldestVisit Timestamp
	NewestVisit Timestamp
	TopPages    []PageRank
}

// PageRank pairs a URL with its current frecency and visit count.
type PageRank struct {
	URL        string
	Frecency   int32
	VisitCount int64
}

// Stats returns aggregate statistics: row totals, the visit date range,
// and the highest-frecency pages.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM places").Scan(&stats.TotalPages); err != nil {
		return nil, &StorageError{Op: "count pages", Err: err}
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM visits").Scan(&stats.TotalVisits); err != nil {
		return nil, &StorageError{Op: "count visits", Err: err}
	}

	if stats.TotalVisits > 0 {
		err := s.db.QueryRowContext(ctx,
			"SELECT MIN(visit_date), MAX(visit_date) FROM visits").
			Scan(&stats.OldestVisit, &stats.NewestVisit)
		if err != nil {
			return nil, &StorageError{Op: "visit date range", Err: err}
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, frecency, visit_count_local + visit_count_remote
		FROM places
		WHERE NOT hidden AND frecency > 0
		ORDER BY frecency DESC
		LIMIT 10`)
	if err != nil {
		return nil, &StorageError{Op: "top pages", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var pr PageRank
		if err := rows.Scan(&pr.URL, &pr.Frecency, &pr.VisitCount); err != nil {
			return nil, &StorageError{Op: "top pages", Err: err}
		}
		stats.TopPages = append(stats.TopPages, pr)
	}
	return stats, rows.Err()
}
