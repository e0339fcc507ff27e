package storage

import (
	"context"
	"database/sql"
)

// migrateV001 creates the initial Waymark schema: the places and visits
// tables, their indexes, and the triggers that keep the denormalized visit
// aggregates on places consistent. Every statement uses IF NOT EXISTS for
// idempotency.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		// One row per distinct normalized URL. url_hash is the
		// precomputed index accelerator; url itself is the
		// correctness check (and carries the uniqueness constraint
		// the page-creation race relies on). frecency -1 means
		// "never computed". The four aggregate columns are owned by
		// the visit triggers below.
		`CREATE TABLE IF NOT EXISTS places (
			id                     INTEGER PRIMARY KEY,
			url                    TEXT NOT NULL UNIQUE,
			url_hash               INTEGER NOT NULL DEFAULT 0,
			guid                   TEXT NOT NULL UNIQUE,
			title                  TEXT NOT NULL DEFAULT '',
			hidden                 INTEGER NOT NULL DEFAULT 1,
			typed                  INTEGER NOT NULL DEFAULT 0,
			frecency               INTEGER NOT NULL DEFAULT -1,
			visit_count_local      INTEGER NOT NULL DEFAULT 0,
			visit_count_remote     INTEGER NOT NULL DEFAULT 0,
			last_visit_date_local  INTEGER NOT NULL DEFAULT 0,
			last_visit_date_remote INTEGER NOT NULL DEFAULT 0
		)`,

		// One immutable row per navigation. from_visit is a referrer
		// back-reference; nothing populates it yet but the column and
		// index stay so existing data keeps meaning when something
		// does.
		`CREATE TABLE IF NOT EXISTS visits (
			id         INTEGER PRIMARY KEY,
			is_local   INTEGER NOT NULL DEFAULT 1,
			from_visit INTEGER REFERENCES visits(id),
			place_id   INTEGER NOT NULL REFERENCES places(id) ON DELETE CASCADE,
			visit_date INTEGER NOT NULL DEFAULT 0,
			visit_type INTEGER NOT NULL
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_places_url_hash   ON places(url_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_place_date ON visits(place_id, visit_date)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_visit_date ON visits(visit_date)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_from_visit ON visits(from_visit)`,

		// ── Triggers ───────────────────────────────────────────

		// Inserting a visit bumps the matching locality's count and
		// rolls its last-visit date forward.
		`CREATE TRIGGER IF NOT EXISTS visits_afterinsert_trigger
		AFTER INSERT ON visits FOR EACH ROW
		BEGIN
			UPDATE places SET
				visit_count_local = visit_count_local + (NEW.is_local != 0),
				visit_count_remote = visit_count_remote + (NEW.is_local == 0),
				last_visit_date_local = MAX(last_visit_date_local,
					CASE WHEN NEW.is_local THEN NEW.visit_date ELSE 0 END),
				last_visit_date_remote = MAX(last_visit_date_remote,
					CASE WHEN NEW.is_local THEN 0 ELSE NEW.visit_date END)
			WHERE id = NEW.place_id;
		END`,

		// Deleting a visit recomputes that locality's last-visit date
		// from what remains. No core operation deletes visits, but ad
		// hoc deletes must not leave the aggregates stale.
		`CREATE TRIGGER IF NOT EXISTS visits_afterdelete_trigger
		AFTER DELETE ON visits FOR EACH ROW
		BEGIN
			UPDATE places SET
				visit_count_local = visit_count_local - (OLD.is_local != 0),
				visit_count_remote = visit_count_remote - (OLD.is_local == 0),
				last_visit_date_local = IFNULL((
					SELECT visit_date FROM visits
					WHERE place_id = OLD.place_id AND is_local
					ORDER BY visit_date DESC LIMIT 1), 0),
				last_visit_date_remote = IFNULL((
					SELECT visit_date FROM visits
					WHERE place_id = OLD.place_id AND NOT is_local
					ORDER BY visit_date DESC LIMIT 1), 0)
			WHERE id = OLD.place_id;
		END`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
