package storage

import (
	"context"
	"database/sql"
	"math"
)

// FrecencyFunc computes the ranking score for a page from its committed
// column state and visit history. The store calls it only after the
// observation's own page updates are visible on q, so the function observes
// a consistent snapshot; its result is persisted in a separate UPDATE.
type FrecencyFunc func(ctx context.Context, q Querier, settings *FrecencySettings, pageID RowID, redirectBoost bool) (int32, error)

// FrecencySettings tunes the reference frecency calculator. Scores blend
// visit recency (age buckets) with how each visit happened (transition
// bonuses).
type FrecencySettings struct {
	// NumVisits is how many of the most recent visits are sampled.
	NumVisits int
	// BucketCutoffDays and BucketWeights define the recency buckets: a
	// visit younger than BucketCutoffDays[i] scores BucketWeights[i], and
	// anything older scores the final weight. len(BucketWeights) must be
	// len(BucketCutoffDays)+1.
	BucketCutoffDays []int
	BucketWeights    []int
	// Per-transition bonuses, in percent. Transitions without a bonus
	// (embed, redirects, reload) contribute nothing.
	TypedBonus    int
	LinkBonus     int
	BookmarkBonus int
	DownloadBonus int
	// RedirectBoostPercent inflates the score when the observation was a
	// redirect source.
	RedirectBoostPercent int
}

// DefaultFrecencySettings returns the stock tuning.
func DefaultFrecencySettings() *FrecencySettings {
	return &FrecencySettings{
		NumVisits:            10,
		BucketCutoffDays:     []int{4, 14, 31, 90},
		BucketWeights:        []int{100, 70, 50, 30, 10},
		TypedBonus:           2000,
		LinkBonus:            100,
		BookmarkBonus:        75,
		DownloadBonus:        0,
		RedirectBoostPercent: 25,
	}
}

func (s *FrecencySettings) transitionBonus(vt VisitType) int {
	switch vt {
	case VisitTypeTyped:
		return s.TypedBonus
	case VisitTypeLink, VisitTypeFramedLink:
		return s.LinkBonus
	case VisitTypeBookmark:
		return s.BookmarkBonus
	case VisitTypeDownload:
		return s.DownloadBonus
	default:
		return 0
	}
}

func (s *FrecencySettings) recencyWeight(ageDays int) int {
	for i, cutoff := range s.BucketCutoffDays {
		if ageDays < cutoff {
			return s.BucketWeights[i]
		}
	}
	return s.BucketWeights[len(s.BucketWeights)-1]
}

// CalculateFrecency is the reference frecency calculator: it samples the
// page's most recent visits, weights each by recency bucket and transition
// bonus, and scales by the page's total visit count. A page whose sampled
// visits all carry a zero bonus scores 0.
func CalculateFrecency(ctx context.Context, q Querier, settings *FrecencySettings, pageID RowID, redirectBoost bool) (int32, error) {
	var visitCount int32
	row := q.QueryRowContext(ctx, `
		SELECT visit_count_local + visit_count_remote
		FROM places WHERE id = ?`, pageID)
	if err := row.Scan(&visitCount); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNoSuchPage
		}
		return 0, &StorageError{Op: "frecency page lookup", Err: err}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT visit_date, visit_type
		FROM visits
		WHERE place_id = ?
		ORDER BY visit_date DESC
		LIMIT ?`, pageID, settings.NumVisits)
	if err != nil {
		return 0, &StorageError{Op: "frecency visit sample", Err: err}
	}
	defer rows.Close()

	now := Now()
	points, sampled := 0, 0
	for rows.Next() {
		var at Timestamp
		var vt VisitType
		if err := rows.Scan(&at, &vt); err != nil {
			return 0, &StorageError{Op: "frecency visit scan", Err: err}
		}
		ageDays := int(now-at) / (24 * 60 * 60 * 1000)
		if ageDays < 0 {
			ageDays = 0
		}
		points += settings.recencyWeight(ageDays) * settings.transitionBonus(vt) / 100
		sampled++
	}
	if err := rows.Err(); err != nil {
		return 0, &StorageError{Op: "frecency visit sample", Err: err}
	}
	if sampled == 0 || points == 0 {
		return 0, nil
	}

	score := int(math.Ceil(float64(visitCount) * float64(points) / float64(sampled)))
	if redirectBoost {
		score = score * (100 + settings.RedirectBoostPercent) / 100
	}
	if score > math.MaxInt32 {
		score = math.MaxInt32
	}
	return int32(score), nil
}
