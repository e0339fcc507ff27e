package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrecencySettings_RecencyWeight(t *testing.T) {
	s := DefaultFrecencySettings()

	cases := []struct {
		ageDays int
		want    int
	}{
		{0, 100},
		{3, 100},
		{4, 70},
		{13, 70},
		{14, 50},
		{30, 50},
		{31, 30},
		{89, 30},
		{90, 10},
		{10000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.recencyWeight(tc.ageDays), "age %d days", tc.ageDays)
	}
}

func TestFrecencySettings_TransitionBonus(t *testing.T) {
	s := DefaultFrecencySettings()

	assert.Equal(t, 2000, s.transitionBonus(VisitTypeTyped))
	assert.Equal(t, 100, s.transitionBonus(VisitTypeLink))
	assert.Equal(t, 100, s.transitionBonus(VisitTypeFramedLink))
	assert.Equal(t, 75, s.transitionBonus(VisitTypeBookmark))
	assert.Equal(t, 0, s.transitionBonus(VisitTypeDownload))
	assert.Equal(t, 0, s.transitionBonus(VisitTypeEmbed))
	assert.Equal(t, 0, s.transitionBonus(VisitTypeRedirectPermanent))
	assert.Equal(t, 0, s.transitionBonus(VisitTypeRedirectTemporary))
	assert.Equal(t, 0, s.transitionBonus(VisitTypeReload))
}

// seedPage inserts a page row directly and returns its id.
func seedPage(t *testing.T, store *Store, spec string) RowID {
	t.Helper()
	guid, err := RandomGuid()
	require.NoError(t, err)
	res, err := store.db.Exec(`
		INSERT INTO places (guid, url, url_hash) VALUES (?, ?, ?)`,
		guid, spec, HashURL(spec))
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return RowID(id)
}

func seedVisit(t *testing.T, store *Store, pageID RowID, at Timestamp, vt VisitType) {
	t.Helper()
	_, err := store.db.Exec(`
		INSERT INTO visits (place_id, visit_date, visit_type) VALUES (?, ?, ?)`,
		pageID, at, vt)
	require.NoError(t, err)
}

func TestCalculateFrecency_SingleRecentTypedVisit(t *testing.T) {
	store := openTestStore(t)
	id := seedPage(t, store, "https://example.com/typed")
	seedVisit(t, store, id, Now(), VisitTypeTyped)

	// One visit in the freshest bucket: 100 * 2000 / 100 = 2000 points,
	// ceil(1 * 2000 / 1) = 2000.
	score, err := CalculateFrecency(context.Background(), store.db, DefaultFrecencySettings(), id, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2000), score)
}

func TestCalculateFrecency_RedirectBoost(t *testing.T) {
	store := openTestStore(t)
	id := seedPage(t, store, "https://example.com/redirected")
	seedVisit(t, store, id, Now(), VisitTypeTyped)

	score, err := CalculateFrecency(context.Background(), store.db, DefaultFrecencySettings(), id, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2500), score, "2000 boosted by 25 percent")
}

func TestCalculateFrecency_OldVisitsWeighLess(t *testing.T) {
	store := openTestStore(t)
	settings := DefaultFrecencySettings()
	ctx := context.Background()

	recent := seedPage(t, store, "https://example.com/recent")
	seedVisit(t, store, recent, Now(), VisitTypeLink)

	old := seedPage(t, store, "https://example.com/old")
	yearAgo := TimestampFromTime(time.Now().AddDate(-1, 0, 0))
	seedVisit(t, store, old, yearAgo, VisitTypeLink)

	recentScore, err := CalculateFrecency(ctx, store.db, settings, recent, false)
	require.NoError(t, err)
	oldScore, err := CalculateFrecency(ctx, store.db, settings, old, false)
	require.NoError(t, err)
	assert.Greater(t, recentScore, oldScore)
	assert.Greater(t, oldScore, int32(0))
}

func TestCalculateFrecency_ZeroBonusVisitsScoreZero(t *testing.T) {
	store := openTestStore(t)
	id := seedPage(t, store, "https://example.com/embedded")
	seedVisit(t, store, id, Now(), VisitTypeEmbed)
	seedVisit(t, store, id, Now(), VisitTypeReload)

	score, err := CalculateFrecency(context.Background(), store.db, DefaultFrecencySettings(), id, false)
	require.NoError(t, err)
	assert.Equal(t, int32(0), score)
}

func TestCalculateFrecency_NoVisits(t *testing.T) {
	store := openTestStore(t)
	id := seedPage(t, store, "https://example.com/unvisited")

	score, err := CalculateFrecency(context.Background(), store.db, DefaultFrecencySettings(), id, false)
	require.NoError(t, err)
	assert.Equal(t, int32(0), score)
}

func TestCalculateFrecency_SamplesOnlyRecentVisits(t *testing.T) {
	store := openTestStore(t)
	settings := DefaultFrecencySettings()
	id := seedPage(t, store, "https://example.com/busy")

	// More visits than the sample window. The typed visits are the most
	// recent, so the sampled average is the typed bonus while the visit
	// count multiplier covers all of them.
	now := Now()
	for i := 0; i < settings.NumVisits; i++ {
		seedVisit(t, store, id, now-Timestamp(i), VisitTypeTyped)
	}
	for i := 0; i < 5; i++ {
		seedVisit(t, store, id, now-Timestamp(1000000+i), VisitTypeLink)
	}

	score, err := CalculateFrecency(context.Background(), store.db, settings, id, false)
	require.NoError(t, err)
	// points per sampled visit = 100 * 2000 / 100 = 2000; 15 total visits.
	assert.Equal(t, int32(15*2000), score)
}

func TestCalculateFrecency_FutureVisitClampsToAgeZero(t *testing.T) {
	store := openTestStore(t)
	id := seedPage(t, store, "https://example.com/clock-skew")
	seedVisit(t, store, id, Now()+Timestamp(60*60*1000), VisitTypeTyped)

	score, err := CalculateFrecency(context.Background(), store.db, DefaultFrecencySettings(), id, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2000), score)
}

func TestCalculateFrecency_NoSuchPage(t *testing.T) {
	store := openTestStore(t)
	_, err := CalculateFrecency(context.Background(), store.db, DefaultFrecencySettings(), RowID(9999), false)
	assert.ErrorIs(t, err, ErrNoSuchPage)
}
