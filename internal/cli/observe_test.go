package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/waymark/internal/storage"
)

func TestObserveCommand_RecordsVisit(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{
		URL:     "https://example.com/",
		Title:   "Example",
		Type:    "typed",
		globals: &GlobalFlags{},
	}

	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})
	assert.Contains(t, out, "Recorded visit")

	obs, err := storage.NewObservation("https://example.com/")
	require.NoError(t, err)
	fetched, err := store.FetchPageInfo(context.Background(), obs.URL())
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Example", fetched.Page.Title)
	assert.Equal(t, int32(1), fetched.Page.Typed)
}

func TestObserveCommand_MetadataOnly(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{
		URL:     "https://example.com/",
		Title:   "Just a title",
		globals: &GlobalFlags{},
	}

	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})
	assert.Contains(t, out, "no visit recorded")
}

func TestObserveCommand_JSONOutput(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{
		URL:     "https://example.com/",
		Type:    "link",
		globals: &GlobalFlags{JSON: true},
	}

	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "https://example.com/", parsed["url"])
	assert.Equal(t, true, parsed["visit_recorded"])
	assert.NotNil(t, parsed["visit_id"])
}

func TestObserveCommand_ExplicitTimestamp(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{
		URL:     "https://example.com/",
		Type:    "link",
		At:      "2024-03-15T12:30:45Z",
		globals: &GlobalFlags{},
	}
	require.NoError(t, cmd.executeWithStore(context.Background(), store))

	obs, err := storage.NewObservation("https://example.com/")
	require.NoError(t, err)
	fetched, err := store.FetchPageInfo(context.Background(), obs.URL())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15T12:30:45Z", fetched.Page.LastVisitDateLocal.String())
}

func TestObserveCommand_RemoteVisit(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{
		URL:     "https://example.com/",
		Type:    "link",
		Remote:  true,
		globals: &GlobalFlags{},
	}
	require.NoError(t, cmd.executeWithStore(context.Background(), store))

	obs, err := storage.NewObservation("https://example.com/")
	require.NoError(t, err)
	fetched, err := store.FetchPageInfo(context.Background(), obs.URL())
	require.NoError(t, err)
	assert.Equal(t, int32(0), fetched.Page.VisitCountLocal)
	assert.Equal(t, int32(1), fetched.Page.VisitCountRemote)
}

func TestObserveCommand_BadType(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{
		URL:     "https://example.com/",
		Type:    "teleport",
		globals: &GlobalFlags{},
	}
	assert.Error(t, cmd.executeWithStore(context.Background(), store))
}

func TestObserveCommand_BadURL(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &ObserveCommand{URL: "not a url", globals: &GlobalFlags{}}
	err := cmd.executeWithStore(context.Background(), store)
	assert.ErrorIs(t, err, storage.ErrInvalidURL)
}
