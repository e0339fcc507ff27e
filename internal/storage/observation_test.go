package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObservation_ValidURLs(t *testing.T) {
	for _, raw := range []string{
		"https://www.example.com/",
		"http://example.com/path?q=1#frag",
		"ftp://files.example.com/pub",
		"mailto:someone@example.com",
	} {
		obs, err := NewObservation(raw)
		require.NoError(t, err, "url %q", raw)
		assert.NotNil(t, obs.URL())
	}
}

func TestNewObservation_InvalidURLs(t *testing.T) {
	for _, raw := range []string{
		"",
		"not a url",
		"/relative/path",
		"example.com/no-scheme",
		"https://",
	} {
		_, err := NewObservation(raw)
		require.Error(t, err, "url %q", raw)
		assert.ErrorIs(t, err, ErrInvalidURL)
	}
}

func TestObservation_Chaining(t *testing.T) {
	obs, err := NewObservation("https://example.com/")
	require.NoError(t, err)

	at := Now()
	obs = obs.WithTitle("A title").
		WithVisitType(VisitTypeTyped).
		WithAt(at).
		WithIsRemote(true).
		WithIsError(true)

	require.NotNil(t, obs.title)
	assert.Equal(t, "A title", *obs.title)
	require.NotNil(t, obs.visitType)
	assert.Equal(t, VisitTypeTyped, *obs.visitType)
	require.NotNil(t, obs.at)
	assert.Equal(t, at, *obs.at)
	assert.True(t, obs.isRemote)
	assert.True(t, obs.isError)
}

func TestObservation_Hidden(t *testing.T) {
	u := "https://example.com/"
	cases := []struct {
		vt     VisitType
		hidden bool
	}{
		{VisitTypeLink, false},
		{VisitTypeTyped, false},
		{VisitTypeBookmark, false},
		{VisitTypeEmbed, true},
		{VisitTypeRedirectPermanent, true},
		{VisitTypeRedirectTemporary, true},
		{VisitTypeDownload, false},
		{VisitTypeFramedLink, true},
		{VisitTypeReload, false},
	}
	for _, tc := range cases {
		obs, err := NewObservation(u)
		require.NoError(t, err)
		assert.Equal(t, tc.hidden, obs.WithVisitType(tc.vt).hidden(), "visit type %s", tc.vt)
	}

	// A metadata-only observation never unhides anything either way.
	obs, err := NewObservation(u)
	require.NoError(t, err)
	assert.False(t, obs.hidden())
}

func TestObservation_RedirectFrecencyBoost(t *testing.T) {
	u := "https://example.com/"
	for vt, want := range map[VisitType]bool{
		VisitTypeLink:              false,
		VisitTypeRedirectPermanent: true,
		VisitTypeRedirectTemporary: true,
		VisitTypeReload:            false,
	} {
		obs, err := NewObservation(u)
		require.NoError(t, err)
		assert.Equal(t, want, obs.WithVisitType(vt).redirectFrecencyBoost(), "visit type %s", vt)
	}
}

func TestVisitType_StringRoundTrip(t *testing.T) {
	for vt := VisitTypeLink; vt <= VisitTypeReload; vt++ {
		parsed, err := ParseVisitType(vt.String())
		require.NoError(t, err)
		assert.Equal(t, vt, parsed)
	}
}

func TestParseVisitType_CaseInsensitive(t *testing.T) {
	vt, err := ParseVisitType("Typed")
	require.NoError(t, err)
	assert.Equal(t, VisitTypeTyped, vt)
}

func TestParseVisitType_Unknown(t *testing.T) {
	_, err := ParseVisitType("teleport")
	assert.Error(t, err)
}

func TestVisitType_StringUnknown(t *testing.T) {
	assert.Equal(t, "visit_type(42)", VisitType(42).String())
}
