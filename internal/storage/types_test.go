package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowID_Valid(t *testing.T) {
	assert.False(t, RowID(0).Valid())
	assert.False(t, RowID(-1).Valid())
	assert.True(t, RowID(1).Valid())
}

func TestRowID_ZeroStoresAsNull(t *testing.T) {
	v, err := RowID(0).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = RowID(7).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestRowID_Scan(t *testing.T) {
	var id RowID
	require.NoError(t, id.Scan(int64(42)))
	assert.Equal(t, RowID(42), id)

	require.NoError(t, id.Scan(nil))
	assert.Equal(t, RowID(0), id)

	assert.Error(t, id.Scan("42"))
}

func TestTimestamp_RoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 15, 12, 30, 45, 0, time.UTC)
	ts := TimestampFromTime(when)
	assert.True(t, ts.Time().Equal(when))
	assert.Equal(t, "2024-03-15T12:30:45Z", ts.String())
}

func TestTimestamp_Scan(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.Scan(int64(1700000000000)))
	assert.Equal(t, Timestamp(1700000000000), ts)

	require.NoError(t, ts.Scan(nil))
	assert.Equal(t, Timestamp(0), ts)

	assert.Error(t, ts.Scan(3.14))
}
