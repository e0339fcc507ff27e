package storage

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// RowID is the opaque surrogate key for a page or visit row. It supports
// equality, ordering, and database round-trips, and nothing else: row ids
// from different tables must not be mixed, so no arithmetic is exposed.
type RowID int64

// Valid reports whether the RowID refers to an actual row.
func (id RowID) Valid() bool { return id > 0 }

func (id RowID) String() string { return fmt.Sprintf("%d", int64(id)) }

// Value stores a zero RowID as NULL so optional references (from_visit)
// round-trip without a separate nullable wrapper.
func (id RowID) Value() (driver.Value, error) {
	if id == 0 {
		return nil, nil
	}
	return int64(id), nil
}

func (id *RowID) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*id = 0
	case int64:
		*id = RowID(v)
	default:
		return fmt.Errorf("cannot scan %T into RowID", src)
	}
	return nil
}

// Timestamp is a visit time in milliseconds since the Unix epoch.
type Timestamp int64

// Now returns the current time as a Timestamp.
func Now() Timestamp { return TimestampFromTime(time.Now()) }

// TimestampFromTime converts a time.Time to a Timestamp.
func TimestampFromTime(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

// Time converts the Timestamp back to a time.Time.
func (ts Timestamp) Time() time.Time { return time.UnixMilli(int64(ts)) }

func (ts Timestamp) String() string { return ts.Time().UTC().Format(time.RFC3339) }

func (ts Timestamp) Value() (driver.Value, error) { return int64(ts), nil }

func (ts *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ts = 0
	case int64:
		*ts = Timestamp(v)
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
	return nil
}

// PageInfo is the denormalized, queryable snapshot of a visited page.
// The visit counts and last-visit dates are maintained by triggers on the
// visits table and are read-only from this package's perspective.
type PageInfo struct {
	URL                 string
	Guid                string
	ID                  RowID
	Title               string
	Hidden              bool
	Typed               int32
	Frecency            int32
	VisitCountLocal     int32
	VisitCountRemote    int32
	LastVisitDateLocal  Timestamp
	LastVisitDateRemote Timestamp
}

// FetchedPageInfo is a PageInfo plus the id of whichever visit currently
// holds the page's local or remote last-visit timestamp. The visit id is
// mainly useful for diagnostics and tests; it is zero for a page that has
// never recorded a visit.
type FetchedPageInfo struct {
	Page        PageInfo
	LastVisitID RowID
}

// Visit is one immutable record of a navigation to a page. FromVisit is a
// back-reference to a referrer visit; the reconciliation pipeline currently
// never populates it (stored as NULL).
type Visit struct {
	ID        RowID
	PlaceID   RowID
	FromVisit RowID
	VisitDate Timestamp
	VisitType VisitType
	IsLocal   bool
}
