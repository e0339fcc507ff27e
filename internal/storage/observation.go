package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// VisitType enumerates how a navigation reached a page. The numeric values
// are stable and stored in the visits table.
type VisitType int32

const (
	// VisitTypeLink is a followed link.
	VisitTypeLink VisitType = 1
	// VisitTypeTyped is a URL the user typed directly (address bar).
	VisitTypeTyped VisitType = 2
	// VisitTypeBookmark is a navigation from a bookmark.
	VisitTypeBookmark VisitType = 3
	// VisitTypeEmbed is a framework-internal subresource navigation
	// (embedded content). Always hidden.
	VisitTypeEmbed VisitType = 4
	// VisitTypeRedirectPermanent is the source of a 301 redirect. Always hidden.
	VisitTypeRedirectPermanent VisitType = 5
	// VisitTypeRedirectTemporary is the source of a 302 redirect. Always hidden.
	VisitTypeRedirectTemporary VisitType = 6
	// VisitTypeDownload is a navigation that ended in a download.
	VisitTypeDownload VisitType = 7
	// VisitTypeFramedLink is a link followed inside a subframe. Always hidden.
	VisitTypeFramedLink VisitType = 8
	// VisitTypeReload is a reload of the current page.
	VisitTypeReload VisitType = 9
)

var visitTypeNames = map[VisitType]string{
	VisitTypeLink:              "link",
	VisitTypeTyped:             "typed",
	VisitTypeBookmark:          "bookmark",
	VisitTypeEmbed:             "embed",
	VisitTypeRedirectPermanent: "redirect_permanent",
	VisitTypeRedirectTemporary: "redirect_temporary",
	VisitTypeDownload:          "download",
	VisitTypeFramedLink:        "framed_link",
	VisitTypeReload:            "reload",
}

func (vt VisitType) String() string {
	if name, ok := visitTypeNames[vt]; ok {
		return name
	}
	return fmt.Sprintf("visit_type(%d)", int32(vt))
}

// ParseVisitType maps a name like "typed" back to its VisitType.
func ParseVisitType(s string) (VisitType, error) {
	for vt, name := range visitTypeNames {
		if name == strings.ToLower(s) {
			return vt, nil
		}
	}
	return 0, fmt.Errorf("unknown visit type %q", s)
}

// isHidden reports whether a visit of this type must never surface the page
// in history UI. Embedded and subframe navigations stay hidden regardless of
// what the observation says, and so do redirect sources: the user landed on
// the redirect target, not here.
func (vt VisitType) isHidden() bool {
	switch vt {
	case VisitTypeEmbed, VisitTypeFramedLink,
		VisitTypeRedirectPermanent, VisitTypeRedirectTemporary:
		return true
	}
	return false
}

// redirectBoost reports whether a visit of this type requests a frecency
// redirect boost.
func (vt VisitType) redirectBoost() bool {
	return vt == VisitTypeRedirectPermanent || vt == VisitTypeRedirectTemporary
}

// Observation describes one reported navigation event, the sole input to
// ApplyObservation. Optional fields use the chained With* setters; an
// observation without a visit type is a metadata-only update (no visit row
// is recorded).
type Observation struct {
	url       *url.URL
	title     *string
	visitType *VisitType
	at        *Timestamp
	isRemote  bool
	isError   bool
}

// NewObservation parses and validates rawURL and returns an observation for
// it. The URL must be absolute; a parse failure is reported as ErrInvalidURL
// before anything touches the database.
func NewObservation(rawURL string) (*Observation, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return nil, fmt.Errorf("%w: %q: not an absolute URL", ErrInvalidURL, rawURL)
	}
	return &Observation{url: u}, nil
}

// ObservationForURL builds an observation from an already-parsed URL.
func ObservationForURL(u *url.URL) *Observation {
	return &Observation{url: u}
}

// URL returns the observation's parsed URL.
func (o *Observation) URL() *url.URL { return o.url }

// WithTitle records a title update. The last observed title always wins.
func (o *Observation) WithTitle(title string) *Observation {
	o.title = &title
	return o
}

// WithVisitType marks the observation as an actual visit of the given kind.
func (o *Observation) WithVisitType(vt VisitType) *Observation {
	o.visitType = &vt
	return o
}

// WithAt sets the visit timestamp. Without it the visit is stamped with the
// current time when recorded.
func (o *Observation) WithAt(at Timestamp) *Observation {
	o.at = &at
	return o
}

// WithIsRemote marks the visit as merged in from synchronization rather
// than originated on this device.
func (o *Observation) WithIsRemote(remote bool) *Observation {
	o.isRemote = remote
	return o
}

// WithIsError marks the navigation as failed; the visit is still recorded
// but the page's frecency is left untouched.
func (o *Observation) WithIsError(isError bool) *Observation {
	o.isError = isError
	return o
}

// hidden reports whether this observation must not unhide its page.
func (o *Observation) hidden() bool {
	return o.visitType != nil && o.visitType.isHidden()
}

// redirectFrecencyBoost reports whether the frecency collaborator should
// apply its redirect boost for this observation.
func (o *Observation) redirectFrecencyBoost() bool {
	return o.visitType != nil && o.visitType.redirectBoost()
}
