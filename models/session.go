package models

import "time"

// SessionCookie is one cookie of the portal's scraped session. Only the
// fields needed to replay the cookie on later requests are kept.
type SessionCookie struct {
	Name   string `json:"name" bson:"name"`
	Value  string `json:"value" bson:"value"`
	Domain string `json:"domain,omitempty" bson:"domain,omitempty"`
	Path   string `json:"path,omitempty" bson:"path,omitempty"`
}

// PortalSession is the opaque authentication material obtained by logging in
// to the portal. The in-memory copy held by the session store is
// authoritative while the process is alive; the persisted copy is a
// cold-start fallback only.
type PortalSession struct {
	Cookies   []SessionCookie `json:"cookies" bson:"cookies"`
	ExpiresAt time.Time       `json:"expiresAt" bson:"expiresAt"`
}

// Valid reports whether the session exists and has not expired at now.
func (s *PortalSession) Valid(now time.Time) bool {
	return s != nil && len(s.Cookies) > 0 && now.Before(s.ExpiresAt)
}
