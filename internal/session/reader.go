// Package session reads the session cookie set by the auth callback.
//
// Presence of a non-empty cookie is the only signal exposed to the route
// guard. The value is not verified here.
package session

import (
	"errors"
	"net/http"
)

// DefaultCookieName is the cookie written by the auth callback
const DefaultCookieName = "session"

// ErrNoSession is returned by Token when no usable session cookie is present
var ErrNoSession = errors.New("session cookie not present")

// Reader reports whether a request carries a session cookie.
// Implementations may fail; callers treat any error as "absent".
type Reader interface {
	SessionPresent(r *http.Request) (bool, error)
}

// CookieReader reads a named cookie from the request's Cookie header
type CookieReader struct {
	name string
}

// NewCookieReader creates a reader for the given cookie name
func NewCookieReader(name string) *CookieReader {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieReader{name: name}
}

// Name returns the cookie name being read
func (c *CookieReader) Name() string {
	return c.name
}

// SessionPresent implements Reader. A header the standard library cannot
// parse into a named, non-empty cookie counts as absent.
func (c *CookieReader) SessionPresent(r *http.Request) (bool, error) {
	_, err := c.Token(r)
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Token returns the raw session cookie value
func (c *CookieReader) Token(r *http.Request) (string, error) {
	if r == nil {
		return "", ErrNoSession
	}
	cookie, err := r.Cookie(c.name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNoSession
		}
		return "", err
	}
	if cookie.Value == "" {
		return "", ErrNoSession
	}
	return cookie.Value, nil
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(r *http.Request) (bool, error)

// SessionPresent calls f(r)
func (f ReaderFunc) SessionPresent(r *http.Request) (bool, error) {
	return f(r)
}
