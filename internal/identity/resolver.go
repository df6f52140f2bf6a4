// Package identity binds stateless requests to a conversation by deriving a
// session key from client-supplied hints.
package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/set-night/chatline/internal/domain"
)

type Mode string

const (
	// ModeToken mints a fresh key when the caller supplies none.
	ModeToken Mode = "token"
	// ModeAddress falls back to the caller's network address. Every caller
	// sharing that address lands in the same transcript.
	ModeAddress Mode = "address"
)

type Source string

const (
	SourceExplicit Source = "explicit"
	SourceCookie   Source = "cookie"
	SourceAddress  Source = "address"
	SourceMinted   Source = "minted"
)

// Hints are the identity claims carried by one request. Empty means absent.
type Hints struct {
	Explicit   string
	Cookie     string
	RemoteAddr string
}

type Resolution struct {
	Key    domain.SessionKey
	Source Source
}

// Minted reports whether the key was generated for this request and must be
// handed back to the caller.
func (r Resolution) Minted() bool {
	return r.Source == SourceMinted
}

type Resolver struct {
	mode Mode
	mint func() string
}

func NewResolver(mode Mode) *Resolver {
	if mode != ModeAddress {
		mode = ModeToken
	}
	return &Resolver{mode: mode, mint: uuid.NewString}
}

// Resolve never fails: every request maps to some key. Supplied keys are
// taken verbatim without format or ownership checks.
func (r *Resolver) Resolve(h Hints) Resolution {
	if v := strings.TrimSpace(h.Explicit); v != "" {
		return Resolution{Key: domain.SessionKey(v), Source: SourceExplicit}
	}
	if v := strings.TrimSpace(h.Cookie); v != "" {
		return Resolution{Key: domain.SessionKey(v), Source: SourceCookie}
	}
	if r.mode == ModeAddress {
		if v := strings.TrimSpace(h.RemoteAddr); v != "" {
			return Resolution{Key: domain.SessionKey(v), Source: SourceAddress}
		}
	}
	return Resolution{Key: domain.SessionKey(r.mint()), Source: SourceMinted}
}
