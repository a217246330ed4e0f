// Package token issues the short-lived signed credentials attached to
// every activity stream request.
package token

import (
	"errors"
	"sync"
	"time"

	"github.com/jpalmerr/activitystream/activity"
)

const (
	// DefaultTTL is the lifetime of a credential when the caller does not
	// ask for a specific expiry.
	DefaultTTL = time.Hour

	// DefaultScope is the scope claim granting read access to the stream.
	DefaultScope = "http://schema.livefyre.com/api#ActivityStream"

	// refreshMargin keeps a cached credential from being sent moments
	// before it expires.
	refreshMargin = time.Minute
)

// Claims is the set of claims signed into a credential.
type Claims struct {
	Issuer    string
	Audience  string
	Subject   string
	Scope     string
	ExpiresAt time.Time
}

// Credential is a signed token together with the expiry it was issued for.
// Credentials are immutable once issued.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Signer signs claims with a shared secret.
type Signer interface {
	Sign(claims Claims, secret string) (string, error)
}

// SignerFunc adapts a function to the [Signer] interface.
type SignerFunc func(claims Claims, secret string) (string, error)

// Sign calls f(claims, secret).
func (f SignerFunc) Sign(claims Claims, secret string) (string, error) {
	return f(claims, secret)
}

// Issuer produces credentials for a single network identity.
//
// Issuer is safe for concurrent use.
type Issuer struct {
	identity string
	secret   string
	scope    string
	signer   Signer
	now      func() time.Time

	mu     sync.Mutex
	cached Credential
}

// NewIssuer creates an [Issuer] for the given canonical identity (the
// network urn). An empty scope selects [DefaultScope]; a nil signer
// selects [JWTSigner].
func NewIssuer(identity, secret, scope string, signer Signer) (*Issuer, error) {
	if identity == "" {
		return nil, errors.New("token: identity is required")
	}
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if scope == "" {
		scope = DefaultScope
	}
	if signer == nil {
		signer = JWTSigner{}
	}
	return &Issuer{
		identity: identity,
		secret:   secret,
		scope:    scope,
		signer:   signer,
		now:      time.Now,
	}, nil
}

// Issue signs a new credential expiring at desired. A zero or already past
// desired expiry is replaced with now plus [DefaultTTL].
//
// Signer failures are returned as *activity.SigningError.
func (i *Issuer) Issue(desired time.Time) (Credential, error) {
	now := i.now()
	if desired.IsZero() || !desired.After(now) {
		desired = now.Add(DefaultTTL)
	}

	claims := Claims{
		Issuer:    i.identity,
		Audience:  i.identity,
		Subject:   i.identity,
		Scope:     i.scope,
		ExpiresAt: desired,
	}

	signed, err := i.signer.Sign(claims, i.secret)
	if err != nil {
		return Credential{}, &activity.SigningError{Err: err}
	}

	cred := Credential{Token: signed, ExpiresAt: desired}

	i.mu.Lock()
	i.cached = cred
	i.mu.Unlock()

	return cred, nil
}

// Token returns the most recently issued credential while it is still
// valid, and issues a fresh one otherwise.
func (i *Issuer) Token() (Credential, error) {
	i.mu.Lock()
	cached := i.cached
	i.mu.Unlock()

	if cached.Token != "" && i.now().Add(refreshMargin).Before(cached.ExpiresAt) {
		return cached, nil
	}
	return i.Issue(time.Time{})
}
