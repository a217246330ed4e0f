// Package network resolves a network name into the identity used to
// address and authenticate activity stream requests.
package network

import (
	"errors"
	"fmt"
	"strings"
)

// Identity is the canonical identity of a network.
type Identity struct {
	// URN is the canonical identifier, used as the token issuer/audience/
	// subject and as the stream's resource parameter.
	URN string

	// Name is the short network name used to build the poll URL.
	Name string
}

// Directory resolves a network name and secret into an [Identity].
type Directory interface {
	Resolve(network, secret string) (Identity, error)
}

// DirectoryFunc adapts a function to the [Directory] interface.
type DirectoryFunc func(network, secret string) (Identity, error)

// Resolve calls f(network, secret).
func (f DirectoryFunc) Resolve(network, secret string) (Identity, error) {
	return f(network, secret)
}

// Livefyre resolves networks named like "client.fyre.co" into the urn
// "urn:livefyre:client.fyre.co" with short name "client".
type Livefyre struct{}

// Resolve implements [Directory].
func (Livefyre) Resolve(network, secret string) (Identity, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return Identity{}, errors.New("network: name is required")
	}
	if secret == "" {
		return Identity{}, errors.New("network: secret is required")
	}

	name, _, _ := strings.Cut(network, ".")
	if name == "" {
		return Identity{}, fmt.Errorf("network: invalid name %q", network)
	}

	return Identity{
		URN:  "urn:livefyre:" + network,
		Name: name,
	}, nil
}
