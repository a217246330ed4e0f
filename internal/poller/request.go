package poller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jpalmerr/activitystream/internal/token"
)

// DefaultEndpoint is the stream URL template; %s is replaced with the
// short network name.
const DefaultEndpoint = "https://%s.activity.fyre.co/api/v3.1/activity/"

// TokenSource hands out the credential for the next request.
type TokenSource interface {
	Token() (token.Credential, error)
}

// RequestBuilder composes poll requests for a single network.
// The URL is fixed at construction; only the cursor and token vary.
type RequestBuilder struct {
	url      string
	resource string
	tokens   TokenSource
}

// NewRequestBuilder builds the stream URL from endpoint (a template with a
// single %s, empty for [DefaultEndpoint]) and the network name.
func NewRequestBuilder(endpoint, networkName, resource string, tokens TokenSource) (*RequestBuilder, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if strings.Count(endpoint, "%s") != 1 {
		return nil, fmt.Errorf("endpoint %q must contain exactly one %%s", endpoint)
	}
	if resource == "" {
		return nil, errors.New("resource is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}

	u := fmt.Sprintf(endpoint, networkName)
	if _, err := url.Parse(u); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	return &RequestBuilder{url: u, resource: resource, tokens: tokens}, nil
}

// URL returns the stream URL requests are sent to.
func (b *RequestBuilder) URL() string {
	return b.url
}

// Build returns the request polling from position. A credential failure is
// returned as *activity.SigningError.
func (b *RequestBuilder) Build(position string) (Request, error) {
	cred, err := b.tokens.Token()
	if err != nil {
		return Request{}, err
	}

	return Request{
		Method: http.MethodGet,
		URL:    b.url,
		Query: url.Values{
			"resource": {b.resource},
			"since":    {position},
		},
		Headers: map[string]string{
			"Authorization": "Bearer " + cred.Token,
		},
	}, nil
}
