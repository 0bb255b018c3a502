package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoCredentials is returned when no service account was configured.
var ErrNoCredentials = errors.New("no service account credentials configured")

// AuthClient hands out authenticated HTTP clients for Google APIs.
type AuthClient interface {
	// Client returns an *http.Client that injects and refreshes bearer tokens.
	Client(ctx context.Context) (*http.Client, error)
}

type serviceAccountAuth struct {
	source oauth2.TokenSource
	base   *http.Client
}

// NewServiceAccountAuth parses a service account key (the JSON downloaded
// from the Google console) and scopes it. base is used as the transport
// underneath the token layer and may be nil.
func NewServiceAccountAuth(ctx context.Context, credentialsJSON []byte, base *http.Client, scopes ...string) (AuthClient, error) {
	if len(credentialsJSON) == 0 {
		return nil, ErrNoCredentials
	}
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return &serviceAccountAuth{
		source: oauth2.ReuseTokenSource(nil, cfg.TokenSource(ctx)),
		base:   base,
	}, nil
}

// NewStaticTokenAuth wraps a fixed token, mostly for tests and local runs.
func NewStaticTokenAuth(token *oauth2.Token, base *http.Client) AuthClient {
	return &serviceAccountAuth{
		source: oauth2.StaticTokenSource(token),
		base:   base,
	}
}

func (a *serviceAccountAuth) Client(ctx context.Context) (*http.Client, error) {
	if a.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.base)
	}
	return oauth2.NewClient(ctx, a.source), nil
}
