package twitter

import (
	"context"
	"net/http"

	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"
)

// Credentials authenticate the client. The four OAuth 1.0a values act on
// behalf of the operating account; the bearer token is app-only.
type Credentials struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// HasUserContext reports whether all OAuth 1.0a values are present.
func (c Credentials) HasUserContext() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// HasAppContext reports whether an app-only bearer token is present.
func (c Credentials) HasAppContext() bool {
	return c.BearerToken != ""
}

// userHTTPClient signs every request with OAuth 1.0a using base as transport.
func userHTTPClient(creds Credentials, base *http.Client) *http.Client {
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	client := config.Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret))
	client.Timeout = base.Timeout
	client.CheckRedirect = base.CheckRedirect
	return client
}

// appHTTPClient attaches the bearer token using base as transport.
func appHTTPClient(creds Credentials, base *http.Client) *http.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: creds.BearerToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = base.Timeout
	client.CheckRedirect = base.CheckRedirect
	return client
}
