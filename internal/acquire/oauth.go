package acquire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
)

// Userinfo endpoints queried after the code exchange.
const (
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v3/userinfo"
	FacebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)"
)

// maxUserInfo caps the provider response body we are willing to read.
const maxUserInfo = 1 << 20

// OAuth normalizes OAuthProof for one provider: it exchanges the code for
// provider tokens and reads the provider's userinfo document.
type OAuth struct {
	name        string
	cfg         oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	decode      func([]byte) (Profile, error)
}

// OAuthOption customizes an OAuth strategy.
type OAuthOption func(*OAuth)

// WithEndpoint replaces the provider's token endpoint.
func WithEndpoint(ep oauth2.Endpoint) OAuthOption { return func(o *OAuth) { o.cfg.Endpoint = ep } }

// WithUserInfoURL replaces the provider's userinfo endpoint.
func WithUserInfoURL(u string) OAuthOption { return func(o *OAuth) { o.userInfoURL = u } }

// WithHTTPClient sets the client used for both the exchange and userinfo calls.
func WithHTTPClient(c *http.Client) OAuthOption { return func(o *OAuth) { o.httpClient = c } }

// NewGoogle builds the Google strategy.
func NewGoogle(clientID, clientSecret, redirectURL string, opts ...OAuthOption) *OAuth {
	return newOAuth(ProviderGoogle, oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}, GoogleUserInfoURL, decodeGoogle, opts)
}

// NewFacebook builds the Facebook strategy.
func NewFacebook(clientID, clientSecret, redirectURL string, opts ...OAuthOption) *OAuth {
	return newOAuth(ProviderFacebook, oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"email", "public_profile"},
		Endpoint:     facebook.Endpoint,
	}, FacebookUserInfoURL, decodeFacebook, opts)
}

func newOAuth(name string, cfg oauth2.Config, userInfoURL string, decode func([]byte) (Profile, error), opts []OAuthOption) *OAuth {
	o := &OAuth{name: name, cfg: cfg, userInfoURL: userInfoURL, decode: decode}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name is the provider name.
func (o *OAuth) Name() string { return o.name }

// AuthCodeURL returns the consent page URL for state.
func (o *OAuth) AuthCodeURL(state string) string { return o.cfg.AuthCodeURL(state) }

// Normalize implements Strategy.
func (o *OAuth) Normalize(ctx context.Context, proof Proof) (Profile, error) {
	p, ok := proof.(OAuthProof)
	if !ok || p.Code == "" {
		return Profile{}, fmt.Errorf("%w: %s: missing authorization code", errs.ErrInvalidInput, o.name)
	}
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	tok, err := o.cfg.Exchange(ctx, p.Code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return Profile{}, fmt.Errorf("%w: %s: code exchange: %w", errs.ErrUnauthorized, o.name, err)
		}
		return Profile{}, fmt.Errorf("%s: code exchange: %w", o.name, err)
	}

	body, err := o.userInfo(ctx, tok)
	if err != nil {
		return Profile{}, err
	}
	prof, err := o.decode(body)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: userinfo: %w", o.name, err)
	}
	if strings.TrimSpace(prof.Email) == "" {
		return Profile{}, fmt.Errorf("%w: %s returned no email", errs.ErrProfileIncomplete, o.name)
	}
	prof.Credential = model.Credential{
		Provider:     o.name,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	return prof, nil
}

func (o *OAuth) userInfo(ctx context.Context, tok *oauth2.Token) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: userinfo: %w", o.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfo))
	if err != nil {
		return nil, fmt.Errorf("%s: userinfo: %w", o.name, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s: userinfo status %d", errs.ErrUnauthorized, o.name, resp.StatusCode)
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("%s: userinfo status %d", o.name, resp.StatusCode)
	}
	return body, nil
}

func decodeGoogle(b []byte) (Profile, error) {
	var v struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return Profile{}, err
	}
	return Profile{Email: v.Email, DisplayName: v.Name, PhotoURL: v.Picture}, nil
}

func decodeFacebook(b []byte) (Profile, error) {
	var v struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return Profile{}, err
	}
	return Profile{Email: v.Email, DisplayName: v.Name, PhotoURL: v.Picture.Data.URL}, nil
}
