package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/rheddev/rhed-v2/internal/logging"
	"github.com/rheddev/rhed-v2/internal/metrics"
	"github.com/rheddev/rhed-v2/internal/models"
	"github.com/rheddev/rhed-v2/internal/twitch"
)

const refreshKey = "token-refresh"

var (
	errEmptyGrant   = fmt.Errorf("authorization server returned an empty access token: %w", twitch.ErrUpstreamAuth)
	errExpiredGrant = fmt.Errorf("authorization server returned a token without a positive lifetime: %w", twitch.ErrUpstreamAuth)
)

var _ oauth2.TokenSource = (*Provider)(nil)

// Credentials identify the application against the authorization server.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate reports ErrAuthConfig when either credential is blank.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return ErrAuthConfig
	}
	return nil
}

// Issuer exchanges client credentials for a new app access token.
type Issuer interface {
	RequestAppToken(ctx context.Context, clientID, clientSecret string) (models.TokenGrant, error)
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(ctx context.Context, clientID, clientSecret string) (models.TokenGrant, error)

// RequestAppToken implements Issuer.
func (f IssuerFunc) RequestAppToken(ctx context.Context, clientID, clientSecret string) (models.TokenGrant, error) {
	return f(ctx, clientID, clientSecret)
}

// Provider hands out a valid app access token, refreshing it lazily when the
// most recent stored token has expired.
type Provider struct {
	creds  Credentials
	issuer Issuer
	store  Store
	now    func() time.Time

	group singleflight.Group
}

// NewProvider validates the credentials and constructs a Provider.
func NewProvider(creds Credentials, issuer Issuer, store Store) (*Provider, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, errors.New("tokens: issuer must not be nil")
	}
	if store == nil {
		return nil, errors.New("tokens: store must not be nil")
	}
	return &Provider{
		creds:  creds,
		issuer: issuer,
		store:  store,
		now:    time.Now,
	}, nil
}

// WithNowFunc allows tests to override the time source.
func (p *Provider) WithNowFunc(now func() time.Time) {
	p.now = now
}

// ClientID returns the configured client identifier.
func (p *Provider) ClientID() string {
	return p.creds.ClientID
}

// GetValidToken returns the latest stored token while it is still valid and
// otherwise requests, persists and returns a new one.
func (p *Provider) GetValidToken(ctx context.Context) (models.AccessToken, error) {
	token, ok, err := p.store.Latest(ctx)
	if err != nil {
		return models.AccessToken{}, persistenceError("latest", err)
	}
	if ok && !token.Expired(p.now()) {
		return token, nil
	}

	// The refresh outlives any one caller; a caller that gives up just stops waiting.
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(refreshKey, func() (any, error) {
		return p.refresh(shared)
	})
	select {
	case <-ctx.Done():
		return models.AccessToken{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.AccessToken{}, res.Err
		}
		return res.Val.(models.AccessToken), nil
	}
}

// Token implements oauth2.TokenSource so an oauth2.Transport can attach the
// current app access token to outgoing requests.
func (p *Provider) Token() (*oauth2.Token, error) {
	token, err := p.GetValidToken(context.Background())
	if err != nil {
		return nil, err
	}
	return token.OAuth2(), nil
}

func (p *Provider) refresh(ctx context.Context) (token models.AccessToken, err error) {
	ctx, span := logging.StartSpan(ctx, "tokens.refresh")
	defer func() {
		span.Fail(err)
		span.End()
	}()
	logger := logging.FromContext(ctx)

	// Another caller may have refreshed between our read and entering the flight.
	if latest, ok, err := p.store.Latest(ctx); err != nil {
		return models.AccessToken{}, persistenceError("latest", err)
	} else if ok && !latest.Expired(p.now()) {
		return latest, nil
	}

	logger.Info("requesting new app access token")

	grant, err := p.issuer.RequestAppToken(ctx, p.creds.ClientID, p.creds.ClientSecret)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("upstream_error").Inc()
		logger.Error("app access token request failed", slog.Any("error", err))
		return models.AccessToken{}, err
	}
	if strings.TrimSpace(grant.AccessToken) == "" {
		metrics.TokenRefreshes.WithLabelValues("upstream_error").Inc()
		return models.AccessToken{}, errEmptyGrant
	}
	// Storing an already expired token would force a refresh on every request.
	if grant.ExpiresIn <= 0 {
		metrics.TokenRefreshes.WithLabelValues("upstream_error").Inc()
		return models.AccessToken{}, errExpiredGrant
	}

	token = models.AccessToken{
		Token:     grant.AccessToken,
		ExpiresAt: p.now().Add(grant.TTL()),
		TokenType: grant.TokenType,
	}

	if err = p.store.Append(ctx, token); err != nil {
		metrics.TokenRefreshes.WithLabelValues("persistence_error").Inc()
		return models.AccessToken{}, persistenceError("append", err)
	}

	metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	logger.Info("stored new app access token", slog.Time("expires_at", token.ExpiresAt))
	return token, nil
}
