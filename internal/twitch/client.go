package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rheddev/rhed-v2/internal/metrics"
	"github.com/rheddev/rhed-v2/internal/models"
)

const (
	// DefaultAuthURL is the client-credentials token endpoint.
	DefaultAuthURL = "https://id.twitch.tv/oauth2/token"
	// DefaultAPIURL is the Helix API root.
	DefaultAPIURL = "https://api.twitch.tv/helix"

	maxBodyBytes = 1 << 20
)

// Client talks to the Twitch authorization endpoint and the Helix API.
type Client struct {
	HTTPClient *http.Client
	AuthURL    string
	APIURL     string
}

// NewClient constructs a Client. Blank URLs fall back to the public Twitch endpoints.
func NewClient(authURL, apiURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(authURL) == "" {
		authURL = DefaultAuthURL
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		AuthURL:    authURL,
		APIURL:     strings.TrimSuffix(apiURL, "/"),
	}
}

// RequestAppToken performs the client-credentials grant.
func (c *Client) RequestAppToken(ctx context.Context, clientID, clientSecret string) (models.TokenGrant, error) {
	endpoint, err := buildURL(c.AuthURL, url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"grant_type":    {"client_credentials"},
	})
	if err != nil {
		return models.TokenGrant{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return models.TokenGrant{}, fmt.Errorf("build token request: %w", err)
	}

	var grant models.TokenGrant
	if err := c.do(req, EndpointAuth, &grant); err != nil {
		return models.TokenGrant{}, err
	}
	return grant, nil
}

type videosResponse struct {
	Data       []models.Video    `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// GetVideos lists the most recent videos of a user, newest first.
func (c *Client) GetVideos(ctx context.Context, token models.AccessToken, clientID, userID string, first int) ([]models.Video, models.Pagination, error) {
	endpoint, err := buildURL(c.APIURL+"/videos", url.Values{
		"user_id": {userID},
		"first":   {strconv.Itoa(first)},
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("build videos request: %w", err)
	}
	token.OAuth2().SetAuthHeader(req)
	req.Header.Set("Client-Id", clientID)

	var payload videosResponse
	if err := c.do(req, EndpointVideos, &payload); err != nil {
		return nil, models.Pagination{}, err
	}
	return payload.Data, payload.Pagination, nil
}

func (c *Client) do(req *http.Request, endpoint Endpoint, out any) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(string(endpoint), "transport_error").Inc()
		return fmt.Errorf("twitch %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(string(endpoint), strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read twitch %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(endpoint, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse twitch %s response: %w", endpoint, err)
	}
	return nil
}

func buildURL(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", base, err)
	}
	query := u.Query()
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
