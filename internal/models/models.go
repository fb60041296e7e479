package models

import (
	"time"

	"golang.org/x/oauth2"
)

// AccessToken is an app access token issued through the client-credentials grant.
// ExpiresAt is fixed when the token is issued and never changes afterwards.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	TokenType string
}

// Expired reports whether the token must no longer be used at the provided instant.
// A token expiring exactly at now counts as expired.
func (t AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// OAuth2 converts the token for use with golang.org/x/oauth2. An empty type
// defaults to Bearer.
func (t AccessToken) OAuth2() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: t.Token,
		TokenType:   tokenType,
		Expiry:      t.ExpiresAt,
	}
}

// TokenGrant is the raw response of the authorization endpoint.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TTL returns the lifetime granted by the authorization server.
func (g TokenGrant) TTL() time.Duration {
	return time.Duration(g.ExpiresIn) * time.Second
}

// VideoType enumerates the kinds of videos published on a channel.
type VideoType string

const (
	VideoTypeArchive   VideoType = "archive"
	VideoTypeHighlight VideoType = "highlight"
	VideoTypeUpload    VideoType = "upload"
)

// MutedSegment marks a muted range of a video, in seconds.
type MutedSegment struct {
	Duration int `json:"duration"`
	Offset   int `json:"offset"`
}

// Video mirrors a single entry of the Helix videos listing.
type Video struct {
	ID            string         `json:"id"`
	StreamID      *string        `json:"stream_id"`
	UserID        string         `json:"user_id"`
	UserLogin     string         `json:"user_login"`
	UserName      string         `json:"user_name"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	CreatedAt     string         `json:"created_at"`
	PublishedAt   string         `json:"published_at"`
	URL           string         `json:"url"`
	ThumbnailURL  string         `json:"thumbnail_url"`
	Viewable      string         `json:"viewable"`
	ViewCount     int64          `json:"view_count"`
	Language      string         `json:"language"`
	Type          VideoType      `json:"type"`
	Duration      string         `json:"duration"`
	MutedSegments []MutedSegment `json:"muted_segments"`
}

// Pagination carries the cursor for the next page, when there is one.
type Pagination struct {
	Cursor string `json:"cursor,omitempty"`
}
