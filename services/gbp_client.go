package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
)

// GoogleProfileClient talks to the Business Profile APIs on behalf of an
// agency's stored OAuth grant. The HTTP client and the outbound rate
// limiter are explicit fields, constructed once at startup and handed to
// whoever needs them; tests swap in their own.
type GoogleProfileClient struct {
	http         *http.Client
	limiter      *rate.Limiter
	vault        *TokenVault
	db           *gorm.DB
	apiBase      string
	tokenURL     string
	clientID     string
	clientSecret string

	mu     sync.Mutex
	tokens map[uint]cachedToken
}

type cachedToken struct {
	value   string
	expires time.Time
}

type GoogleProfileClientOptions struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	APIBase    string
	TokenURL   string
}

func NewGoogleProfileClient(db *gorm.DB, vault *TokenVault, opts *GoogleProfileClientOptions) *GoogleProfileClient {
	if db == nil {
		db = config.DB
	}
	g := &GoogleProfileClient{
		http:         &http.Client{Timeout: 15 * time.Second},
		limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		vault:        vault,
		db:           db,
		apiBase:      "https://mybusinessbusinessinformation.googleapis.com/v1",
		tokenURL:     "https://oauth2.googleapis.com/token",
		clientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		clientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		tokens:       make(map[uint]cachedToken),
	}
	if opts != nil {
		if opts.HTTPClient != nil {
			g.http = opts.HTTPClient
		}
		if opts.Limiter != nil {
			g.limiter = opts.Limiter
		}
		if opts.APIBase != "" {
			g.apiBase = strings.TrimRight(opts.APIBase, "/")
		}
		if opts.TokenURL != "" {
			g.tokenURL = opts.TokenURL
		}
	}
	return g
}

// Do performs one authorized request for the agency. It waits on the rate
// limiter first and refreshes the access token once if Google answers 401.
func (g *GoogleProfileClient) Do(ctx context.Context, agencyID uint, method, path string, body []byte) (*http.Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := g.send(ctx, agencyID, method, path, body, false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return g.send(ctx, agencyID, method, path, body, true)
	}
	return resp, nil
}

func (g *GoogleProfileClient) send(ctx context.Context, agencyID uint, method, path string, body []byte, forceRefresh bool) (*http.Response, error) {
	token, err := g.accessTokenFor(ctx, agencyID, forceRefresh)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.apiBase+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.http.Do(req)
}

// accessTokenFor exchanges the agency's sealed refresh token for a live
// access token, caching it until shortly before expiry.
func (g *GoogleProfileClient) accessTokenFor(ctx context.Context, agencyID uint, force bool) (string, error) {
	g.mu.Lock()
	cached, ok := g.tokens[agencyID]
	g.mu.Unlock()
	if ok && !force && time.Now().Before(cached.expires) {
		return cached.value, nil
	}

	var conn models.GoogleConnection
	err := g.db.Where("agency_id = ? AND revoked_at IS NULL", agencyID).First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.New("agency has no active Google connection")
	}
	if err != nil {
		return "", fmt.Errorf("load google connection: %w", err)
	}

	refresh, err := g.vault.Open(conn.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("unseal refresh token: %w", err)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token exchange returned no access token")
	}

	expires := time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	g.mu.Lock()
	g.tokens[agencyID] = cachedToken{value: payload.AccessToken, expires: expires}
	g.mu.Unlock()

	return payload.AccessToken, nil
}

// GoogleLocation is the subset of the Business Information location
// resource the sync cares about.
type GoogleLocation struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	WebsiteURI   string `json:"websiteUri"`
	PhoneNumbers struct {
		PrimaryPhone string `json:"primaryPhone"`
	} `json:"phoneNumbers"`
	Categories struct {
		PrimaryCategory struct {
			DisplayName string `json:"displayName"`
		} `json:"primaryCategory"`
	} `json:"categories"`
	LatLng struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"latlng"`
	Metadata struct {
		PlaceID string `json:"placeId"`
	} `json:"metadata"`
}

// FetchLocation pulls the live profile behind a locations/{id} resource.
func (g *GoogleProfileClient) FetchLocation(ctx context.Context, agencyID uint, resourceName string) (*GoogleLocation, error) {
	path := fmt.Sprintf("/%s?readMask=name,title,websiteUri,phoneNumbers,categories,latlng,metadata", resourceName)
	resp, err := g.Do(ctx, agencyID, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("google location %s not found", resourceName)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google returned status %d for %s", resp.StatusCode, resourceName)
	}

	var loc GoogleLocation
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, fmt.Errorf("decode google location: %w", err)
	}
	return &loc, nil
}
