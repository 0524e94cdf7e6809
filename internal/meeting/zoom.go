package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrNotConfigured = errors.New("zoom credentials are not configured")

const (
	DefaultTokenURL = "https://zoom.us/oauth/token"
	DefaultAPIURL   = "https://api.zoom.us/v2"
)

// Request describes the meeting to schedule.
type Request struct {
	Topic    string
	Start    time.Time
	Duration time.Duration
	Timezone string
}

// ZoomClient schedules meetings with a Server-to-Server OAuth app.
type ZoomClient struct {
	accountID    string
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
}

func NewZoomClient(cfg ZoomConfig, httpClient *http.Client) *ZoomClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &ZoomClient{
		accountID:    cfg.AccountID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     cfg.TokenURL,
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		httpClient:   httpClient,
	}
}

func (z *ZoomClient) configured() bool {
	return z.accountID != "" && z.clientID != "" && z.clientSecret != ""
}

func (z *ZoomClient) token(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.accessToken != "" && time.Now().Before(z.expiresAt) {
		return z.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", z.accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %v", err)
	}
	req.SetBasicAuth(z.clientID, z.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := z.do(req, &body); err != nil {
		return "", fmt.Errorf("failed to get zoom access token: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("zoom token response has no access_token")
	}

	z.accessToken = body.AccessToken
	// refresh a minute early
	z.expiresAt = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)
	return z.accessToken, nil
}

// CreateMeeting schedules a meeting and returns its join URL.
func (z *ZoomClient) CreateMeeting(ctx context.Context, r Request) (string, error) {
	if !z.configured() {
		return "", ErrNotConfigured
	}
	token, err := z.token(ctx)
	if err != nil {
		return "", err
	}

	if r.Duration <= 0 {
		r.Duration = time.Hour
	}
	if r.Timezone == "" {
		r.Timezone = "America/Toronto"
	}
	payload, err := json.Marshal(map[string]interface{}{
		"topic":      r.Topic,
		"type":       2,
		"start_time": r.Start.UTC().Format(time.RFC3339),
		"duration":   int(r.Duration.Minutes()),
		"timezone":   r.Timezone,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.apiURL+"/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build meeting request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		JoinURL string `json:"join_url"`
	}
	if err := z.do(req, &body); err != nil {
		return "", fmt.Errorf("failed to create zoom meeting: %w", err)
	}
	if body.JoinURL == "" {
		return "", errors.New("zoom meeting response has no join_url")
	}
	return body.JoinURL, nil
}

func (z *ZoomClient) do(req *http.Request, out interface{}) error {
	res, err := z.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}
