package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/services"
)

// ErrorKind classifies API failures so callers can pick a rendering strategy
// without string-matching messages.
type ErrorKind string

const (
	KindTransport    ErrorKind = "transport"
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindServer       ErrorKind = "server"
)

// APIError is the typed failure returned by every client method. It is never
// panicked, always returned.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Navigator abstracts the routing surface so the client's 401 handling can
// redirect without knowing the host environment.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

const DefaultLoginPath = "/admin/login"

// Config carries the optional collaborators for NewClient. Zero values get
// sensible defaults.
type Config struct {
	HTTPClient *http.Client
	Tokens     TokenStore
	Navigator  Navigator
	LoginPath  string
}

// Client is the single typed wrapper over the backend REST surface: one
// method per operation, one shared error-normalization path.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	nav        Navigator
	loginPath  string
}

func NewClient(baseURL string, cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: cfg.HTTPClient,
		tokens:     cfg.Tokens,
		nav:        cfg.Navigator,
		loginPath:  cfg.LoginPath,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore()
	}
	if c.loginPath == "" {
		c.loginPath = DefaultLoginPath
	}
	return c
}

// Tokens exposes the credential store shared with the session.
func (c *Client) Tokens() TokenStore { return c.tokens }

// do performs one round trip. intercept401 controls the global authorization
// handling: clear the stored token and navigate to the login route, unless
// the current location already is the login route.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, intercept401 bool) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindTransport, Message: err.Error()}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, out, intercept401)
}

func (c *Client) handleResponse(resp *http.Response, out interface{}, intercept401 bool) error {
	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Clear()
		if intercept401 && c.nav != nil && c.nav.CurrentPath() != c.loginPath {
			c.nav.Navigate(c.loginPath)
		}
		return &APIError{Kind: KindUnauthorized, Status: resp.StatusCode, Message: serverMessage(resp)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Status: resp.StatusCode, Message: serverMessage(resp)}
	case resp.StatusCode >= 500:
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: serverMessage(resp)}
	case resp.StatusCode >= 400:
		return &APIError{Kind: KindValidation, Status: resp.StatusCode, Message: serverMessage(resp)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response body: " + err.Error()}
	}
	return nil
}

// serverMessage extracts the {"error": ...} envelope, falling back to the
// status text.
func serverMessage(resp *http.Response) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return http.StatusText(resp.StatusCode)
}

// --- Auth ---

// Login exchanges the admin password for a bearer token and stores it. A
// rejected password comes back as an unauthorized APIError without any
// redirect, since the caller is already on the login flow.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	input := map[string]string{"password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", input, &out, false); err != nil {
		return "", err
	}
	c.tokens.SetToken(out.Token)
	return out.Token, nil
}

// Validate checks whether the stored token is still accepted. An
// authorization failure resolves to (false, nil) and clears the token; the
// session decides what to do next, so no redirect fires here.
func (c *Client) Validate(ctx context.Context) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, &out, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized {
			return false, nil
		}
		return false, err
	}
	return out.Valid, nil
}

// --- Tournaments ---

func (c *Client) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	var out []models.Tournament
	if err := c.do(ctx, http.MethodGet, "/api/tournaments", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var out models.Tournament
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tournaments/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTournament(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	var out models.Tournament
	if err := c.do(ctx, http.MethodPost, "/api/tournaments", input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTournament(ctx context.Context, id int, input services.UpdateTournamentInput) (*models.Tournament, error) {
	var out models.Tournament
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tournaments/%d", id), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTournamentStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	var out models.Tournament
	input := map[string]models.TournamentStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tournaments/%d/status", id), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTournament(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tournaments/%d", id), nil, nil, true)
}

// UploadLogo sends a multipart form with the logo file.
func (c *Client) UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (*models.Tournament, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="logo"; filename=%q`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	if err := writer.Close(); err != nil {
		return nil, &APIError{Kind: KindTransport, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/tournaments/%d/logo", c.baseURL, id), &buf)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	var out models.Tournament
	if err := c.handleResponse(resp, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUpdates fetches the polling feed, newest first. A nil since returns
// the most recent page; otherwise only items strictly after the watermark.
func (c *Client) ListUpdates(ctx context.Context, tournamentID int, since *int64, limit int) ([]models.Update, error) {
	query := url.Values{}
	if since != nil {
		query.Set("since", strconv.FormatInt(*since, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := fmt.Sprintf("/api/tournaments/%d/updates", tournamentID)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []models.Update
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Teams ---

func (c *Client) ListTeams(ctx context.Context, tournamentID int) ([]models.Team, error) {
	var out []models.Team
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/teams", tournamentID), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	var out models.Team
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/teams/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTeam(ctx context.Context, tournamentID int, input services.CreateTeamInput) (*models.Team, error) {
	var out models.Team
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/teams", tournamentID), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTeam(ctx context.Context, id int, input services.UpdateTeamInput) (*models.Team, error) {
	var out models.Team
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/teams/%d", id), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTeam(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/teams/%d", id), nil, nil, true)
}

// --- Matches & bracket ---

func (c *Client) ListMatches(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]models.Match, error) {
	path := fmt.Sprintf("/api/tournaments/%d/matches", tournamentID)
	if status != nil {
		path += "?status=" + url.QueryEscape(string(*status))
	}
	var out []models.Match
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	var out models.Match
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/matches/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMatch(ctx context.Context, id int, input services.UpdateMatchInput) (*models.Match, error) {
	var out models.Match
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/matches/%d", id), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetBracket(ctx context.Context, tournamentID int) ([]models.BracketRound, error) {
	var out []models.BracketRound
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/bracket", tournamentID), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBracket(ctx context.Context, tournamentID int, input services.CreateBracketInput) ([]models.BracketRound, error) {
	var out []models.BracketRound
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/bracket", tournamentID), input, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Pools ---

func (c *Client) CreatePools(ctx context.Context, tournamentID int, input services.CreatePoolsInput) ([]models.Pool, error) {
	var out []models.Pool
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/pools", tournamentID), input, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPools(ctx context.Context, tournamentID int) ([]models.Pool, error) {
	var out []models.Pool
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/pools", tournamentID), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPool(ctx context.Context, id int) (*models.Pool, error) {
	var out models.Pool
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pools/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PoolStandings(ctx context.Context, poolID int) ([]models.PoolStanding, error) {
	var out []models.PoolStanding
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pools/%d/standings", poolID), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TournamentStandings(ctx context.Context, tournamentID int) ([]models.PoolStanding, error) {
	var out []models.PoolStanding
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/standings", tournamentID), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPoolMatches(ctx context.Context, tournamentID int) ([]models.PoolMatch, error) {
	var out []models.PoolMatch
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/pool-matches", tournamentID), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPoolMatch(ctx context.Context, id int) (*models.PoolMatch, error) {
	var out models.PoolMatch
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/pool-matches/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecordSetScore(ctx context.Context, poolMatchID int, input services.RecordSetScoreInput) (*models.PoolMatch, error) {
	var out models.PoolMatch
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/pool-matches/%d/score", poolMatchID), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompletePoolPlay(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var out models.Tournament
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/complete-pool-play", tournamentID), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Locations ---

func (c *Client) ListLocations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := c.do(ctx, http.MethodGet, "/api/locations", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLocation(ctx context.Context, id int) (*models.Location, error) {
	var out models.Location
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/locations/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLocation(ctx context.Context, input services.CreateLocationInput) (*models.Location, error) {
	var out models.Location
	if err := c.do(ctx, http.MethodPost, "/api/locations", input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLocation(ctx context.Context, id int, input services.UpdateLocationInput) (*models.Location, error) {
	var out models.Location
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/locations/%d", id), input, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLocation(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/locations/%d", id), nil, nil, true)
}
