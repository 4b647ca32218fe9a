// Package keycloak wraps the Keycloak admin REST API for account lifecycle operations.
// Each operation authenticates a fresh short-lived admin session and releases it on
// all paths; admin sessions are never shared across calls.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const defaultTimeout = 15 * time.Second

// Sentinel errors callers are expected to match with errors.Is.
var (
	// ErrDuplicateAccount is returned when the provider reports a conflict on create
	// (username already taken).
	ErrDuplicateAccount = errors.New("keycloak: account already exists")
	// ErrInvalidPassword is returned when the provider rejects a password against its
	// policy (at least 8 characters with an uppercase letter, a digit and a symbol).
	// The policy is enforced server-side, not re-implemented here.
	ErrInvalidPassword = errors.New("keycloak: password rejected by provider policy")
)

// Config holds the connection settings for the admin API. All fields come from
// app configuration; the client keeps no ambient/global state.
type Config struct {
	// ServerURL is the Keycloak base URL (e.g. http://localhost:8180).
	ServerURL string
	// AdminRealm is the realm the admin account authenticates against (usually master).
	AdminRealm string
	// AdminUsername and AdminPassword identify the admin service account.
	AdminUsername string
	AdminPassword string
	// ClientID is the OAuth2 client used for the password grant (usually admin-cli).
	ClientID string
	// TargetRealm is the realm managed accounts and realm roles live in.
	TargetRealm string
	// Timeout bounds each HTTP request; defaults to 15s when zero.
	Timeout time.Duration
}

// Client performs admin calls against a Keycloak server.
type Client struct {
	cfg Config
}

// NewClient returns a Client for the given config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("keycloak: ServerURL is required")
	}
	if cfg.AdminRealm == "" || cfg.TargetRealm == "" {
		return nil, errors.New("keycloak: AdminRealm and TargetRealm are required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("keycloak: ClientID is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return &Client{cfg: cfg}, nil
}

// roleRepresentation is the subset of the realm role representation the client needs.
type roleRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// userRepresentation is the create-account payload. Accounts are enabled and
// pre-verified from creation; login goes through Keycloak afterwards.
type userRepresentation struct {
	Username      string `json:"username"`
	Enabled       bool   `json:"enabled"`
	EmailVerified bool   `json:"emailVerified"`
}

// credentialRepresentation sets a non-temporary password credential.
type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// CreateAccount creates an enabled, pre-verified account, sets its password and
// assigns exactly one realm role matching role. Returns the provider-assigned id,
// extracted from the creation response's Location header.
//
// A provider conflict surfaces as ErrDuplicateAccount; any other provider failure
// is a generic error.
func (c *Client) CreateAccount(ctx context.Context, username, password, role string) (string, error) {
	sess, err := c.newAdminSession(ctx)
	if err != nil {
		return "", fmt.Errorf("keycloak: admin session: %w", err)
	}
	defer sess.Close()

	body, err := json.Marshal(userRepresentation{Username: username, Enabled: true, EmailVerified: true})
	if err != nil {
		return "", fmt.Errorf("keycloak: encode user: %w", err)
	}
	resp, err := sess.do(ctx, http.MethodPost, c.realmURL("users"), body)
	if err != nil {
		return "", fmt.Errorf("keycloak: create account: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return "", ErrDuplicateAccount
	default:
		return "", fmt.Errorf("keycloak: create account: %s", responseError(resp))
	}

	externalID, err := idFromLocation(resp)
	if err != nil {
		return "", fmt.Errorf("keycloak: create account: %w", err)
	}

	if err := c.resetPassword(ctx, sess, externalID, password); err != nil {
		return "", fmt.Errorf("keycloak: set credential for new account: %w", err)
	}
	if err := c.addRealmRole(ctx, sess, externalID, role); err != nil {
		return "", fmt.Errorf("keycloak: assign role for new account: %w", err)
	}
	return externalID, nil
}

// DeleteAccount removes the account with the given external id. A missing account
// (404) counts as success so retried deletes converge; other failures are provider
// errors. Safe to call best-effort.
func (c *Client) DeleteAccount(ctx context.Context, externalID string) error {
	sess, err := c.newAdminSession(ctx)
	if err != nil {
		return fmt.Errorf("keycloak: admin session: %w", err)
	}
	defer sess.Close()

	resp, err := sess.do(ctx, http.MethodDelete, c.realmURL("users", externalID), nil)
	if err != nil {
		return fmt.Errorf("keycloak: delete account: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keycloak: delete account: %s", responseError(resp))
	}
	return nil
}

// SetPassword replaces the account's credential with a non-temporary password.
// A bad-request rejection surfaces as ErrInvalidPassword; other failures are generic.
func (c *Client) SetPassword(ctx context.Context, externalID, password string) error {
	sess, err := c.newAdminSession(ctx)
	if err != nil {
		return fmt.Errorf("keycloak: admin session: %w", err)
	}
	defer sess.Close()

	if err := c.resetPassword(ctx, sess, externalID, password); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status == http.StatusBadRequest {
			return ErrInvalidPassword
		}
		return fmt.Errorf("keycloak: set password: %w", err)
	}
	return nil
}

// SetRole replaces the account's realm roles with exactly one role matching role.
// The remove/add pair is not transactional in the provider; a crash in between
// leaves the account role-less. That gap is documented, not repaired here.
func (c *Client) SetRole(ctx context.Context, externalID, role string) error {
	sess, err := c.newAdminSession(ctx)
	if err != nil {
		return fmt.Errorf("keycloak: admin session: %w", err)
	}
	defer sess.Close()

	current, err := c.listRealmRoles(ctx, sess, externalID)
	if err != nil {
		return fmt.Errorf("keycloak: list roles: %w", err)
	}
	if len(current) > 0 {
		if err := c.removeRealmRoles(ctx, sess, externalID, current); err != nil {
			return fmt.Errorf("keycloak: remove roles: %w", err)
		}
	}
	if err := c.addRealmRole(ctx, sess, externalID, role); err != nil {
		return fmt.Errorf("keycloak: add role: %w", err)
	}
	return nil
}

func (c *Client) resetPassword(ctx context.Context, sess *adminSession, externalID, password string) error {
	body, err := json.Marshal(credentialRepresentation{Type: "password", Value: password, Temporary: false})
	if err != nil {
		return err
	}
	resp, err := sess.do(ctx, http.MethodPut, c.realmURL("users", externalID, "reset-password"), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: readBody(resp)}
	}
	return nil
}

// getRoleByName looks up the canonical realm role representation for name.
func (c *Client) getRoleByName(ctx context.Context, sess *adminSession, name string) (*roleRepresentation, error) {
	resp, err := sess.do(ctx, http.MethodGet, c.realmURL("roles", name), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{status: resp.StatusCode, body: readBody(resp)}
	}
	var role roleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&role); err != nil {
		return nil, fmt.Errorf("decode role: %w", err)
	}
	return &role, nil
}

func (c *Client) listRealmRoles(ctx context.Context, sess *adminSession, externalID string) ([]roleRepresentation, error) {
	resp, err := sess.do(ctx, http.MethodGet, c.realmURL("users", externalID, "role-mappings", "realm"), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{status: resp.StatusCode, body: readBody(resp)}
	}
	var roles []roleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		return nil, fmt.Errorf("decode role mappings: %w", err)
	}
	return roles, nil
}

func (c *Client) removeRealmRoles(ctx context.Context, sess *adminSession, externalID string, roles []roleRepresentation) error {
	body, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	resp, err := sess.do(ctx, http.MethodDelete, c.realmURL("users", externalID, "role-mappings", "realm"), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: readBody(resp)}
	}
	return nil
}

func (c *Client) addRealmRole(ctx context.Context, sess *adminSession, externalID, name string) error {
	role, err := c.getRoleByName(ctx, sess, name)
	if err != nil {
		return fmt.Errorf("lookup role %q: %w", name, err)
	}
	body, err := json.Marshal([]roleRepresentation{*role})
	if err != nil {
		return err
	}
	resp, err := sess.do(ctx, http.MethodPost, c.realmURL("users", externalID, "role-mappings", "realm"), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: readBody(resp)}
	}
	return nil
}

// realmURL builds an admin API URL under the target realm.
func (c *Client) realmURL(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, url.PathEscape(p))
	}
	return c.cfg.ServerURL + "/admin/realms/" + url.PathEscape(c.cfg.TargetRealm) + "/" + strings.Join(segments, "/")
}

// idFromLocation extracts the provider-assigned id from the creation response's
// Location header (last path segment).
func idFromLocation(resp *http.Response) (string, error) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.New("creation response has no Location header")
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("parse Location %q: %w", loc, err)
	}
	id := path.Base(u.Path)
	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("Location %q has no id segment", loc)
	}
	return id, nil
}

// apiError carries the HTTP status of a failed admin call so callers can map
// specific statuses to typed errors.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("status=%d", e.status)
	}
	return fmt.Sprintf("status=%d body=%s", e.status, e.body)
}

func responseError(resp *http.Response) string {
	return (&apiError{status: resp.StatusCode, body: readBody(resp)}).Error()
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return strings.TrimSpace(string(b))
}

// adminSession is a scoped admin API handle: an access token obtained through the
// password grant plus the HTTP client it was issued on. Close releases it
// unconditionally; leaking provider sessions was an observed risk in earlier
// revisions of this logic.
type adminSession struct {
	http         *http.Client
	accessToken  string
	refreshToken string
	logoutURL    string
	clientID     string
}

// newAdminSession authenticates the admin service account against the admin realm
// and returns a session scoped to the caller's operation.
func (c *Client) newAdminSession(ctx context.Context) (*adminSession, error) {
	httpClient := &http.Client{Timeout: c.cfg.Timeout}
	conf := &oauth2.Config{
		ClientID: c.cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL: c.cfg.ServerURL + "/realms/" + url.PathEscape(c.cfg.AdminRealm) + "/protocol/openid-connect/token",
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := conf.PasswordCredentialsToken(ctx, c.cfg.AdminUsername, c.cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	return &adminSession{
		http:         httpClient,
		accessToken:  tok.AccessToken,
		refreshToken: tok.RefreshToken,
		logoutURL:    c.cfg.ServerURL + "/realms/" + url.PathEscape(c.cfg.AdminRealm) + "/protocol/openid-connect/logout",
		clientID:     c.cfg.ClientID,
	}, nil
}

// do sends one authenticated admin request. Bodies are JSON.
func (s *adminSession) do(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.http.Do(req)
}

// Close ends the admin session: best-effort server-side logout of the refresh
// token, then connection teardown. Errors are ignored; Close must be safe on all
// exit paths.
func (s *adminSession) Close() {
	if s.refreshToken != "" {
		form := url.Values{
			"client_id":     {s.clientID},
			"refresh_token": {s.refreshToken},
		}
		req, err := http.NewRequest(http.MethodPost, s.logoutURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if resp, err := s.http.Do(req); err == nil {
				_ = resp.Body.Close()
			}
		}
	}
	s.http.CloseIdleConnections()
}
