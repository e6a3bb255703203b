package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"boards-backend/internal/config"

	"go.uber.org/zap"
)

// ErrUnauthenticated is returned when the identity service rejects the
// caller's token on the profile lookup.
var ErrUnauthenticated = errors.New("user is not authenticated")

// LookupError wraps a failed body or member lookup. Transport failures and
// malformed payloads are treated identically.
type LookupError struct {
	What string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("error fetching %s: %v", e.What, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

type Member struct {
	ID        int64        `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Bodies    []MemberBody `json:"bodies"`
}

type MemberBody struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Permission is a general grant from GET /my_permissions.
type Permission struct {
	Combined string `json:"combined"`
}

// BodyPermission is an entry from the scoped POST /my_permissions query,
// naming a body in which the caller holds the requested grant.
type BodyPermission struct {
	BodyID int64 `json:"body_id"`
}

type Body struct {
	BodyID   int64  `json:"body_id"`
	BodyName string `json:"body_name"`
}

type User struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.SugaredLogger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.CoreBaseURL(),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Sugar(),
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body interface{}) (*envelope, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return nil, err
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Auth-Token", token)
	req.Header.Set("X-Service", "boards")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("malformed response from core: %w", err)
	}

	return &env, nil
}

// GetMyProfile resolves the caller's profile. Every failure mode, transport
// error, non-object payload or an unsuccessful envelope, means the token did
// not authenticate and surfaces as ErrUnauthenticated.
func (c *Client) GetMyProfile(ctx context.Context, token string) (*Member, error) {
	env, err := c.do(ctx, http.MethodGet, "/members/me", token, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !env.Success {
		return nil, ErrUnauthenticated
	}

	var member Member
	if err := json.Unmarshal(env.Data, &member); err != nil {
		return nil, fmt.Errorf("%w: malformed profile: %v", ErrUnauthenticated, err)
	}

	return &member, nil
}

// GetMyPermissions fetches the caller's general permission grants.
func (c *Client) GetMyPermissions(ctx context.Context, token string) ([]Permission, error) {
	env, err := c.do(ctx, http.MethodGet, "/my_permissions", token, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("error fetching permissions: %s", env.Message)
	}

	var permissions []Permission
	if err := json.Unmarshal(env.Data, &permissions); err != nil {
		return nil, fmt.Errorf("malformed permissions response: %w", err)
	}

	return permissions, nil
}

// GetBoardManagePermissions fetches the list of bodies where the caller holds
// the manage_network:boards grant. An unsuccessful or malformed envelope is
// tolerated and read as "no scoped grants"; only transport failures propagate.
func (c *Client) GetBoardManagePermissions(ctx context.Context, token string) ([]BodyPermission, error) {
	env, err := c.do(ctx, http.MethodPost, "/my_permissions", token, map[string]string{
		"action": "manage_network",
		"object": "boards",
	})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		c.logger.Debugw("Scoped permission lookup unsuccessful", "message", env.Message)
		return nil, nil
	}

	var permissions []BodyPermission
	if err := json.Unmarshal(env.Data, &permissions); err != nil {
		return nil, nil
	}

	return permissions, nil
}

// FetchBody resolves a body id into its display name.
func (c *Client) FetchBody(ctx context.Context, bodyID int64, token string) (*Body, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bodies/%d", bodyID), token, nil)
	if err != nil {
		return nil, &LookupError{What: "body", Err: err}
	}
	if !env.Success {
		return nil, &LookupError{What: "body", Err: fmt.Errorf("unsuccessful response: %s", env.Message)}
	}

	var data struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &LookupError{What: "body", Err: err}
	}

	return &Body{BodyID: data.ID, BodyName: data.Name}, nil
}

// FetchUser resolves a member id into display names.
func (c *Client) FetchUser(ctx context.Context, userID int64, token string) (*User, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%d", userID), token, nil)
	if err != nil {
		return nil, &LookupError{What: "user", Err: err}
	}
	if !env.Success {
		return nil, &LookupError{What: "user", Err: fmt.Errorf("unsuccessful response: %s", env.Message)}
	}

	var data struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &LookupError{What: "user", Err: err}
	}

	return &User{
		UserID:    data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Name:      data.FirstName + " " + data.LastName,
	}, nil
}

// Ping probes the identity service for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
