// Package discord talks to the identity provider: the OAuth code exchange,
// the profile fetch, the best-effort guild join, and the order webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// Discord API error code for a user already in the maximum number of
	// guilds; surfaced to the user as "server full".
	errCodeMaxGuilds = 30001
)

// TokenExchangeError is fatal for a login attempt; Detail carries the
// provider's error description when it sent one.
type TokenExchangeError struct {
	Detail string
}

func (e *TokenExchangeError) Error() string {
	return "token exchange failed: " + e.Detail
}

// IdentityFetchError is fatal for a login attempt.
type IdentityFetchError struct {
	Detail string
}

func (e *IdentityFetchError) Error() string {
	return "identity fetch failed: " + e.Detail
}

// JoinResult annotates a login with the outcome of the guild auto-join. Join
// failure never fails the login.
type JoinResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AlreadyMember bool   `json:"alreadyMember"`
}

// Identity matches the provider's /users/@me response.
type Identity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
	Verified      bool   `json:"verified"`
}

type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BotToken     string
	APIBase      string // e.g. https://discord.com/api/v10
	HTTP         *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) base() string {
	return strings.TrimSuffix(c.APIBase, "/")
}

// ExchangeCode trades a single-use authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURI)
	form.Set("scope", "identify email guilds.join")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http().Do(req)
	if err != nil {
		return nil, &TokenExchangeError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var out struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		body, _ := io.ReadAll(resp.Body)
		detail := "invalid authorization code"
		if json.Unmarshal(body, &out) == nil && out.ErrorDescription != "" {
			detail = out.ErrorDescription
		} else if out.Error != "" {
			detail = out.Error
		}
		return nil, &TokenExchangeError{Detail: detail}
	}

	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, &TokenExchangeError{Detail: "malformed token response"}
	}
	if tok.AccessToken == "" {
		return nil, &TokenExchangeError{Detail: "provider returned no access token"}
	}
	return &tok, nil
}

// FetchIdentity loads the profile behind a bearer token.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http().Do(req)
	if err != nil {
		return nil, &IdentityFetchError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var out struct {
			Message string `json:"message"`
		}
		body, _ := io.ReadAll(resp.Body)
		detail := fmt.Sprintf("provider returned %d", resp.StatusCode)
		if json.Unmarshal(body, &out) == nil && out.Message != "" {
			detail = out.Message
		}
		return nil, &IdentityFetchError{Detail: detail}
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, &IdentityFetchError{Detail: "malformed profile response"}
	}
	return &id, nil
}

// JoinGuild adds the user to the guild with the bot credential. It never
// returns an error: every outcome degrades to a JoinResult the caller
// attaches to the login response.
func (c *Client) JoinGuild(ctx context.Context, guildID, userID, accessToken string) JoinResult {
	if guildID == "" || c.BotToken == "" {
		return JoinResult{Success: false, Message: "Server auto-join is not configured"}
	}

	body, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return JoinResult{Success: false, Message: "Could not build join request"}
	}

	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s", c.base(), guildID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return JoinResult{Success: false, Message: "Could not build join request"}
	}
	req.Header.Set("Authorization", "Bot "+c.BotToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http().Do(req)
	if err != nil {
		return JoinResult{Success: false, Message: "Could not reach Discord to add you to the server"}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return JoinResult{Success: true, Message: "Added to the Discord server"}
	case http.StatusNoContent:
		return JoinResult{Success: true, Message: "Already a member of the Discord server", AlreadyMember: true}
	}

	var out struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)

	if out.Code == errCodeMaxGuilds {
		return JoinResult{Success: false, Message: "The Discord server is full, please join with the invite link"}
	}
	msg := "Could not add you to the Discord server"
	if out.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, out.Message)
	}
	return JoinResult{Success: false, Message: msg}
}
