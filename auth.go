package vantage

import (
	"bytes"
	"context"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/internal/requests"
	"github.com/vantage-bi/vantage-go/internal/responses"
)

// SignIn establishes a session with a username and password.
// contentURL selects the site to sign in to; the empty string selects the
// default site. The session token is applied to all subsequent requests.
func (c *Client) SignIn(ctx context.Context, username, password, contentURL string) error {
	if username == "" || password == "" {
		return errors.NewError("signIn", errors.ErrInvalidInput).
			WithMessage("username and password cannot be empty")
	}

	body, err := requests.SignIn(username, password, contentURL)
	if err != nil {
		return errors.NewError("signIn", err)
	}
	return c.signIn(ctx, body)
}

// SignInWithToken establishes a session with a personal access token.
func (c *Client) SignInWithToken(ctx context.Context, tokenName, tokenSecret, contentURL string) error {
	if tokenName == "" || tokenSecret == "" {
		return errors.NewError("signIn", errors.ErrInvalidInput).
			WithMessage("token name and secret cannot be empty")
	}

	body, err := requests.SignInWithToken(tokenName, tokenSecret, contentURL)
	if err != nil {
		return errors.NewError("signIn", err)
	}
	return c.signIn(ctx, body)
}

func (c *Client) signIn(ctx context.Context, body []byte) error {
	resp, err := c.api.Post(ctx, c.apiURL("auth/signin"), nil, bytes.NewReader(body), requests.XMLContentType)
	if err != nil {
		return errors.NewError("signIn", err)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return errors.NewError("signIn", err)
	}

	creds, err := responses.ParseCredentials(resp.Body)
	if err != nil {
		return errors.NewError("signIn", err)
	}

	c.UseSession(creds.Token, creds.SiteID)
	c.logger.Info("signed in", "site_id", creds.SiteID)
	return nil
}

// SignOut invalidates the current session on the server and clears it from
// the client. Signing out without a session is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	if !c.SignedIn() {
		return nil
	}

	resp, err := c.api.Post(ctx, c.apiURL("auth/signout"), nil, nil, "")
	if err != nil {
		return errors.NewError("signOut", err)
	}
	if err := responses.CheckError(resp.StatusCode, resp.Body); err != nil {
		return errors.NewError("signOut", err)
	}

	c.UseSession("", "")
	c.logger.Info("signed out")
	return nil
}
