package adapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIURL = "https://api.github.com"

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type githubProvider struct {
	oauth *oauth2.Config
	api   *utils.HTTPClient
}

// NewGitHubProvider returns the GitHub [OAuthProvider].
func NewGitHubProvider(client config.OAuthClient, redirectURL string) OAuthProvider {
	return newGitHubProvider(&oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Endpoint:     github.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"read:user", "user:email"},
	}, githubAPIURL)
}

func newGitHubProvider(cfg *oauth2.Config, apiURL string) *githubProvider {
	return &githubProvider{
		oauth: cfg,
		api: utils.NewHTTPClient(
			utils.WithBaseURL(apiURL),
		),
	}
}

func (p *githubProvider) Name() models.OAuthProvider { return models.ProviderGitHub }

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *githubProvider) Exchange(ctx context.Context, code string) (models.OAuthProfile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return models.OAuthProfile{}, fmt.Errorf("%w: %w", ErrOAuthExchange, err)
	}

	var user githubUser
	resp, err := p.api.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetHeader("Accept", "application/vnd.github+json").
		SetResult(&user).
		Get("/user")
	if err != nil {
		return models.OAuthProfile{}, fmt.Errorf("github user request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.OAuthProfile{}, fmt.Errorf("github user request: %w", err)
	}

	email := user.Email
	if email == "" {
		if email, err = p.primaryEmail(ctx, token.AccessToken); err != nil {
			return models.OAuthProfile{}, err
		}
	}

	name := user.Name
	if strings.TrimSpace(name) == "" {
		name = user.Login
	}

	return models.OAuthProfile{
		ID:       strconv.FormatInt(user.ID, 10),
		Email:    email,
		Name:     name,
		Image:    user.AvatarURL,
		Provider: models.ProviderGitHub,
	}, nil
}

// primaryEmail returns the verified primary address of a user who hides the
// e-mail on the public profile.
func (p *githubProvider) primaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []githubEmail
	resp, err := p.api.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/vnd.github+json").
		SetResult(&emails).
		Get("/user/emails")
	if err != nil {
		return "", fmt.Errorf("github emails request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", fmt.Errorf("github emails request: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", ErrMissingProfileEmail
}
