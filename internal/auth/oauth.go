package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// Provider is an OAuth identity provider the gate can sign users in with.
type Provider interface {
	// Name is the path segment used in /api/auth/signin/{provider}.
	Name() string
	// AuthURL is where the browser is sent to approve the sign in.
	AuthURL(state string) string
	// Exchange trades the authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// githubUser is the portion of the GitHub /user response we read.
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

const githubAPIURL = "https://api.github.com"

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow. The code-for-token exchange happens server to server using the
// client secret, so the GitHub access token never reaches the browser.
type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
}

// GitHubOption customises a GitHubProvider.
type GitHubOption func(*GitHubProvider)

// WithGitHubEndpoints points the provider at a different OAuth endpoint and
// REST API base URL, e.g. GitHub Enterprise or a local fake.
func WithGitHubEndpoints(endpoint oauth2.Endpoint, apiURL string) GitHubOption {
	return func(p *GitHubProvider) {
		p.config.Endpoint = endpoint
		p.apiURL = apiURL
	}
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// callbackURL must match the "Authorization callback URL" registered with
// the OAuth App exactly, e.g. "http://localhost:8080/api/auth/callback/github".
//
// Scopes:
//   - "read:user": public profile (id, login, avatar)
//   - "user:email": email addresses
func NewGitHubProvider(clientID, clientSecret, callbackURL string, opts ...GitHubOption) *GitHubProvider {
	p := &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiURL: githubAPIURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GitHubProvider) Name() string { return "github" }

// AuthURL returns the GitHub authorization URL. state is echoed back on the
// callback and checked against the oauth_state cookie.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow:
//  1. exchange the code for an access token
//  2. call GET /user with that token
//  3. map the response onto a Profile
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// Client adds "Authorization: Bearer <token>" to every request.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building GitHub /user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var gh githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}
	if gh.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}

	return &Profile{
		ID:    strconv.FormatInt(gh.ID, 10),
		Name:  name,
		Email: gh.Email,
		Image: gh.AvatarURL,
	}, nil
}
