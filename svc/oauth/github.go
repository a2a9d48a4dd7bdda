package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubConfig holds configuration for the GitHub OAuth provider.
type GitHubConfig struct {
	ClientID     string        `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user"`
	StateTTL     time.Duration `env:"GITHUB_OAUTH_STATE_TTL" envDefault:"10m"`
}

const githubUserURL = "https://api.github.com/user"

// GitHubExchanger is the GitHub Provider.
type GitHubExchanger struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

var _ Provider = (*GitHubExchanger)(nil)

// NewGitHubExchanger creates a GitHub provider from cfg.
func NewGitHubExchanger(cfg GitHubConfig) *GitHubExchanger {
	return &GitHubExchanger{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL builds the GitHub authorize URL. The callback URL carries the
// action so the callback handler can route it.
func (g *GitHubExchanger) AuthCodeURL(state string, action Action) string {
	conf := *g.conf
	conf.RedirectURL = withQuery(g.conf.RedirectURL, "action", action.String())
	return conf.AuthCodeURL(state)
}

// Exchange trades code for an access token and reads the GitHub account it belongs to.
func (g *GitHubExchanger) Exchange(ctx context.Context, code string) (ProviderIdentity, error) {
	// GitHub accepts a token request without redirect_uri, which avoids
	// matching the per-action callback URL.
	conf := *g.conf
	conf.RedirectURL = ""

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return ProviderIdentity{}, fmt.Errorf("%w: %w", ErrIncorrectCode, err)
	}

	u, err := g.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return ProviderIdentity{}, errors.Join(ErrProviderFailure, fmt.Errorf("fetch github user: %w", err))
	}
	if u.ID == 0 {
		return ProviderIdentity{}, fmt.Errorf("%w: github user without id", ErrProviderFailure)
	}
	return ProviderIdentity{AccountID: u.ID, Username: u.Login}, nil
}

func (g *GitHubExchanger) fetchUser(ctx context.Context, accessToken string) (*ghUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubUserURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	var user ghUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ghUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
