package flags

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
	"github.com/openchaos/chaosboard/pkg/github"
)

const defaultRepo = "skridlevsky/openchaos"

// GitHubFlags holds the repository to track and how to reach the GitHub API.
type GitHubFlags struct {
	Repo              string
	APIURL            string
	Timeout           time.Duration
	AppID             int64
	AppInstallationID int64
}

func NewGitHubFlags() *GitHubFlags {
	repo := os.Getenv("CHAOSBOARD_REPO")
	if repo == "" {
		repo = defaultRepo
	}
	return &GitHubFlags{
		Repo:    repo,
		Timeout: 30 * time.Second,
	}
}

func (f *GitHubFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Repo, "repo", f.Repo, "Repository to rank pull requests for, as owner/name (env CHAOSBOARD_REPO)")
	fs.StringVar(&f.APIURL, "github-api-url", f.APIURL, "GitHub API base URL, leave empty for api.github.com")
	fs.DurationVar(&f.Timeout, "github-timeout", f.Timeout, "Timeout for each GitHub API request")
	fs.Int64Var(&f.AppID, "github-app-id", f.AppID, "GitHub App ID, the private key is read from GITHUB_APP_CLIENT_KEY")
	fs.Int64Var(&f.AppInstallationID, "github-app-installation-id", f.AppInstallationID, "GitHub App installation ID for the tracked repository")
}

func (f *GitHubFlags) Validate() error {
	if _, err := f.GetRepo(); err != nil {
		return err
	}
	if f.Timeout <= 0 {
		return errors.New("--github-timeout must be positive")
	}
	if (f.AppID == 0) != (f.AppInstallationID == 0) {
		return errors.New("--github-app-id and --github-app-installation-id must be set together")
	}
	return nil
}

func (f *GitHubFlags) GetRepo() (github.Repo, error) {
	repo, err := github.ParseRepo(f.Repo)
	if err != nil {
		return github.Repo{}, errors.WithMessage(err, "invalid --repo")
	}
	return repo, nil
}

// GetClient builds a GitHub client whose calls are cached in c for revalidate. A nil cache
// disables caching.
func (f *GitHubFlags) GetClient(ctx context.Context, c cache.Cache, revalidate time.Duration) (*github.Client, error) {
	return github.New(ctx, github.Options{
		APIURL:            f.APIURL,
		Timeout:           f.Timeout,
		AppID:             f.AppID,
		AppInstallationID: f.AppInstallationID,
		Cache:             c,
		Revalidate:        revalidate,
	})
}
