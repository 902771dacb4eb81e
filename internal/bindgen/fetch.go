package bindgen

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"

	"github.com/ktbind-build/ktbind/internal/cache"
	"github.com/ktbind-build/ktbind/internal/msg"
)

var sourceShortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

var errIllegalSource = errors.New("empty or illegal component source")

// isRemoteSource reports whether a manifest component entry names a remote
// source (git URL or forge shortcut) rather than a local metadata path.
func isRemoteSource(source string) bool {
	if strings.HasPrefix(source, gitPrefix) {
		return true
	}
	for shortcut := range sourceShortcuts {
		if strings.HasPrefix(source, shortcut) {
			return true
		}
	}
	return isURL(source)
}

// fetchComponent ensures a remote component source is present in the user
// cache and returns its local directory. Already-fetched sources are reused.
func fetchComponent(source string) (string, error) {
	if source == "" {
		return "", errIllegalSource
	}

	baseDir, err := cache.DefaultDir()
	if err != nil {
		return "", err
	}
	c, err := cache.Load(baseDir)
	if err != nil {
		return "", err
	}

	if dir, ok := c.Dir(source); ok {
		return dir, nil
	}

	rel := sanitizeSource(source)
	dest := filepath.Join(baseDir, rel)

	remote := source
	if strings.HasPrefix(source, gitPrefix) {
		remote = source[len(gitPrefix):]
	} else {
		for shortcut, base := range sourceShortcuts {
			if strings.HasPrefix(source, shortcut) {
				remote = base + source[len(shortcut):]
				break
			}
		}
	}

	msg.Step("Fetching", "%s", source)
	if _, err := cloneGitRepo(remote, dest); err != nil {
		return "", fmt.Errorf("failed to fetch component %q: %w", source, err)
	}

	c.Set(source, rel)
	if err := c.Save(); err != nil {
		msg.Warn("could not update component cache index: %v", err)
	}
	return dest, nil
}

func isURL(maybeURL string) bool {
	u, err := url.Parse(maybeURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

var sourceSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeSource turns a source URL into a stable cache directory name.
func sanitizeSource(source string) string {
	return strings.Trim(sourceSanitizer.ReplaceAllString(source, "-"), "-")
}

type gitURL struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// someone/something@master#0.1.0
// someone/something@feature-branch#12345abc
// someone/something#12345abc
func parseGitURL(rawURL string) (res gitURL) {
	parts := strings.SplitN(rawURL, "#", 2)
	baseURL := parts[0]
	if len(parts) == 2 {
		res.commitOrTag = parts[1]
	}

	parts = strings.SplitN(baseURL, "@", 2)
	res.cleanURL = parts[0]
	if len(parts) == 2 {
		res.branch = parts[1]
	}

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}

	return
}

// cloneGitRepo clones a Git remote into the specified directory
func cloneGitRepo(url, toWhere string) (string, error) {
	parsedURL := parseGitURL(url)

	progress := msg.NewProgressBar(0, 4, os.Stdout)
	defer progress.Finish()

	cloneOptions := &git.CloneOptions{
		URL:               parsedURL.cleanURL,
		Progress:          progress,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}

	if parsedURL.commitOrTag == "" {
		cloneOptions.Depth = 1 // we can do a shallow clone of the latest commit
	}

	if parsedURL.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(parsedURL.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := git.PlainClone(toWhere, cloneOptions)
	if err != nil {
		return toWhere, err
	}

	if parsedURL.commitOrTag != "" {
		w, err := repo.Worktree()
		if err != nil {
			return toWhere, fmt.Errorf("could not get worktree: %w", err)
		}

		revision := parsedURL.commitOrTag
		hash, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return toWhere, fmt.Errorf("could not resolve revision `%s`: %w", revision, err)
		}

		err = w.Checkout(&git.CheckoutOptions{
			Hash:  *hash,
			Force: true,
		})
		if err != nil {
			return toWhere, fmt.Errorf("failed to checkout `%s`: %w", revision, err)
		}
	}

	return toWhere, nil
}
