// Package update checks GitHub releases for newer versions of the CLI and
// detects how the running binary was installed.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const latestReleaseURL = "https://api.github.com/repos/accountpro/cli/releases/latest"

// InstallMethod identifies how the CLI binary was installed.
type InstallMethod string

const (
	InstallMethodBrew    InstallMethod = "brew"
	InstallMethodNPM     InstallMethod = "npm"
	InstallMethodPNPM    InstallMethod = "pnpm"
	InstallMethodBun     InstallMethod = "bun"
	InstallMethodUnknown InstallMethod = "unknown"
)

// FetchLatest returns the latest release tag and its release page URL.
func FetchLatest(ctx context.Context) (tag string, releaseURL string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestReleaseURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("release check returned %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", "", err
	}
	if release.TagName == "" {
		return "", "", fmt.Errorf("release has no tag")
	}
	return release.TagName, release.HTMLURL, nil
}

// IsNewerVersion reports whether latest is strictly newer than current.
func IsNewerVersion(current, latest string) (bool, error) {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("parse current version %q: %w", current, err)
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("parse latest version %q: %w", latest, err)
	}
	return lat.GreaterThan(cur), nil
}

type installMethodRule struct {
	method InstallMethod
	check  func(path string) bool
}

// installMethodRules returns the path-matching rules in precedence order.
func installMethodRules() []installMethodRule {
	return []installMethodRule{
		{InstallMethodBrew, pathMatchesHomebrew},
		{InstallMethodPNPM, pathMatchesPNPM},
		{InstallMethodBun, pathMatchesBun},
		{InstallMethodNPM, pathMatchesNPM},
	}
}

// DetectInstallMethod inspects the running binary's path to guess the
// installation method. It returns the method and the binary path.
func DetectInstallMethod() (InstallMethod, string) {
	path, err := os.Executable()
	if err != nil {
		return InstallMethodUnknown, ""
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	for _, r := range installMethodRules() {
		if r.check(path) {
			return r.method, path
		}
	}
	return InstallMethodUnknown, path
}

func pathMatchesHomebrew(path string) bool {
	return strings.Contains(path, "/Cellar/") ||
		strings.Contains(path, "/homebrew/") ||
		strings.Contains(path, "/linuxbrew/")
}

func pathMatchesNPM(path string) bool {
	return strings.Contains(path, "/.npm-global/") ||
		strings.Contains(path, "/.npm/") ||
		strings.Contains(path, "/node_modules/") ||
		strings.Contains(path, "/share/npm/")
}

func pathMatchesPNPM(path string) bool {
	return strings.Contains(path, "/pnpm/") || strings.Contains(path, "/.pnpm/")
}

func pathMatchesBun(path string) bool {
	return strings.Contains(path, "/.bun/")
}

// suggestUpgradeCommandForMethod returns the upgrade command a user should
// run for the given installation method.
func suggestUpgradeCommandForMethod(method InstallMethod) string {
	switch method {
	case InstallMethodNPM:
		return "npm i -g @accountpro/cli@latest"
	case InstallMethodPNPM:
		return "pnpm add -g @accountpro/cli@latest"
	case InstallMethodBun:
		return "bun add -g @accountpro/cli@latest"
	default:
		return "brew upgrade accountpro/tap/accountpro"
	}
}

// SuggestUpgradeCommand returns the upgrade command for the detected
// installation method.
func SuggestUpgradeCommand() string {
	method, _ := DetectInstallMethod()
	return suggestUpgradeCommandForMethod(method)
}
