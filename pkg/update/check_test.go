package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestUpgradeCommandForMethod(t *testing.T) {
	tests := []struct {
		method   InstallMethod
		expected string
	}{
		{InstallMethodBrew, "brew upgrade accountpro/tap/accountpro"},
		{InstallMethodNPM, "npm i -g @accountpro/cli@latest"},
		{InstallMethodPNPM, "pnpm add -g @accountpro/cli@latest"},
		{InstallMethodBun, "bun add -g @accountpro/cli@latest"},
		{InstallMethodUnknown, "brew upgrade accountpro/tap/accountpro"},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestUpgradeCommandForMethod(tt.method))
		})
	}
}

func TestPathMatchesNPM(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.npm-global/bin/accountpro", true},
		{"/home/user/.npm/bin/accountpro", true},
		{"/usr/local/lib/node_modules/.bin/accountpro", true},
		{"/home/user/.local/share/npm/bin/accountpro", true},
		{"/opt/homebrew/bin/accountpro", false},
		{"/home/user/.bun/bin/accountpro", false},
		{"/home/user/.local/share/pnpm/accountpro", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesNPM(tt.path))
		})
	}
}

func TestPathMatchesBun(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.bun/bin/accountpro", true},
		{"/home/user/.npm-global/bin/accountpro", false},
		{"/opt/homebrew/bin/accountpro", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesBun(tt.path))
		})
	}
}

func TestPathMatchesPNPM(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.local/share/pnpm/accountpro", true},
		{"/home/user/.pnpm/global/accountpro", true},
		{"/home/user/.npm-global/bin/accountpro", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesPNPM(tt.path))
		})
	}
}

func TestPathMatchesHomebrew(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/opt/homebrew/bin/accountpro", true},
		{"/usr/local/Cellar/accountpro/1.0/bin/accountpro", true},
		{"/home/linuxbrew/.linuxbrew/Cellar/accountpro/1.0/bin/accountpro", true},
		{"/home/user/.npm-global/bin/accountpro", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesHomebrew(tt.path))
		})
	}
}

func TestInstallMethodRulesPathPrecedence(t *testing.T) {
	rules := installMethodRules()

	detect := func(path string) InstallMethod {
		for _, r := range rules {
			if r.check(path) {
				return r.method
			}
		}
		return InstallMethodUnknown
	}

	assert.Equal(t, InstallMethodNPM, detect("/home/user/.npm-global/bin/accountpro"))
	assert.Equal(t, InstallMethodBun, detect("/home/user/.bun/bin/accountpro"))
	assert.Equal(t, InstallMethodBrew, detect("/opt/homebrew/bin/accountpro"))
	assert.Equal(t, InstallMethodPNPM, detect("/home/user/.local/share/pnpm/accountpro"))
	assert.Equal(t, InstallMethodUnknown, detect("/usr/local/bin/accountpro"))
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		current string
		latest  string
		newer   bool
	}{
		{"v1.0.0", "v1.0.1", true},
		{"1.2.0", "v1.2.0", false},
		{"v2.0.0", "v1.9.9", false},
		{"0.9.0", "1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			got, err := IsNewerVersion(tt.current, tt.latest)
			require.NoError(t, err)
			assert.Equal(t, tt.newer, got)
		})
	}

	_, err := IsNewerVersion("dev", "v1.0.0")
	assert.Error(t, err)
}
