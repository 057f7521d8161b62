package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Output: "table", Report: "meta.xlsx"},
			"ci":      {Output: "json"},
		},
	}

	tests := []struct {
		name       string
		override   string
		wantOutput string
		wantErr    string
	}{
		{name: "uses current profile", wantOutput: "table"},
		{name: "override to ci", override: "ci", wantOutput: "json"},
		{name: "nonexistent override", override: "nonexistent", wantErr: `profile "nonexistent" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.ActiveProfile(tt.override)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, p.Output)
		})
	}

	missing := &UserConfig{CurrentProfile: "gone", Profiles: map[string]Profile{}}
	p, err := missing.ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)
}

func TestLoadSaveUserConfig(t *testing.T) {
	home := isolateHome(t)

	seed := uint64(9)
	cfg := &UserConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {Output: "json", Report: "/tmp/r.xlsx", Seed: &seed},
		},
	}
	require.NoError(t, SaveUserConfig(cfg))

	_, err := os.Stat(filepath.Join(home, ".parquet-meta", "config.yaml"))
	require.NoError(t, err)

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.CurrentProfile)
	require.Contains(t, loaded.Profiles, "test")
	assert.Equal(t, "/tmp/r.xlsx", loaded.Profiles["test"].Report)
	require.NotNil(t, loaded.Profiles["test"].Seed)
	assert.Equal(t, uint64(9), *loaded.Profiles["test"].Seed)
}

func TestLoadUserConfig_NotFound(t *testing.T) {
	isolateHome(t)
	_, err := LoadUserConfig()
	require.Error(t, err)
}

func TestLoadUserConfig_Invalid(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".parquet-meta"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".parquet-meta", "config.yaml"), []byte("profiles: [unclosed"), 0o600))

	_, err := LoadUserConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
