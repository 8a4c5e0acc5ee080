package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/cirrus/internal/config"
	"github.com/vietdv277/cirrus/internal/regions"
	"github.com/vietdv277/cirrus/pkg/provider"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestOperationCommandsRegistered(t *testing.T) {
	for _, name := range []string{"refresh", "start", "stop", "reboot"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
		assert.NotNil(t, c.Flags().Lookup("region"))
		assert.NotNil(t, c.Flags().Lookup("yes"))
	}
}

func TestRegionsAddAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCLI(t, "regions", "add", "eu-west-1", "us-east-1", "--config", path, "--config-profile", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "eu-west-1")

	store := regions.NewStore(path, config.DefaultProfile)
	set, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, regions.Set{"us-east-1", "us-east-2", "us-west-1", "us-west-2", "eu-west-1"}, set)

	_, err = runCLI(t, "regions", "remove", "us-west-1", "--config", path, "--config-profile", "default")
	require.NoError(t, err)

	set, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, regions.Set{"us-east-1", "us-east-2", "us-west-2", "eu-west-1"}, set)

	_, err = runCLI(t, "regions", "remove", "sa-east-1", "--config", path, "--config-profile", "default")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestRegionsListUsesConfigProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	work := "ap-south-1"
	require.NoError(t, config.Save(path, &config.Config{
		Profiles: map[string]*config.ProfileConfig{"work": {Regions: &work}},
	}))

	out, err := runCLI(t, "regions", "--config", path, "--config-profile", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "ap-south-1")
	assert.NotContains(t, out, "us-east-1")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Cirrus CLI")
	assert.Contains(t, out, Version)
}

func TestCredentialSettings_AWSProfileSources(t *testing.T) {
	stored := &config.Config{Profiles: map[string]*config.ProfileConfig{
		"work": {AWSProfile: "prod"},
	}}

	tests := []struct {
		name          string
		configProfile string
		envProfile    string
		want          string
	}{
		{"stored profile wins over AWS_PROFILE", "work", "sso-dev", "prod"},
		{"AWS_PROFILE when nothing is stored", "default", "sso-dev", "sso-dev"},
		{"nothing set", "default", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWS_PROFILE", tt.envProfile)
			e := &env{cfg: stored, configProfile: tt.configProfile}

			assert.Equal(t, tt.want, e.credentialSettings().Profile)
			assert.Equal(t, tt.want, activeAWSProfile(e))
		})
	}
}

func TestCredentialSettings_StoredSessionToken(t *testing.T) {
	e := &env{
		cfg: &config.Config{Profiles: map[string]*config.ProfileConfig{
			"default": {AccessKeyID: "A", SecretAccessKey: "B", SessionToken: "tok"},
		}},
		configProfile: config.DefaultProfile,
	}

	settings := e.credentialSettings()
	assert.Equal(t, "A", settings.AccessKeyID)
	assert.Equal(t, "tok", settings.SessionToken)
}
