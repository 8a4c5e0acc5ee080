// Package credentials decides which AWS credentials the tool runs with.
package credentials

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/vietdv277/cirrus/pkg/provider"
	"github.com/vietdv277/cirrus/pkg/types"
)

// Environment variables consulted for direct keys
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"
	EnvCredentialsFile = "AWS_SHARED_CREDENTIALS_FILE"
)

// Settings carries the credential fields of the active configuration
type Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
}

// Resolver applies the credential precedence chain
type Resolver struct {
	getenv          func(string) string
	credentialsFile string
	prompter        provider.Prompter
	logger          *zap.Logger
}

// Option allows customizing the Resolver
type Option func(*Resolver)

// WithEnv sets the environment lookup function
func WithEnv(getenv func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// WithCredentialsFile overrides the shared credentials file location
func WithCredentialsFile(path string) Option {
	return func(r *Resolver) {
		r.credentialsFile = path
	}
}

// WithPrompter sets the prompter used when several profiles are available
func WithPrompter(p provider.Prompter) Option {
	return func(r *Resolver) {
		r.prompter = p
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver reading the process environment
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		getenv: os.Getenv,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.credentialsFile == "" {
		r.credentialsFile = SharedCredentialsPath(r.getenv)
	}

	return r
}

// SharedCredentialsPath returns the shared credentials file location
func SharedCredentialsPath(getenv func(string) string) string {
	if path := getenv(EnvCredentialsFile); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", "credentials")
}

// Resolve returns the first credential source that applies:
//  1. access key and secret in the configuration
//  2. access key and secret in the environment, with AWS_SESSION_TOKEN
//  3. a named profile in the configuration
//  4. the shared credentials file, when it holds exactly one profile or
//     the user picks one of several
//
// A zero Credentials (method none) leaves the SDK default chain in charge.
func (r *Resolver) Resolve(s Settings) types.Credentials {
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		return r.resolved(types.Credentials{
			AccessKeyID:     s.AccessKeyID,
			SecretAccessKey: s.SecretAccessKey,
			SessionToken:    s.SessionToken,
			Method:          types.CredentialStaticKeys,
		})
	}

	if id, secret := r.getenv(EnvAccessKeyID), r.getenv(EnvSecretAccessKey); id != "" && secret != "" {
		return r.resolved(types.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    r.getenv(EnvSessionToken),
			Method:          types.CredentialEnvironment,
		})
	}

	if s.Profile != "" {
		return r.resolved(types.Credentials{
			Profile: s.Profile,
			Method:  types.CredentialProfile,
		})
	}

	profile, err := r.profileFromFile()
	if err != nil {
		// Unreadable or malformed files are not fatal; later API calls
		// report their own authentication errors.
		r.logger.Debug("shared credentials file ignored",
			zap.String("path", r.credentialsFile),
			zap.Error(err),
		)
		return r.resolved(types.Credentials{Method: types.CredentialNone})
	}
	if profile == "" {
		return r.resolved(types.Credentials{Method: types.CredentialNone})
	}

	return r.resolved(types.Credentials{
		Profile: profile,
		Method:  types.CredentialSharedFile,
	})
}

func (r *Resolver) resolved(c types.Credentials) types.Credentials {
	r.logger.Debug("credentials resolved", zap.Stringer("credentials", c))
	return c
}

// profileFromFile selects a profile from the shared credentials file. An
// absent file or one without profiles yields "".
func (r *Resolver) profileFromFile() (string, error) {
	if r.credentialsFile == "" {
		return "", nil
	}
	if _, err := os.Stat(r.credentialsFile); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	profiles, err := ReadProfiles(r.credentialsFile)
	if err != nil {
		return "", err
	}

	switch len(profiles) {
	case 0:
		return "", nil
	case 1:
		return profiles[0], nil
	}

	if r.prompter == nil {
		return "", errors.New("several profiles available and no prompter to choose one")
	}

	choices := make([]provider.Choice, 0, len(profiles))
	for _, p := range profiles {
		choices = append(choices, provider.Choice{Title: p, Value: p})
	}

	selected, err := r.prompter.SelectOne("Select an AWS profile:", choices)
	if err != nil {
		return "", err
	}
	return selected, nil
}

// ReadProfiles returns the profile names of an INI credentials file in
// file order.
func ReadProfiles(path string) ([]string, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	var profiles []string
	for _, section := range file.Sections() {
		// Keys above the first header land in ini's implicit section
		if section.Name() == ini.DefaultSection {
			continue
		}
		profiles = append(profiles, section.Name())
	}

	return profiles, nil
}
