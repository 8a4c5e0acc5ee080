package types

// CredentialMethod describes how a credential context was resolved
type CredentialMethod string

const (
	CredentialNone        CredentialMethod = "none"
	CredentialStaticKeys  CredentialMethod = "static-keys"
	CredentialEnvironment CredentialMethod = "environment"
	CredentialProfile     CredentialMethod = "profile"
	CredentialSharedFile  CredentialMethod = "shared-credentials-file"
)

// Credentials is the resolved credential context. Either the key pair or
// Profile is set, never both. The zero value means "use SDK defaults".
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string // set for temporary keys
	Profile         string
	Method          CredentialMethod
}

// HasKeys returns true if direct access keys are set
func (c Credentials) HasKeys() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// IsZero returns true if no credential method was resolved
func (c Credentials) IsZero() bool {
	return !c.HasKeys() && c.Profile == ""
}

// String describes the credential context without exposing secrets
func (c Credentials) String() string {
	switch {
	case c.HasKeys():
		return string(c.Method) + " (" + maskKey(c.AccessKeyID) + ")"
	case c.Profile != "":
		return string(c.Method) + " (profile " + c.Profile + ")"
	default:
		return string(CredentialNone)
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
