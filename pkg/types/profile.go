package types

// Where an AWS profile was found
const (
	ProfileSourceCredentials = "credentials"
	ProfileSourceConfig      = "config"
)

// AWSProfile is a named AWS profile from the shared credentials or config
// file. It is distinct from the config profile that keys the region store.
type AWSProfile struct {
	Name   string
	Region string // region key of the config file, may be empty
	Source string
}
