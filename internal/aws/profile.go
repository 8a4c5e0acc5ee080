package aws

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/vietdv277/cirrus/internal/credentials"
	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

// ListProfiles reads AWS profiles from the shared credentials and config
// files. Unreadable files are skipped.
func ListProfiles() ([]pkgtypes.AWSProfile, error) {
	return listProfiles(credentials.SharedCredentialsPath(os.Getenv), sharedConfigPath())
}

// ValidateProfile checks if a profile exists
func ValidateProfile(name string) bool {
	profiles, err := ListProfiles()
	if err != nil {
		return false
	}

	for _, p := range profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

func listProfiles(credPath, configPath string) ([]pkgtypes.AWSProfile, error) {
	profileMap := make(map[string]*pkgtypes.AWSProfile)

	// Parse credentials file
	if names, err := credentials.ReadProfiles(credPath); err == nil {
		for _, name := range names {
			profileMap[name] = &pkgtypes.AWSProfile{Name: name, Source: pkgtypes.ProfileSourceCredentials}
		}
	}

	// Parse config file (may add region info or new profiles)
	if file, err := ini.Load(configPath); err == nil {
		for _, section := range file.Sections() {
			name, ok := configProfileName(section.Name())
			if !ok {
				continue
			}
			region := section.Key("region").String()

			if existing, ok := profileMap[name]; ok {
				if existing.Region == "" {
					existing.Region = region
				}
				continue
			}
			// New profile from config (SSO profiles, etc.)
			profileMap[name] = &pkgtypes.AWSProfile{Name: name, Region: region, Source: pkgtypes.ProfileSourceConfig}
		}
	}

	// Convert to sorted slice
	profiles := make([]pkgtypes.AWSProfile, 0, len(profileMap))
	for _, p := range profileMap {
		profiles = append(profiles, *p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		// Put "default" first, then sort alphabetically
		if profiles[i].Name == "default" {
			return true
		}
		if profiles[j].Name == "default" {
			return false
		}
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

// configProfileName maps a config file section to a profile name:
// "default" and "profile <name>" are profiles, anything else is not.
func configProfileName(section string) (string, bool) {
	if section == "default" {
		return section, true
	}
	if name, ok := strings.CutPrefix(section, "profile "); ok {
		name = strings.TrimSpace(name)
		return name, name != ""
	}
	return "", false
}

// sharedConfigPath returns the location of ~/.aws/config
func sharedConfigPath() string {
	if path := os.Getenv("AWS_CONFIG_FILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", "config")
}
