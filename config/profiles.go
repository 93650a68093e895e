package config

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

// Profile names
const (
	ProfileDevelopment = "development"
	ProfileTesting     = "testing"
	ProfileProduction  = "production"
)

// ProfileEnvVar selects the active configuration profile.
const ProfileEnvVar = "CONFIG_TYPE"

//go:embed profiles/*.yaml
var profileFS embed.FS

// profileAliases maps every accepted spelling to its canonical profile name.
// The dotted forms match the class names used by deployment manifests of the
// previous portal.
var profileAliases = map[string]string{
	ProfileDevelopment:         ProfileDevelopment,
	"dev":                      ProfileDevelopment,
	"config.developmentconfig": ProfileDevelopment,

	ProfileTesting:         ProfileTesting,
	"test":                 ProfileTesting,
	"config.testingconfig": ProfileTesting,

	ProfileProduction:         ProfileProduction,
	"prod":                    ProfileProduction,
	"config.productionconfig": ProfileProduction,
}

// Profiles returns the canonical names of the built-in profiles, sorted.
func Profiles() []string {
	seen := make(map[string]struct{}, 3)
	for _, name := range profileAliases {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveProfile maps a profile identifier to its canonical name.
// An empty identifier selects the development profile.
func ResolveProfile(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ProfileDevelopment, nil
	}
	if name, ok := profileAliases[strings.ToLower(id)]; ok {
		return name, nil
	}
	return "", NewInvalidFieldError(ProfileEnvVar, fmt.Sprintf("unknown profile %q", id), Profiles())
}

// profileBytes returns the embedded YAML document for a canonical profile name.
func profileBytes(name string) ([]byte, error) {
	data, err := profileFS.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("profile %s is not embedded: %w", name, err)
	}
	return data, nil
}
