// Package bootstrap fetches the deployment assets a fresh install needs
// before handing off to the provisioning engine.
package bootstrap

import (
	"fmt"
	"strings"
)

// Profile names a deployment asset set.
type Profile string

const (
	// ProfileCore installs the minimum the platform needs.
	ProfileCore Profile = "core"
	// ProfileFull adds the analytics stack on top of core.
	ProfileFull Profile = "full"
)

var coreFiles = []string{
	"docker-compose.yml",
	"config/gateway.tmpl.yml",
	"config/Caddyfile",
}

// ParseProfile validates an operator-supplied profile name.
func ParseProfile(name string) (Profile, error) {
	switch Profile(strings.ToLower(name)) {
	case ProfileCore:
		return ProfileCore, nil
	case ProfileFull:
		return ProfileFull, nil
	default:
		return "", fmt.Errorf("unknown profile %q (valid profiles: core, full)", name)
	}
}

// Files lists the asset files the profile downloads.
func (p Profile) Files() []string {
	files := append([]string(nil), coreFiles...)
	if p == ProfileFull {
		files = append(files, "docker-compose.analytics.yml")
	}
	return files
}

// EnablesAnalytics reports whether the profile pre-seeds the analytics toggle
// for the provisioning run.
func (p Profile) EnablesAnalytics() bool {
	return p == ProfileFull
}
