package config

import (
	"sync"
)

// FeatureFlags manages runtime feature toggles.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]bool
}

// Predefined feature flag names.
const (
	// FeatureDiscovery gates the matching request at terminal submission.
	// When off, submission still completes the onboarding (the same
	// degrade-gracefully path a backend failure takes).
	FeatureDiscovery = "discovery"

	// FeatureSchoolSuggestions gates the curated school suggestion list.
	FeatureSchoolSuggestions = "school_suggestions"

	// FeatureArchivedTab gates the archived (declined/expired) portfolio tab.
	FeatureArchivedTab = "archived_tab"
)

// LoadFeatureFlags reads feature toggles from the environment.
func LoadFeatureFlags() *FeatureFlags {
	return &FeatureFlags{
		features: map[string]bool{
			FeatureDiscovery:         getEnvBool("FEATURE_DISCOVERY", true),
			FeatureSchoolSuggestions: getEnvBool("FEATURE_SCHOOL_SUGGESTIONS", true),
			FeatureArchivedTab:       getEnvBool("FEATURE_ARCHIVED_TAB", true),
		},
	}
}

// Enabled reports whether the named feature is on. Unknown features are off.
func (f *FeatureFlags) Enabled(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.features[name]
}

// Set overrides a feature at runtime (used by tests).
func (f *FeatureFlags) Set(name string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.features == nil {
		f.features = make(map[string]bool)
	}
	f.features[name] = enabled
}
