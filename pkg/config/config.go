package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/arbc/pkg/cli"
)

type Feature int

const (
	FeatDCE Feature = iota
	FeatZeroInit
	FeatSwizzle
	FeatCComments
	FeatCount
)

type Warning int

const (
	WarnShadow Warning = iota
	WarnUnpredicatedBranch
	WarnDeadBranch
	WarnUnused
	WarnPedantic
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	StdName    string
}

const DefaultStd = "GLSL"

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		StdName:    DefaultStd,
	}

	features := map[Feature]Info{
		FeatDCE:       {"dce", true, "Drop the untaken branch of an 'if' whose condition is a boolean literal."},
		FeatZeroInit:  {"zero-init", true, "Initialize declarations without an initializer from the zero vector."},
		FeatSwizzle:   {"swizzle", true, "Accept '.x/.y/.z/.w' (and '.r/.g/.b/.a') component selection."},
		FeatCComments: {"c-comments", true, "Recognize C-style '//' line comments."},
	}

	warnings := map[Warning]Info{
		WarnShadow:             {"shadow", false, "Warn when a declaration hides one from an enclosing scope."},
		WarnUnpredicatedBranch: {"unpredicated-branch", true, "Warn when both branches of a non-constant 'if' are emitted unconditionally."},
		WarnDeadBranch:         {"dead-branch", false, "Warn when a branch is removed by dead-code elimination."},
		WarnUnused:             {"unused", false, "Warn about variables that are declared but never read."},
		WarnPedantic:           {"pedantic", false, "Issue all warnings demanded by the strict standard."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// SetAllWarnings toggles every warning except pedantic, which -Wall never implies.
func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		if i == WarnPedantic && enabled {
			continue
		}
		c.SetWarning(i, enabled)
	}
}

func (c *Config) ApplyStd(stdName string) error {
	isPedantic := c.IsWarningEnabled(WarnPedantic)

	type stdSettings struct {
		feature   Feature
		miniValue bool
		glslValue bool
	}

	settings := []stdSettings{
		{FeatSwizzle, false, true},
		{FeatCComments, !isPedantic, true},
		{FeatZeroInit, true, true},
		{FeatDCE, true, true},
	}

	switch stdName {
	case "MiniGLSL":
		for _, s := range settings {
			c.SetFeature(s.feature, s.miniValue)
		}
		if isPedantic {
			c.SetWarning(WarnShadow, true)
			c.SetWarning(WarnUnused, true)
		}
	case "GLSL":
		for _, s := range settings {
			c.SetFeature(s.feature, s.glslValue)
		}
	default:
		return fmt.Errorf("unsupported standard '%s'. Supported: 'MiniGLSL', 'GLSL'", stdName)
	}
	c.StdName = stdName
	return nil
}

// ApplyFlag applies a single -W/-F style flag, e.g. "-Wshadow" or "-Fno-dce".
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}
	if isNo {
		name = strings.TrimPrefix(name, "no-")
	}

	if name == "all" && isWarning {
		c.SetAllWarnings(enable)
		return nil
	}

	if isWarning {
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}
	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}

// SetupFlagGroups registers -W<warning>/-Wno-<warning> and -F<feature>/-Fno-<feature>
// on fs. Entry i of each returned slice corresponds to Warning(i) / Feature(i).
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags = append(warningFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		})
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags = append(featureFlags, cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		})
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable specific features", "feature", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups folds parsed flag-group entries back into the configuration.
// Explicit flags win over the settings picked by ApplyStd.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
