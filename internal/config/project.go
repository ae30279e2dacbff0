package config

// ProjectConfig holds per-root configuration for a single project.
// This allows customizing exclusions and rule selection per codebase.
type ProjectConfig struct {
	// ExcludedDirs are directory names skipped during discovery,
	// in addition to the built-in defaults.
	ExcludedDirs []string `yaml:"excludedDirs,omitempty"`

	// ExcludedFiles are file names excluded from analysis,
	// in addition to the built-in defaults.
	ExcludedFiles []string `yaml:"excludedFiles,omitempty"`

	// ProtectedFiles are file names the fix command never rewrites.
	ProtectedFiles []string `yaml:"protectedFiles,omitempty"`

	// Rules restricts analysis to the named rule identifiers.
	// Empty means all rules.
	Rules []string `yaml:"rules,omitempty"`

	// LayerRoots maps layer names (App, Core, Features) to their top-level
	// directory names, used by the dependency-graph layer checks.
	LayerRoots map[string]string `yaml:"layerRoots,omitempty"`

	// Managers lists the singleton manager type names tracked by the
	// dependency-graph extraction. Empty means autodetect *Manager types.
	Managers []string `yaml:"managers,omitempty"`

	// SpacingTolerance snaps off-scale spacing literals within this
	// distance onto the 8-point scale during fix. Zero means exact only.
	SpacingTolerance int `yaml:"spacingTolerance,omitempty"`
}

// ProjectConfig returns the merged per-root configuration, falling back
// to an empty ProjectConfig when no configuration file was loaded.
func (c *Config) ProjectConfig(root string) ProjectConfig {
	if c.Project == nil {
		return ProjectConfig{}
	}
	return c.Project.GetProjectConfig(root)
}

// File represents the structure of the .swiftaudit configuration file.
type File struct {
	// Projects maps root paths to their project-specific configurations.
	// Keys are matched against the scan target paths.
	Projects map[string]ProjectConfig `yaml:"projects,omitempty"`

	// Defaults contains configuration applied to all roots unless
	// overridden in the project-specific section.
	Defaults ProjectConfig `yaml:"defaults,omitempty"`
}

// GetProjectConfig returns the configuration for a specific root path.
// It merges the project-specific configuration over the defaults.
func (cf *File) GetProjectConfig(root string) ProjectConfig {
	result := cf.Defaults

	if pc, ok := cf.Projects[root]; ok {
		if len(pc.ExcludedDirs) > 0 {
			result.ExcludedDirs = append(result.ExcludedDirs, pc.ExcludedDirs...)
		}
		if len(pc.ExcludedFiles) > 0 {
			result.ExcludedFiles = append(result.ExcludedFiles, pc.ExcludedFiles...)
		}
		if len(pc.ProtectedFiles) > 0 {
			result.ProtectedFiles = append(result.ProtectedFiles, pc.ProtectedFiles...)
		}
		if len(pc.Rules) > 0 {
			result.Rules = pc.Rules
		}
		if len(pc.LayerRoots) > 0 {
			merged := make(map[string]string, len(result.LayerRoots)+len(pc.LayerRoots))
			for k, v := range result.LayerRoots {
				merged[k] = v
			}
			for k, v := range pc.LayerRoots {
				merged[k] = v
			}
			result.LayerRoots = merged
		}
		if len(pc.Managers) > 0 {
			result.Managers = pc.Managers
		}
		if pc.SpacingTolerance > 0 {
			result.SpacingTolerance = pc.SpacingTolerance
		}
	}

	return result
}
