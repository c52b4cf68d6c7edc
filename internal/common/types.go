package common

import (
	"sort"
	"strings"
)

// Field categories extracted from launcher logs
const (
	FieldLauncher         = "launcher"
	FieldLauncherVersion  = "launcher_version"
	FieldArchitecture     = "architecture"
	FieldDevice           = "device"
	FieldAndroidVersion   = "android_version"
	FieldJavaVersion      = "java_version"
	FieldRenderer         = "renderer"
	FieldMinecraftVersion = "minecraft_version"
	FieldCommit           = "commit"
	FieldCPU              = "cpu"
	FieldLanguage         = "language"
	FieldAPIVersion       = "api_version"
	FieldVersionCode      = "version_code"
	FieldKeyword          = "keyword"
)

// FieldOrder is the display order of field categories
var FieldOrder = []string{
	FieldLauncher,
	FieldLauncherVersion,
	FieldMinecraftVersion,
	FieldJavaVersion,
	FieldRenderer,
	FieldDevice,
	FieldAndroidVersion,
	FieldAPIVersion,
	FieldArchitecture,
	FieldCPU,
	FieldLanguage,
	FieldCommit,
	FieldVersionCode,
	FieldKeyword,
}

// Fields maps a field category to its extracted, trimmed value
type Fields map[string]string

// Get returns the value of a category and whether it was extracted
func (f Fields) Get(category string) (string, bool) {
	v, ok := f[category]
	return v, ok
}

// Keywords splits the joined keyword field back into its members
func (f Fields) Keywords() []string {
	joined, ok := f[FieldKeyword]
	if !ok || joined == "" {
		return nil
	}
	return strings.Split(joined, ", ")
}

// Ordered returns the extracted categories in display order. Categories
// outside FieldOrder follow, sorted by name.
func (f Fields) Ordered() []string {
	known := make(map[string]bool, len(FieldOrder))
	keys := make([]string, 0, len(f))
	for _, k := range FieldOrder {
		known[k] = true
		if _, ok := f[k]; ok {
			keys = append(keys, k)
		}
	}

	var extra []string
	for k := range f {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)

	return append(keys, extra...)
}

// FieldLabel returns a human readable label for a field category
func FieldLabel(category string) string {
	switch category {
	case FieldLauncher:
		return "Launcher"
	case FieldLauncherVersion:
		return "Launcher Version"
	case FieldArchitecture:
		return "Architecture"
	case FieldDevice:
		return "Device"
	case FieldAndroidVersion:
		return "Android Version"
	case FieldJavaVersion:
		return "Java"
	case FieldRenderer:
		return "Renderer"
	case FieldMinecraftVersion:
		return "Minecraft Version"
	case FieldCommit:
		return "Commit"
	case FieldCPU:
		return "CPU"
	case FieldLanguage:
		return "Language"
	case FieldAPIVersion:
		return "API Version"
	case FieldVersionCode:
		return "Version Code"
	case FieldKeyword:
		return "Keywords"
	default:
		return category
	}
}
