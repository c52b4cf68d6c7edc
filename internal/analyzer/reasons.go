package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// solutionMarkers are the translations of Fabric Loader's solution header
var solutionMarkers = []string{
	"A potential solution has been determined:",
	"已确定潜在的解决方案：",
	"已找到一个可能的解决方案：",
	"Eine mögliche Lösung wurde gefunden:",
	"Найдено возможное решение:",
}

var (
	bulletLine = regexp.MustCompile(`^\s*-\s*(.+)$`)
	frameLine  = regexp.MustCompile(`(?m)^[ \t]+at `)
)

const (
	mainThreadMarker = `Exception in thread "main" `
	modCrashMarker   = "Caught exception from "
	mixinMarker      = "Mixin apply for mod "
	duplicateMarker  = "Duplicate key "
	configMarker     = "Failed loading config file "
	accessViolation  = "EXCEPTION_ACCESS_VIOLATION"
)

// fabricSolution collects the bullet block that follows Fabric's solution
// header. The first line that is not a bullet, a blank line included,
// ends the block.
func fabricSolution(log string) (string, bool) {
	start := -1
	for _, marker := range solutionMarkers {
		if idx := strings.Index(log, marker); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		return "", false
	}

	rest := log[start:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}

	var bullets []string
	for _, line := range strings.Split(rest[nl+1:], "\n") {
		line = strings.TrimRight(line, " \t\r")
		if !bulletLine.MatchString(line) {
			break
		}
		bullets = append(bullets, line)
	}
	if len(bullets) == 0 {
		return "", false
	}

	return "Fabric Loader found a problem with the installed mods and suggests:\n" +
		strings.Join(bullets, "\n") +
		"\nApply the suggested changes and launch the game again.", true
}

// mainThreadException returns the exception message thrown on the main
// thread, up to its first stack frame.
func mainThreadException(log string) (string, bool) {
	idx := strings.Index(log, mainThreadMarker)
	if idx < 0 {
		return "", false
	}
	rest := log[idx+len(mainThreadMarker):]
	if loc := frameLine.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	msg := strings.TrimSpace(rest)
	if msg == "" {
		return "", false
	}
	return fmt.Sprintf("The game crashed on the main thread with: %s", msg), true
}

func modCrash(log string) (string, bool) {
	mod, ok := restOfLine(log, modCrashMarker)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The mod %s threw an exception while loading. Update it to a version that matches your game version, or remove it.", mod), true
}

func mixinFailure(log string) (string, bool) {
	mod, ok := firstToken(log, mixinMarker)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Mixin injection for the mod %s failed. It is likely incompatible with another installed mod or with this game version.", mod), true
}

func duplicateKey(log string) (string, bool) {
	key, ok := firstToken(log, duplicateMarker)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Two mods registered the same key %s. Remove one of the conflicting mods or duplicate copies of a mod.", key), true
}

func configFailure(log string) (string, bool) {
	file, ok := firstToken(log, configMarker)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("The config file %s could not be loaded. Delete it so the mod regenerates a default one.", file), true
}

// gpuVendors maps driver module names to the vendor they belong to, in
// lookup order.
var gpuVendors = []struct {
	vendor  string
	modules []string
}{
	{"Intel", []string{"ig9icd", "ig7icd", "ig75icd"}},
	{"AMD", []string{"atio6axx", "atioglxx", "amdxx"}},
	{"NVIDIA", []string{"nvoglv"}},
}

// gpuDriver names the graphics vendor whose driver faulted on an access
// violation.
func gpuDriver(log string) (string, bool) {
	if !strings.Contains(log, accessViolation) {
		return "", false
	}
	lower := strings.ToLower(log)
	for _, v := range gpuVendors {
		for _, m := range v.modules {
			if strings.Contains(lower, m) {
				return fmt.Sprintf("The %s graphics driver crashed (%s). Update the %s driver or switch to a different renderer.", v.vendor, m, v.vendor), true
			}
		}
	}
	return "", false
}

// restOfLine returns the trimmed text between marker and the end of its line
func restOfLine(log, marker string) (string, bool) {
	idx := strings.Index(log, marker)
	if idx < 0 {
		return "", false
	}
	rest := log[idx+len(marker):]
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

// firstToken returns the first whitespace-delimited token after marker on
// the same line
func firstToken(log, marker string) (string, bool) {
	line, ok := restOfLine(log, marker)
	if !ok {
		return "", false
	}
	if f := strings.Fields(line); len(f) > 0 {
		return f[0], true
	}
	return "", false
}
