package extractor

import (
	"regexp"

	"github.com/yildizm/mclogsum/internal/common"
)

// Launcher names as reported in the launcher field
const (
	LauncherAmethyst = "Amethyst"
	LauncherPojav    = "PojavLauncher"
	LauncherZalith   = "Zalith"
	LauncherFCL      = "Fold Craft Launcher"
	LauncherHMCLPE   = "HMCL-PE"
	LauncherMojo     = "MojoLauncher"
)

// Signature identifies the launcher that produced a log
type Signature struct {
	Launcher string
	Pattern  *regexp.Regexp
}

// Candidate is one pattern for a field category. A candidate with a
// Launcher only applies to logs of that launcher, or to logs whose
// launcher is unknown. The first capture group supplies the value.
type Candidate struct {
	Pattern  *regexp.Regexp
	Launcher string
}

// Category is a field category with its candidates in priority order
type Category struct {
	Name       string
	Candidates []Candidate
}

// FieldTable lists categories in extraction order
type FieldTable []Category

// Amethyst is a PojavLauncher fork and still carries Pojav package names,
// so it has to be checked first.
var defaultSignatures = []Signature{
	{LauncherAmethyst, regexp.MustCompile(`org\.angelauramc\.amethyst|Amethyst(?:-Android| Launcher)`)},
	{LauncherPojav, regexp.MustCompile(`net\.kdt\.pojavlaunch|PojavLauncher`)},
	{LauncherZalith, regexp.MustCompile(`com\.movtery\.zalithlauncher|Zalith ?Launcher`)},
	{LauncherFCL, regexp.MustCompile(`com\.tungsten\.fcl\b|Fold Craft Launcher|FCL Version:`)},
	{LauncherHMCLPE, regexp.MustCompile(`com\.tungsten\.hmclpe|HMCL-PE`)},
	{LauncherMojo, regexp.MustCompile(`git\.artdeell\.mojo|MojoLauncher`)},
}

func untagged(pattern string) Candidate {
	return Candidate{Pattern: regexp.MustCompile(pattern)}
}

func tagged(launcher, pattern string) Candidate {
	return Candidate{Pattern: regexp.MustCompile(pattern), Launcher: launcher}
}

var defaultTable = FieldTable{
	{common.FieldLauncherVersion, []Candidate{
		untagged(`\[Pre-Init\] Version:[ \t]*([^\r\n]*)`),
		tagged(LauncherPojav, `Info: Launcher version:[ \t]*([^\r\n]*)`),
		tagged(LauncherAmethyst, `Info: Launcher version:[ \t]*([^\r\n]*)`),
		tagged(LauncherMojo, `Info: Launcher version:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `FCL Version:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `HMCL-PE Version:[ \t]*([^\r\n]*)`),
		tagged(LauncherZalith, `Launcher Version:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldArchitecture, []Candidate{
		untagged(`\[Pre-Init\] Arch(?:itecture)?:[ \t]*([^\r\n]*)`),
		untagged(`Info: Architecture:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Architecture:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `Architecture:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldDevice, []Candidate{
		untagged(`\[Pre-Init\] Device:[ \t]*([^\r\n]*)`),
		untagged(`Info: Device model:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Device:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `Device:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldAndroidVersion, []Candidate{
		untagged(`\[Pre-Init\] Android Version:[ \t]*([^\r\n]*)`),
		untagged(`Info: Android version:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Android Version:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `Android Version:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldJavaVersion, []Candidate{
		untagged(`\[JavaLauncher\] JAVA_HOME has been set to[ \t]*([^\r\n]*)`),
		untagged(`Info: Java runtime:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Java Version:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `Java Version:[ \t]*([^\r\n]*)`),
		untagged(`java\.version=([^\s,]*)`),
	}},
	{common.FieldRenderer, []Candidate{
		untagged(`\[JavaLauncher\] RENDERER is set to[ \t]*([^\r\n]*)`),
		untagged(`Info: Renderer:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Renderer:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `Renderer:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldMinecraftVersion, []Candidate{
		// Loader ids put the game version anywhere in the token
		untagged(`Launching[ \t]+Minecraft[ \t]+\S*?\b(1\.\d+(?:\.\d+)?)\b`),
		untagged(`Launching[ \t]+Minecraft[ \t]+([^\s-]*)`),
		untagged(`Info: Selected Minecraft version:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Minecraft Version:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `Minecraft Version:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldCommit, []Candidate{
		untagged(`\[Pre-Init\] Commit:[ \t]*([^\r\n]*)`),
		tagged(LauncherZalith, `Commit:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldCPU, []Candidate{
		untagged(`\[Pre-Init\] CPU:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `CPU:[ \t]*([^\r\n]*)`),
		tagged(LauncherHMCLPE, `CPU:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldLanguage, []Candidate{
		untagged(`\[Pre-Init\] Language:[ \t]*([^\r\n]*)`),
		tagged(LauncherFCL, `Language:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldAPIVersion, []Candidate{
		untagged(`\[Pre-Init\] API Version:[ \t]*([^\r\n]*)`),
		untagged(`Info: API version:[ \t]*([^\r\n]*)`),
	}},
	{common.FieldVersionCode, []Candidate{
		untagged(`\[Pre-Init\] Version Code:[ \t]*([^\r\n]*)`),
		tagged(LauncherZalith, `Version Code:[ \t]*([^\r\n]*)`),
	}},
}

// failedToLoad captures the first bracketed component name right before
// the "failed to load" marker. Thread tags like [main/ERROR] contain a slash
// and never match.
var failedToLoad = regexp.MustCompile(`(?i)\[([^\]/\r\n]+)\][ \t]*failed to load`)

// Signatures returns the launcher signatures in priority order
func Signatures() []Signature {
	out := make([]Signature, len(defaultSignatures))
	copy(out, defaultSignatures)
	return out
}

// DefaultFieldTable returns the built-in field table
func DefaultFieldTable() FieldTable {
	out := make(FieldTable, len(defaultTable))
	copy(out, defaultTable)
	return out
}
