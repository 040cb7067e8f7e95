package config

// Language is the closed enumeration of hook languages. Only
// the capability predicates matter to the core; individual adapters beyond
// system/script/fail/pygrep/docker/docker_image are out of scope
// and are represented here only so their capability flags can drive
// validation and environment-identity computation.
type Language string

const (
	LangSystem      Language = "system"
	LangScript      Language = "script"
	LangFail        Language = "fail"
	LangPygrep      Language = "pygrep"
	LangDocker      Language = "docker"
	LangDockerImage Language = "docker_image"
	LangPython      Language = "python"
	LangNode        Language = "node"
	LangGo          Language = "golang"
	LangRuby        Language = "ruby"
	LangRust        Language = "rust"
	LangBun         Language = "bun"
	LangLua         Language = "lua"
)

type capabilities struct {
	installEnv      bool
	languageVersion bool
	dependency      bool
}

var languageCapabilities = map[Language]capabilities{
	LangSystem:      {false, false, false},
	LangScript:      {false, false, false},
	LangFail:        {false, false, false},
	LangPygrep:      {true, false, false},
	LangDocker:      {true, false, true},
	LangDockerImage: {false, false, false},
	LangPython:      {true, true, true},
	LangNode:        {true, true, true},
	LangGo:          {true, true, true},
	LangRuby:        {true, true, true},
	LangRust:        {true, true, true},
	LangBun:         {true, true, true},
	LangLua:         {true, true, true},
}

// SupportsInstallEnv reports whether the language materializes a per-hook
// installed environment.
func (l Language) SupportsInstallEnv() bool {
	return languageCapabilities[l].installEnv
}

// SupportsLanguageVersion reports whether language_version may request a
// specific toolchain.
func (l Language) SupportsLanguageVersion() bool {
	return languageCapabilities[l].languageVersion
}

// SupportsDependency reports whether additional_dependencies may be set.
func (l Language) SupportsDependency() bool {
	return languageCapabilities[l].dependency
}

// IsKnown reports whether l is in the closed enumeration.
func (l Language) IsKnown() bool {
	_, ok := languageCapabilities[l]
	return ok
}

// InstallBucket returns the language used for install-concurrency grouping.
func (l Language) InstallBucket() Language {
	if l == LangPygrep {
		return LangPython
	}
	return l
}
