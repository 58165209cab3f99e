package utils

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Build metadata, injected with -ldflags "-X .../utils.Commit=..." or through SetVersion.
// Commit and BuildDate fall back to the VCS stamp the Go toolchain embeds.
var (
	VersionMajor = "0"
	VersionMinor = "0"
	VersionPatch = "1"
	Branch       = "main"
	Commit       = "dev"
	BuildDate    = "unknown"
	BuildHash    = "unknown"
)

// SetVersion applies "major.minor.patch" and the other build values passed to main.
// Empty arguments keep the current value.
func SetVersion(version, branch, commit, buildDate, buildHash string) {
	if parts := strings.SplitN(version, ".", 3); len(parts) == 3 {
		VersionMajor, VersionMinor, VersionPatch = parts[0], parts[1], parts[2]
	}
	for _, kv := range []struct {
		dst *string
		val string
	}{
		{&Branch, branch},
		{&Commit, commit},
		{&BuildDate, buildDate},
		{&BuildHash, buildHash},
	} {
		if kv.val != "" {
			*kv.dst = kv.val
		}
	}
}

// vcsStamp reads the revision and commit time recorded by `go build`.
func vcsStamp() (revision, at string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			at = s.Value
		}
	}
	return revision, at
}

// GetVersion reports the running build.
func GetVersion() Version {
	commit, date := Commit, BuildDate
	if commit == "dev" || date == "unknown" {
		revision, at := vcsStamp()
		if commit == "dev" && revision != "" {
			commit = revision
		}
		if date == "unknown" && at != "" {
			date = at
		}
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}

	obj := VersionObject{
		Major:     VersionMajor,
		Minor:     VersionMinor,
		Patch:     VersionPatch,
		Branch:    Branch,
		Commit:    commit,
		BuildDate: date,
		Arch:      runtime.GOOS + "/" + runtime.GOARCH,
		BuildHash: BuildHash,
	}
	tag := strings.Join([]string{obj.Major, obj.Minor, obj.Patch}, ".")

	return Version{
		Tag: tag,
		Str: fmt.Sprintf("%s-%s+%s.%s.%s.%s", tag, obj.Branch, obj.Commit, obj.BuildDate, obj.Arch, obj.BuildHash),
		Obj: obj,
	}
}
