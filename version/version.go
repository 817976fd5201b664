// Package version resolves the version string shown by the binaries. An
// explicit value injected at build time wins; otherwise the vcs revision
// recorded in the build info is used, marked dirty when the tree had local
// modifications.
package version

import "runtime/debug"

// Version can be injected at build time:
//
//	go build -ldflags "-X github.com/tabedit/tabedit/version.Version=$(git describe --dirty)"
var Version string

var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	revision, modified := "", false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()
