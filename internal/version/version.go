// Package version reports the build identity of grievd.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/example/grievd/internal/version.Revision=...".
var (
	Revision  = ""
	BuildTime = ""
)

// Info is the build identity printed by `grievd version`.
type Info struct {
	Revision  string
	BuildTime string
	Modified  bool
	GoVersion string
}

// Current resolves the build identity. Values injected at link time win;
// otherwise the VCS stamp the Go toolchain embeds is used.
func Current() Info {
	info := Info{Revision: Revision, BuildTime: BuildTime}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	return fromSettings(info, bi.Settings)
}

func fromSettings(info Info, settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Revision == "" {
				info.Revision = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders info as a single line.
func (i Info) String() string {
	rev := orUnknown(i.Revision)
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if i.Modified {
		rev += "-dirty"
	}
	out := fmt.Sprintf("grievd %s (built %s)", rev, orUnknown(i.BuildTime))
	if i.GoVersion != "" {
		out += " " + i.GoVersion
	}
	return out
}

// String is shorthand for Current().String().
func String() string {
	return Current().String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
