// Package buildinfo reports which sourcepath binary is running.
//
// Release builds stamp the variables below with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/sourcepath/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/sourcepath/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/sourcepath/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with plain "go install" or "go build" fall back to the
// module version and VCS stamps the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set via ldflags. Empty or placeholder values defer to the embedded build
// information.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes a sourcepath binary. It is reported by "sourcepath
// --version" and by the API's /health endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
	Platform  string `json:"platform"`
	Dirty     bool   `json:"dirty,omitempty"`
}

var (
	once sync.Once
	info Info
)

// Read returns the build information, computed once per process.
func Read() Info {
	once.Do(func() {
		bi, _ := debug.ReadBuildInfo()
		info = resolve(Version, Commit, Date, bi)
	})
	return info
}

// resolve merges ldflags values with the toolchain's embedded settings.
// ldflags win whenever they were actually set.
func resolve(version, commit, date string, bi *debug.BuildInfo) Info {
	in := Info{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return in
	}
	if in.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		in.Version = bi.Main.Version
	}
	if bi.GoVersion != "" {
		in.GoVersion = bi.GoVersion
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if in.Commit == "none" {
				in.Commit = s.Value
			}
		case "vcs.time":
			if in.Date == "unknown" {
				in.Date = s.Value
			}
		case "vcs.modified":
			in.Dirty = s.Value == "true"
		}
	}
	return in
}

// ShortCommit returns the first 12 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 12 {
		return i.Commit[:12]
	}
	return i.Commit
}

// String returns the multi-line form printed by --version.
func (i Info) String() string {
	commit := i.ShortCommit()
	if i.Dirty {
		commit += " (modified)"
	}
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s %s", i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

// String returns the build information of the running binary.
func String() string { return Read().String() }

// Template returns the cobra version template.
func Template() string { return "{{.Name}} " + Read().String() + "\n" }
