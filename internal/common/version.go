package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/bobmcallan/marketctx/internal/common.Version=1.2.0".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionFileName is read from the binary's directory when ldflags were not set.
const VersionFileName = ".version"

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// CurrentBuild returns the build identity. An unset commit falls back to the
// VCS revision stamped by the Go toolchain.
func CurrentBuild() BuildInfo {
	info := BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
	if info.Commit == "unknown" {
		if rev := vcsRevision(); rev != "" {
			info.Commit = rev
		}
	}
	return info
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", b.Version, b.Build, b.Commit)
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value[:min(len(s.Value), 7)]
		}
	}
	return ""
}

// LoadVersionFromFile fills still-default build fields from the version file
// next to the executable. Missing or unreadable files are ignored.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	f, err := os.Open(filepath.Join(filepath.Dir(exe), VersionFileName))
	if err != nil {
		return
	}
	defer f.Close()
	applyVersionFields(parseVersionFile(f))
}

// parseVersionFile reads "key: value" lines, skipping blanks and # comments.
func parseVersionFile(r io.Reader) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, val, ok := strings.Cut(line, ":"); ok {
			fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(val)
		}
	}
	return fields
}

func applyVersionFields(fields map[string]string) {
	fill := func(dst *string, unset, key string) {
		if v := fields[key]; v != "" && *dst == unset {
			*dst = v
		}
	}
	fill(&Version, "dev", "version")
	fill(&Build, "unknown", "build")
	fill(&GitCommit, "unknown", "commit")
}
