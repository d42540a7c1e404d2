// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	// execCommand is replaced in tests.
	execCommand = exec.CommandContext

	once sync.Once
	mu   sync.RWMutex
)

const gitTimeout = 2 * time.Second

func ensureInitialized() {
	once.Do(func() {
		commit := getGitCommit()
		ver := getGitVersion()

		mu.Lock()
		defer mu.Unlock()
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = commit
		}
		if Version == "" {
			Version = ver
		}
	})
}

func runGit(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := execCommand(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func getGitCommit() string {
	out, err := runGit("describe", "--always", "--dirty")
	if err != nil || out == "" {
		return "unknown"
	}
	return out
}

func getGitVersion() string {
	out, err := runGit("describe", "--tags", "--abbrev=0")
	if err != nil || out == "" {
		return "dev"
	}
	return strings.TrimPrefix(out, "v")
}

// Reset clears the resolved values so the next call resolves them again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}

// GetVersion returns the release version, or "dev".
func GetVersion() string {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return Version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return Commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return Date
}

func Info() string {
	return fmt.Sprintf("vertex %s (commit: %s, built: %s, %s/%s)",
		GetVersion(), GetCommit(), GetDate(), runtime.GOOS, runtime.GOARCH)
}
