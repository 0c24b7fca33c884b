// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for the launcher's
// bootstrap operations: initializing the tool's own clone, fetching,
// resolving signed tags, and materializing the verified checkout. All
// commands target a specific repository directory via the -C flag,
// which is automatically injected by all Repository methods.
//
// Spawned commands run with a scrubbed environment: git redirection
// variables (GIT_DIR, GIT_WORK_TREE, ...) inherited from the caller
// would silently retarget every operation, so they are removed before
// each spawn. GROVE_TRACE=1 echoes every spawned command to stderr.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/grove-scm/grove-launcher/lib/semver"
)

// versionPrefix is the fixed prefix git emits before its version tuple.
const versionPrefix = "git version "

// scrubbedVariables are git environment variables removed from every
// spawned command. Any of these leaking in from the calling environment
// would redirect git away from the repository the -C flag names.
var scrubbedVariables = []string{
	"GIT_DIR",
	"GIT_WORK_TREE",
	"GIT_INDEX_FILE",
	"GIT_OBJECT_DIRECTORY",
	"GIT_ALTERNATE_OBJECT_DIRECTORIES",
	"GIT_GRAFT_FILE",
}

// defaultAllowedProtocols is the transport allowlist applied when the
// caller has not set GIT_ALLOW_PROTOCOL itself.
const defaultAllowedProtocols = "file:git:http:https:ssh:persistent-http:persistent-https:sso:rpc"

// Repository represents a git repository at a specific directory. All
// operations target this directory via "git -C <dir>". There is no
// default directory — callers must always specify which repository
// they mean.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and included in error messages
// on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	command := r.Command(ctx, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RunPassthrough executes a git command with stdout and stderr
// inherited from this process. Used for network operations (fetch)
// whose progress output should reach the user unless quiet.
func (r *Repository) RunPassthrough(ctx context.Context, args ...string) error {
	command := r.Command(ctx, args...)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("git %s in %s: %w", strings.Join(args, " "), r.dir, err)
	}
	return nil
}

// Command returns an *exec.Cmd for a git command without running it.
// The caller gets full control over Stdin, Stdout, Stderr, and Env
// before starting the process. The -C flag targeting this repository
// is automatically prepended and the environment is scrubbed.
func (r *Repository) Command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-C", r.dir}, args...)
	trace(append([]string{"git"}, fullArgs...))
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Env = CommandEnvironment()
	return command
}

// Version runs "git --version" and parses the reported version tuple.
// Returns nil (unsupported) if git is missing, fails, or reports an
// unrecognizable version string.
func Version(ctx context.Context) semver.Version {
	trace([]string{"git", "--version"})
	command := exec.CommandContext(ctx, "git", "--version")
	command.Env = CommandEnvironment()
	out, err := command.Output()
	if err != nil {
		return nil
	}
	return semver.Parse(versionPrefix, strings.TrimSpace(string(out)))
}

// Installed reports whether a git binary is available on PATH.
func Installed() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// CommandEnvironment returns the process environment with git
// redirection variables scrubbed and transport defaults applied:
// GIT_ALLOW_PROTOCOL is set to the launcher's allowlist when unset,
// http_proxy is forwarded into git's configuration on darwin (where
// git does not honor the variable itself), and GROVE_CURL_VERBOSE
// enables git's verbose HTTP debugging.
func CommandEnvironment() []string {
	env := os.Environ()
	kept := env[:0]
	for _, entry := range env {
		if isScrubbed(entry) {
			continue
		}
		kept = append(kept, entry)
	}
	env = kept

	if os.Getenv("GIT_ALLOW_PROTOCOL") == "" {
		env = append(env, "GIT_ALLOW_PROTOCOL="+defaultAllowedProtocols)
	}
	if proxy := os.Getenv("http_proxy"); proxy != "" && runtime.GOOS == "darwin" {
		parameters := fmt.Sprintf("'http.proxy=%s'", proxy)
		if existing := os.Getenv("GIT_CONFIG_PARAMETERS"); existing != "" {
			parameters = existing + " " + parameters
		}
		env = append(env, "GIT_CONFIG_PARAMETERS="+parameters)
	}
	if os.Getenv("GROVE_CURL_VERBOSE") != "" {
		env = append(env, "GIT_CURL_VERBOSE=1")
	}
	return env
}

func isScrubbed(entry string) bool {
	for _, name := range scrubbedVariables {
		if strings.HasPrefix(entry, name+"=") {
			return true
		}
	}
	return false
}

// trace echoes a command line to stderr when GROVE_TRACE is set,
// matching the ": git ..." shell-trace style.
func trace(argv []string) {
	if os.Getenv("GROVE_TRACE") == "" {
		return
	}
	fmt.Fprintf(os.Stderr, ": %s\n", strings.Join(argv, " "))
}
