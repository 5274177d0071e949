package tui

import (
	"os"

	"golang.org/x/term"
)

// ciEnvVars are set by common CI providers.
var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"BUILDKITE",
	"JENKINS_HOME",
	"TF_BUILD",
	"CODEBUILD_BUILD_ID",
}

// IsInteractive reports whether prompts can be shown: stdin and stdout are
// both terminals and no CI provider is detected.
func IsInteractive() bool {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return false
	}
	return !InCI()
}

// InCI reports whether a CI environment variable is set.
func InCI() bool {
	for _, env := range ciEnvVars {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}
