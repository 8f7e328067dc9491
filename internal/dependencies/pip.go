package dependencies

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

// execCommand is overridden in tests to avoid invoking a real interpreter.
var execCommand = exec.Command

// PipBackend drives an external Python interpreter's pip via os/exec:
// pip install --dry-run to check for conflicts, then a real pip install.
type PipBackend struct {
	// InterpreterPath is the python executable, e.g. "python3" or an
	// absolute path to the host tool's bundled interpreter.
	InterpreterPath string
}

// NewPipBackend builds a PipBackend targeting the given interpreter.
func NewPipBackend(interpreterPath string) *PipBackend {
	return &PipBackend{InterpreterPath: interpreterPath}
}

func (p *PipBackend) Name() string { return "pip" }

func (p *PipBackend) run(args ...string) (string, error) {
	if p.InterpreterPath == "" {
		return "", errs.New(errs.KindNoInterpreter, "no interpreter configured")
	}
	cmd := execCommand(p.InterpreterPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errs.Wrap(errs.KindDependencyConflict, "pip failed: "+strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

// DryRun runs `pip install --dry-run` so conflicts surface before any
// package actually changes on disk.
func (p *PipBackend) DryRun(specs []string) error {
	if len(specs) == 0 {
		return nil
	}
	args := append([]string{"-m", "pip", "install", "--dry-run"}, specs...)
	_, err := p.run(args...)
	return err
}

// Install runs `pip install` for real.
func (p *PipBackend) Install(specs []string) error {
	if len(specs) == 0 {
		return nil
	}
	args := append([]string{"-m", "pip", "install"}, specs...)
	_, err := p.run(args...)
	return err
}

// Freeze runs `pip freeze` and splits its output into requirement lines.
func (p *PipBackend) Freeze() ([]string, error) {
	out, err := p.run("-m", "pip", "freeze")
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
