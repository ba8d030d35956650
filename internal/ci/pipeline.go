package ci

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Pipeline drives a full check-patch run: the default environments, the
// functional environment, the artifact build, and an install check of the
// built packages.
type Pipeline struct {
	cfg    *Config
	runner *Runner
}

// NewPipeline creates a Pipeline for a project checkout.
func NewPipeline(cfg *Config, runner *Runner) *Pipeline {
	return &Pipeline{cfg: cfg, runner: runner}
}

// CheckPatch runs the whole pipeline, stopping at the first failure. The
// report is written either way, covering whatever got to run.
func (p *Pipeline) CheckPatch(ctx context.Context) (*RunResult, error) {
	result := NewRunResult()
	err := p.run(ctx, result)
	result.Duration = time.Since(result.StartedAt)
	result.Passed = err == nil

	if reportErr := WriteReport(p.artifactsDir(), result); reportErr != nil {
		if err == nil {
			return result, reportErr
		}
		return result, fmt.Errorf("%w (and writing the report failed: %v)", err, reportErr)
	}
	return result, err
}

func (p *Pipeline) run(ctx context.Context, result *RunResult) error {
	envs := append(append([]string(nil), p.cfg.EnvList...), FunctionalEnv)
	for _, name := range envs {
		envResult := p.runner.RunEnv(ctx, p.cfg.Environment(name))
		result.Envs = append(result.Envs, envResult)
		if !envResult.Passed {
			return fmt.Errorf("environment %s failed", name)
		}
	}

	buildResult := p.runner.RunEnv(ctx, Environment{
		Name:     "build-artifacts",
		Commands: []string{p.cfg.BuildCommand},
	})
	result.Envs = append(result.Envs, buildResult)
	if !buildResult.Passed {
		return fmt.Errorf("building artifacts failed")
	}

	installResult := p.installArtifacts(ctx)
	result.Envs = append(result.Envs, installResult)
	if !installResult.Passed {
		return fmt.Errorf("installing artifacts failed")
	}
	return nil
}

// installArtifacts installs the built rpms and runs the smoke command against
// the installed tree. Older platforms ship the real yum as yum-deprecated, so
// that one wins when present.
func (p *Pipeline) installArtifacts(ctx context.Context) EnvResult {
	rpms, err := filepath.Glob(filepath.Join(p.artifactsDir(), "*.rpm"))
	if err != nil || len(rpms) == 0 {
		// Nothing built means nothing to install, not a failure.
		return EnvResult{
			Name:   "install",
			Passed: true,
			Output: fmt.Sprintf("no rpms under %s to install\n", p.artifactsDir()),
		}
	}

	commands := []string{installCommand(yumCommand(), rpms)}
	if p.cfg.SmokeCommand != "" {
		commands = append(commands, p.cfg.SmokeCommand)
	}
	return p.runner.RunEnv(ctx, Environment{Name: "install", Commands: commands})
}

func (p *Pipeline) artifactsDir() string {
	return filepath.Join(p.runner.workDir, p.cfg.ArtifactsDir)
}

func yumCommand() string {
	if _, err := exec.LookPath("yum-deprecated"); err == nil {
		return "yum-deprecated"
	}
	return "yum"
}

// installCommand builds the install shell command, quoting every rpm path so
// checkouts under paths with spaces still install.
func installCommand(tool string, rpms []string) string {
	parts := []string{tool, "install", "-y"}
	for _, rpm := range rpms {
		parts = append(parts, shellQuote(rpm))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
