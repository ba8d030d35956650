package ci

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Provisioner prepares external resources (test databases) for an
// environment before its commands run.
type Provisioner interface {
	CheckAndCreate(env string, count int) ([]string, error)
}

// EnvResult is the outcome of running one environment.
type EnvResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Output   string        `json:"output"`
	Failed   string        `json:"failed_command,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Runner executes CI environments in a project checkout.
type Runner struct {
	workDir     string
	provisioner Provisioner
}

// NewRunner creates a Runner rooted at workDir. provisioner may be nil when
// no environment needs databases.
func NewRunner(workDir string, provisioner Provisioner) *Runner {
	return &Runner{workDir: workDir, provisioner: provisioner}
}

// RunEnv runs the commands of one environment in order, stopping at the
// first failure. All command output is captured into the result.
func (r *Runner) RunEnv(ctx context.Context, env Environment) EnvResult {
	start := time.Now()
	result := EnvResult{Name: env.Name, Passed: true}

	if env.Databases > 0 {
		if r.provisioner == nil {
			result.Passed = false
			result.Output = "environment needs databases but no provisioner is configured\n"
			result.Duration = time.Since(start)
			return result
		}
		if _, err := r.provisioner.CheckAndCreate(env.Name, env.Databases); err != nil {
			result.Passed = false
			result.Output = fmt.Sprintf("provisioning databases: %v\n", err)
			result.Duration = time.Since(start)
			return result
		}
	}

	for _, command := range env.Commands {
		output, err := r.runCommand(ctx, command, env.Env)
		result.Output += fmt.Sprintf("$ %s\n%s", command, output)
		if err != nil {
			result.Passed = false
			result.Failed = command
			result.Output += fmt.Sprintf("FAILED: %v\n", err)
			break
		}
	}
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) runCommand(ctx context.Context, command string, env map[string]string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.workDir
	cmd.Env = os.Environ()
	for key, value := range env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}
	output, err := cmd.CombinedOutput()
	return string(output), err
}
