package ci

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CoveragePath is where the functional coverage report lands inside the
// artifacts directory. The index page always links to it.
const CoveragePath = "coverage/functional/coverage.total.html/index.html"

// RunResult is the outcome of a whole CI run.
type RunResult struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Passed    bool          `json:"passed"`
	Envs      []EnvResult   `json:"environments"`
}

// NewRunResult creates an empty result with a fresh run id.
func NewRunResult() *RunResult {
	return &RunResult{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>CI run {{.ID}}</title></head>
<body>
<h1>CI run {{.ID}}</h1>
<p>Started {{.StartedAt.Format "2006-01-02 15:04:05"}}, took {{.Duration}}.</p>
<h2>Environments</h2>
<ul>
{{- range .Envs}}
<li>{{.Name}}: {{if .Passed}}PASSED{{else}}FAILED{{end}} ({{.Duration}})</li>
{{- end}}
</ul>
<h2>Reports</h2>
<ul>
<li><a href="{{.Coverage}}">Full coverage report</a></li>
<li><a href="results.json">Raw results</a></li>
</ul>
</body>
</html>
`))

// WriteReport writes the run index page and the raw results into dir. The
// index page links to the functional coverage report whether or not the run
// got far enough to produce it.
func WriteReport(dir string, result *RunResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "results.json"), data, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	index, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return err
	}
	defer index.Close()

	page := struct {
		*RunResult
		Coverage string
	}{result, CoveragePath}
	if err := indexTemplate.Execute(index, page); err != nil {
		return fmt.Errorf("writing index page: %w", err)
	}
	return nil
}
