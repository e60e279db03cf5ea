package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// example returns the absolute path of a file under examples/.
func example(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "examples", name))
	require.NoError(t, err)
	return path
}

// isolate points the user and project config search at empty directories.
func isolate(t *testing.T) (home, cwd string) {
	t.Helper()
	home = t.TempDir()
	cwd = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(cwd)
	return home, cwd
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_NoArgsPrintsHelp(t *testing.T) {
	isolate(t)
	code, stdout, _ := execute(t)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "Exit codes:")
}

func TestRun_Evaluate(t *testing.T) {
	tests := []struct {
		file     string
		wantCode int
		want     []string
	}{
		{"facility_eligible.json", 0, []string{
			"VERDICT: ✓ QUALIFIED",
			"Facility 'North Distribution Center' is QUALIFIED for Empty Tote Return task.",
		}},
		{"facility_eligible.hcl", 0, []string{"VERDICT: ✓ QUALIFIED"}},
		{"facility_cautions.yaml", 0, []string{
			"CAUTION FLAGS (3):",
			"  • narrow_aisles",
			"  • mixed_traffic_no_separation",
			"  • layout_drift_risk",
		}},
		{"facility_ineligible.json", 2, []string{
			"VERDICT: ✗ DISQUALIFIED",
			"DISQUALIFIERS (3):",
			"Facility 'Harbor Cross-Dock' is DISQUALIFIED due to 3 rule violation(s).",
		}},
		{"facility_incomplete.json", 3, []string{
			"VERDICT: ? UNKNOWN",
			"MISSING/INVALID FIELDS (3):",
			"  • has_separated_paths (missing)",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := example(t, tt.file)
			isolate(t)

			code, stdout, stderr := execute(t, path)
			assert.Equal(t, tt.wantCode, code, stderr)
			assert.True(t, strings.HasPrefix(stdout, strings.Repeat("=", 70)+"\n"))
			for _, w := range tt.want {
				assert.Contains(t, stdout, w)
			}
			assert.NotContains(t, stdout, "\x1b[")
		})
	}
}

func TestRun_EvaluateJSON(t *testing.T) {
	path := example(t, "facility_ineligible.json")
	isolate(t)

	code, stdout, _ := execute(t, path, "--json")
	assert.Equal(t, 2, code)

	var got struct {
		Verdict       string   `json:"verdict"`
		Disqualifiers []string `json:"disqualifiers"`
		CautionFlags  []string `json:"caution_flags"`
		MissingFields []string `json:"missing_fields"`
		Notes         []string `json:"notes"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "DISQUALIFIED", got.Verdict)
	assert.Equal(t, []string{"human_dense_shared_aisles", "chronic_destination_saturation", "unstable_layout"}, got.Disqualifiers)
	assert.Equal(t, []string{"narrow_aisles", "no_off_hours_window", "average_safety_maturity"}, got.CautionFlags)
	assert.NotNil(t, got.MissingFields)
	assert.Empty(t, got.MissingFields)
}

func TestRun_EvaluateFaults(t *testing.T) {
	_, cwd := isolate(t)

	code, stdout, stderr := execute(t, filepath.Join(cwd, "absent.json"))
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: File not found:")

	broken := filepath.Join(cwd, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"facility_name": `), 0644))
	code, _, stderr = execute(t, broken)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: Invalid input in file:")

	odd := filepath.Join(cwd, "site.ini")
	require.NoError(t, os.WriteFile(odd, []byte("a=b"), 0644))
	code, _, stderr = execute(t, odd)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unsupported file type")

	code, _, _ = execute(t, "a.json", "b.json")
	assert.Equal(t, 1, code)
}

func TestRun_ProjectConfig(t *testing.T) {
	path := example(t, "facility_eligible.json")
	_, cwd := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "constraintsim.yaml"), []byte("report:\n  format: json\n"), 0644))

	code, stdout, _ := execute(t, path)
	assert.Equal(t, 0, code)
	assert.True(t, json.Valid([]byte(stdout)), stdout)

	// An explicit flag wins over config.
	code, stdout, _ = execute(t, path, "--json=false")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "VERDICT: ✓ QUALIFIED")
}

func TestRun_InvalidConfig(t *testing.T) {
	path := example(t, "facility_eligible.json")
	_, cwd := isolate(t)

	code, _, stderr := execute(t, path, "--log-level", "verbose")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "log.level")

	require.NoError(t, os.WriteFile(filepath.Join(cwd, "constraintsim.yaml"), []byte("batch:\n  workerz: 2\n"), 0644))
	code, _, stderr = execute(t, path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load config")
}

func TestRun_Batch(t *testing.T) {
	dir := filepath.Dir(example(t, "facility_eligible.json"))
	_, cwd := isolate(t)

	metrics := filepath.Join(cwd, "out", "constraintsim.prom")
	require.NoError(t, os.MkdirAll(filepath.Dir(metrics), 0755))

	code, stdout, stderr := execute(t, "batch", dir, "--workers", "2", "--metrics-file", metrics)
	assert.Equal(t, 3, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 7) // run line, five files, totals
	assert.Contains(t, lines[6], "5 file(s): 3 qualified, 1 disqualified, 1 unknown, 0 error(s)")

	content, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(content), `constraintsim_evaluations_total{verdict="QUALIFIED"} 3`)
}

func TestRun_BatchJSONAndExitPrecedence(t *testing.T) {
	eligible := example(t, "facility_eligible.json")
	ineligible := example(t, "facility_ineligible.json")
	_, cwd := isolate(t)

	code, stdout, _ := execute(t, "batch", eligible, ineligible, "--json")
	assert.Equal(t, 2, code)

	var got struct {
		RunID   string `json:"run_id"`
		Entries []struct {
			Path string `json:"path"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, eligible, got.Entries[0].Path)

	code, _, _ = execute(t, "batch", eligible, ineligible, filepath.Join(cwd, "absent.json"))
	assert.Equal(t, 1, code, "a missing plain path fails resolution")

	code, _, stderr := execute(t, "batch", filepath.Join(cwd, "*.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no files match")
}

func TestRun_Lint(t *testing.T) {
	eligible := example(t, "facility_eligible.json")
	_, cwd := isolate(t)

	code, stdout, _ := execute(t, "lint", eligible)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, ": ok")

	extra := filepath.Join(cwd, "extra.yaml")
	require.NoError(t, os.WriteFile(extra, []byte(`
facility_name: A
min_aisle_width_ft: 12
has_separated_paths: true
human_traffic_density: low
has_closed_operating_window: true
layout_stability: stable
chronic_destination_saturation: false
tote_standardization: true
safety_governance_maturity: strong
dock_count: 4
`), 0644))
	code, stdout, _ = execute(t, "lint", eligible, extra)
	assert.Equal(t, 3, code)
	assert.Contains(t, stdout, "extra.yaml: 1 problem(s)")
	assert.Contains(t, stdout, "dock_count")

	// Lint problems never change the verdict.
	code, _, _ = execute(t, extra)
	assert.Equal(t, 0, code)

	code, _, stderr := execute(t, "lint", extra, filepath.Join(cwd, "absent.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "absent.json")
}

func TestRun_Rules(t *testing.T) {
	isolate(t)

	code, stdout, _ := execute(t, "rules")
	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "disqualifier  human_dense_shared_aisles"))
	assert.True(t, strings.HasPrefix(lines[9], "caution       average_safety_maturity"))

	code, stdout, _ = execute(t, "rules", "--json")
	assert.Equal(t, 0, code)
	var views []ruleView
	require.NoError(t, json.Unmarshal([]byte(stdout), &views))
	require.Len(t, views, 10)
	assert.Equal(t, ruleView{Name: "narrow_aisles", Category: "caution", Description: "Minimum aisle width below 8.0 feet"}, views[5])
}

func TestRun_Schema(t *testing.T) {
	isolate(t)
	code, stdout, _ := execute(t, "schema")
	assert.Equal(t, 0, code)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"additionalProperties": false`)
}

func TestRun_Config(t *testing.T) {
	home, cwd := isolate(t)

	code, stdout, _ := execute(t, "config", "init")
	assert.Equal(t, 0, code)
	userConfig := filepath.Join(home, ".config", "constraintsim", "config.yaml")
	assert.Contains(t, stdout, "Created "+userConfig)
	assert.FileExists(t, userConfig)

	code, stdout, _ = execute(t, "config", "init")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "already exists")

	code, stdout, _ = execute(t, "config", "show")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "workers: 4")

	custom := filepath.Join(cwd, "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("batch:\n  workers: 2\n"), 0644))
	code, stdout, _ = execute(t, "--config", custom, "config", "show")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "workers: 2")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "constraintsim version "+Version+" (build: dev)\n", stdout)
}

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_Watch(t *testing.T) {
	eligiblePath := example(t, "facility_eligible.json")
	ineligiblePath := example(t, "facility_ineligible.json")
	_, cwd := isolate(t)
	sites := filepath.Join(cwd, "sites")
	require.NoError(t, os.MkdirAll(sites, 0755))

	eligible, err := os.ReadFile(eligiblePath)
	require.NoError(t, err)
	ineligible, err := os.ReadFile(ineligiblePath)
	require.NoError(t, err)

	site := filepath.Join(sites, "site.json")
	require.NoError(t, os.WriteFile(site, eligible, 0644))

	cfgPath := filepath.Join(cwd, "watch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("watch:\n  debounce: 50ms\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"--config", cfgPath, "watch", sites, "--no-color"}, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "VERDICT: ✓ QUALIFIED")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(site, ineligible, 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "VERDICT: ✗ DISQUALIFIED")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(site))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), site+" removed")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code, stderr.String())
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
