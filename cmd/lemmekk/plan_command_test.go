package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"lemmekk/internal/testsupport"
)

func TestPlanTableOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, name := range []string{"movie.part1.rar", "movie.part2.rar", "readme.txt"} {
		testsupport.WriteFile(t, filepath.Join(env.sourceDir, name), 2048)
	}

	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "movie")
	requireContains(t, out, "split(2)")
	requireContains(t, out, "readme")
	requireContains(t, out, "4.1 kB")
	requireContains(t, out, "2 jobs from 3 files")
}

func TestPlanJSONWithCarving(t *testing.T) {
	env := setupCLITestEnv(t)
	stego, trailerEnd := testsupport.StegoPNG(0, 128)
	cover := filepath.Join(env.sourceDir, "holiday.png")
	testsupport.WriteBytes(t, cover, stego)
	testsupport.WriteFile(t, filepath.Join(env.sourceDir, "lonely.part3.rar"), 8)

	out, _, err := runCLI(t, []string{"plan", "--stego", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	var got struct {
		Files   int `json:"files"`
		Invalid int `json:"invalid"`
		Carved  int `json:"carved"`
		Jobs    []struct {
			Package string `json:"package"`
			Kind    struct {
				Type   string `json:"type"`
				Offset int64  `json:"offset"`
			} `json:"kind"`
			Path       string   `json:"path"`
			Companions []string `json:"companions"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode plan json: %v\n%s", err, out)
	}
	if got.Files != 2 || got.Invalid != 1 || got.Carved != 1 || len(got.Jobs) != 1 {
		t.Fatalf("unexpected plan %+v", got)
	}
	job := got.Jobs[0]
	if job.Kind.Type != "stego" || job.Kind.Offset != int64(trailerEnd) {
		t.Fatalf("unexpected kind %+v", job.Kind)
	}
	if job.Path != filepath.Join(env.sourceDir, "holiday.file") {
		t.Fatalf("unexpected path %s", job.Path)
	}
	if len(job.Companions) != 2 || job.Companions[1] != cover {
		t.Fatalf("unexpected companions %v", job.Companions)
	}
	if _, err := os.Stat(filepath.Join(env.sourceDir, "holiday.basis")); err != nil {
		t.Fatalf("cover fragment missing: %v", err)
	}
}

func TestPlanJSONListsEmptyCompanions(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.sourceDir, "notes.rar"), 8)

	out, _, err := runCLI(t, []string{"plan", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var got struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode plan json: %v\n%s", err, out)
	}
	if len(got.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(got.Jobs))
	}
	companions, ok := got.Jobs[0]["companions"].([]any)
	if !ok || len(companions) != 0 {
		t.Fatalf("expected empty companions list, got %#v", got.Jobs[0]["companions"])
	}
}

func TestPlanArgumentsReplaceSources(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.sourceDir, "configured.zip"), 4)
	other := filepath.Join(env.baseDir, "other")
	testsupport.WriteFile(t, filepath.Join(other, "given.7z"), 4)
	testsupport.WriteFile(t, filepath.Join(other, "skip.nfo"), 4)

	out, _, err := runCLI(t, []string{"plan", "--exclude", ".nfo", other}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "given")
	requireContains(t, out, "1 jobs from 1 files")
}

func TestPlanRejectsInvalidBoundary(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"plan", "--boundary", "middle"}, env.configPath); err == nil {
		t.Fatal("expected error for invalid boundary")
	}
}

func TestPlanEmptySources(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "No extraction jobs (0 files scanned)")
}
