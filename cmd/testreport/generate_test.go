package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/outcome"
	"github.com/bgricker/testreport/internal/output"
)

func TestGenerateCommandPretty(t *testing.T) {
	root := projectRoot(t)
	tmp := workspace(t, root)

	out, logs, err := execCmd(t, "generate", "--source", "testdata/reports", "--include", "cucumber/*.json,junit/*.xml", "--output", "out")
	if err != nil {
		t.Fatalf("failing tests must not fail the command: %v", err)
	}

	for _, want := range []string{"✓ User validates email (250ms)", "SUMMARY:", "Report written to out/index.html"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if !strings.Contains(logs, "processing report") || !strings.Contains(logs, "report outcome") {
		t.Fatalf("expected progress logs on stderr, got %q", logs)
	}

	for _, name := range []string{"index.html", "report.json", "metrics.prom", "tags.html", "data/cucumber/checkout.json", "data/junit/rspec.xml"} {
		if _, err := os.Stat(filepath.Join(tmp, "out", filepath.FromSlash(name))); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}
}

func TestGenerateCommandJSON(t *testing.T) {
	root := projectRoot(t)
	workspace(t, root)

	out, _, err := execCmd(t, "generate", "--source", "testdata/reports", "--include", "junit/*.xml", "--output", "out", "--format", "json", "--metrics=false")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}

	var rep output.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if rep.Command != "generate" || rep.Outcome != "success" {
		t.Fatalf("unexpected report header: %+v", rep)
	}
	if strings.Join(rep.Files, ",") != "junit/rspec.xml,junit/suites.xml" {
		t.Fatalf("unexpected files %v", rep.Files)
	}
	if rep.Summary == nil || rep.Summary.TotalFiles != 2 {
		t.Fatalf("expected summary over two files, got %+v", rep.Summary)
	}
	artifacts := strings.Join(rep.Artifacts, ",")
	if !strings.Contains(artifacts, "index.html") || strings.Contains(artifacts, "metrics.prom") {
		t.Fatalf("unexpected artifacts %v", rep.Artifacts)
	}
}

func TestGenerateCommandMalformedInput(t *testing.T) {
	root := projectRoot(t)
	tmp := workspace(t, root)

	args := []string{"generate", "--source", "testdata/reports", "--include", "cucumber/*.json,broken/*.json", "--output", "out"}

	_, logs, err := execCmd(t, args...)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(exit.Error(), "missing_result.json") {
		t.Fatalf("expected malformed file in error, got %q", exit.Error())
	}
	if !strings.Contains(logs, "failure") {
		t.Fatalf("expected failure outcome in logs, got %q", logs)
	}
	if _, err := os.Stat(filepath.Join(tmp, "out", "index.html")); !os.IsNotExist(err) {
		t.Fatalf("expected no index.html, stat err=%v", err)
	}

	if _, err := os.Stat(filepath.Join(tmp, "out", "data")); !os.IsNotExist(err) {
		t.Fatalf("expected staged copies to be discarded, stat err=%v", err)
	}

	_, _, err = execCmd(t, append(args, "--mark-unstable")...)
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("malformed input must fail even when marked unstable, got %v", err)
	}
}

func TestGenerateCommandUnwritableOutputIsUnstable(t *testing.T) {
	root := projectRoot(t)
	tmp := workspace(t, root)

	if err := os.WriteFile(filepath.Join(tmp, "blocked"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	args := []string{"generate", "--source", "testdata/reports", "--include", "junit/*.xml", "--output", "blocked"}

	_, _, err := execCmd(t, args...)
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}

	_, _, err = execCmd(t, append(args, "--mark-unstable")...)
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Fatalf("expected unstable exit code 2, got %v", err)
	}
}

func TestDecideOutcome(t *testing.T) {
	writeErr := fmt.Errorf("stage reports: %w", &output.OutputWriteError{Path: "out/index.html", Err: errors.New("disk full")})
	cases := []struct {
		name      string
		generated bool
		unstable  bool
		err       error
		want      outcome.Outcome
	}{
		{"generated", true, true, nil, outcome.Success},
		{"write failure", false, false, writeErr, outcome.Failure},
		{"write failure marked", false, true, writeErr, outcome.Unstable},
		{"input failure marked", false, true, errors.New("report 1 of 1: malformed"), outcome.Failure},
	}
	for _, tc := range cases {
		if got := decideOutcome(tc.generated, tc.unstable, tc.err); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGenerateCommandNoReports(t *testing.T) {
	root := projectRoot(t)
	tmp := workspace(t, root)

	out, _, err := execCmd(t, "generate", "--source", "testdata/reports", "--include", "nothing/*.json", "--output", "out")
	if err != nil {
		t.Fatalf("command execute: %v", err)
	}
	if out != "No report files found\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(tmp, "out")); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, stat err=%v", err)
	}
}

func TestGenerateCommandSkipsOwnOutput(t *testing.T) {
	root := projectRoot(t)
	workspace(t, root)

	args := []string{"generate", "--source", "testdata/reports", "--include", "junit/*.xml,**/junit/*.xml", "--output", "testdata/reports/out", "--format", "json"}
	for i := 0; i < 2; i++ {
		out, _, err := execCmd(t, args...)
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		var rep output.Report
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if len(rep.Files) != 2 {
			t.Fatalf("run %d picked up staged copies: %v", i+1, rep.Files)
		}
	}
}

func TestGenerateCommandRejectsBadFormat(t *testing.T) {
	root := projectRoot(t)
	workspace(t, root)

	if _, _, err := execCmd(t, "generate", "--format", "xml"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func configFor(source, out, exclude string) config.Config {
	cfg := config.Default()
	cfg.Source = source
	cfg.Output = out
	cfg.Exclude = exclude
	return cfg
}
