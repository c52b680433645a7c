package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupCLITestEnv(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
api_bind = ""
api_token = ""

[logging]
format = "text"
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSubmissionFile(t *testing.T, dir, id string) string {
	t.Helper()
	payload := fmt.Sprintf(`{
  "id": %q,
  "fields": [
    {"kind": "text", "tag": "session_title", "value": "Observability on a Budget"},
    {"kind": "text", "tag": "session_desc", "value": "Doing more with less."},
    {"kind": "multiselect", "tag": "session_categories", "choices": ["Operations"]},
    {"kind": "name", "tag": "speaker_first_name", "first": "Dana", "last": "Reyes"},
    {"kind": "text", "tag": "speaker_email", "value": "dana@example.com"}
  ]
}`, id)
	path := filepath.Join(dir, "submission-"+id+".json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write submission file: %v", err)
	}
	return path
}

func TestCLIIngestAndRecordsCommands(t *testing.T) {
	configPath := setupCLITestEnv(t)
	subPath := writeSubmissionFile(t, t.TempDir(), "9001")

	out, _, err := runCLI(t, configPath, "ingest", subPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, "Ingested submission 9001") {
		t.Fatalf("unexpected ingest output: %q", out)
	}
	if !strings.Contains(out, "speaker records") {
		t.Fatalf("expected speaker records in output, got %q", out)
	}

	out, _, err = runCLI(t, configPath, "ingest", subPath)
	if err != nil {
		t.Fatalf("repeat ingest: %v", err)
	}
	if !strings.Contains(out, "already processed") {
		t.Fatalf("expected duplicate notice, got %q", out)
	}

	out, _, err = runCLI(t, configPath, "records", "list")
	if err != nil {
		t.Fatalf("records list: %v", err)
	}
	if !strings.Contains(out, "Observability on a Budget") {
		t.Fatalf("records list missing session: %q", out)
	}
	if !strings.Contains(out, "9001") {
		t.Fatalf("records list missing submission id: %q", out)
	}

	out, _, err = runCLI(t, configPath, "records", "list", "--type", "speaker")
	if err != nil {
		t.Fatalf("records list speakers: %v", err)
	}
	if !strings.Contains(out, "Dana Reyes") {
		t.Fatalf("speaker list missing speaker: %q", out)
	}

	out, _, err = runCLI(t, configPath, "records", "show", "1")
	if err != nil {
		t.Fatalf("records show: %v", err)
	}
	if !strings.Contains(out, "Observability on a Budget") {
		t.Fatalf("unexpected records show output: %q", out)
	}
}

func TestCLIRecordsListRejectsBadStatus(t *testing.T) {
	configPath := setupCLITestEnv(t)

	_, _, err := runCLI(t, configPath, "records", "list", "--status", "bogus")
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCLIConfirmCommand(t *testing.T) {
	configPath := setupCLITestEnv(t)
	subPath := writeSubmissionFile(t, t.TempDir(), "9002")

	out, _, err := runCLI(t, configPath, "ingest", subPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	_, rest, found := strings.Cut(out, "speaker records [")
	if !found {
		t.Fatalf("could not find speaker id in output: %q", out)
	}
	speakerID, _, _ := strings.Cut(rest, "]")

	out, _, err = runCLI(t, configPath, "confirm", speakerID, "--technology", "projector")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(out, "Dana Reyes is now confirmed") {
		t.Fatalf("unexpected confirm output: %q", out)
	}

	out, _, err = runCLI(t, configPath, "confirm", speakerID, "--decline")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if !strings.Contains(out, "Dana Reyes is now declined") {
		t.Fatalf("unexpected decline output: %q", out)
	}
}

func TestCLIStatusCommand(t *testing.T) {
	configPath := setupCLITestEnv(t)

	out, _, err := runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No records yet") {
		t.Fatalf("expected empty store message, got %q", out)
	}

	subPath := writeSubmissionFile(t, t.TempDir(), "9003")
	if _, _, err := runCLI(t, configPath, "ingest", subPath); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	out, _, err = runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status after ingest: %v", err)
	}
	if !strings.Contains(out, "Session") || !strings.Contains(out, "Pending") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestCLILogsCommand(t *testing.T) {
	configPath := setupCLITestEnv(t)

	logDir := filepath.Join(filepath.Dir(configPath), "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	logPath := filepath.Join(logDir, "greenroom.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	out, _, err := runCLI(t, configPath, "logs", "--lines", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") || !strings.Contains(out, "second") || !strings.Contains(out, "third") {
		t.Fatalf("unexpected logs output: %q", out)
	}
}

func TestCLIConfigCommands(t *testing.T) {
	configPath := setupCLITestEnv(t)

	out, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "data_dir:") || !strings.Contains(out, "api_token set:  false") {
		t.Fatalf("unexpected config show output: %q", out)
	}

	target := filepath.Join(t.TempDir(), "fresh", "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected config init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLITestNotifyWithoutTopic(t *testing.T) {
	configPath := setupCLITestEnv(t)

	out, _, err := runCLI(t, configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "nothing sent") {
		t.Fatalf("unexpected test-notify output: %q", out)
	}
}

func TestCLIVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "greenroom "+version) {
		t.Fatalf("unexpected version output: %q", out)
	}
}
