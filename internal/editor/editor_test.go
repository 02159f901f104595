package editor

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDetectEditor(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		want   string
	}{
		{"EDITOR wins", "nvim", "code", "nvim"},
		{"VISUAL when EDITOR unset", "", "code", "code"},
		{"blank EDITOR treated as unset", "   ", "vscode", "vscode"},
		{"arguments kept", "code --wait", "", "code --wait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)

			if got := detectEditor(); got != tt.want {
				t.Errorf("detectEditor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEditor_FallbackNano(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	got := detectEditor()

	// Should be nano if available, otherwise vi
	if _, err := exec.LookPath("nano"); err == nil {
		if got != "nano" {
			t.Errorf("detectEditor() = %q, want %q (nano available)", got, "nano")
		}
	} else if got != "vi" {
		t.Errorf("detectEditor() = %q, want %q (nano not available)", got, "vi")
	}
}

func TestOpen_Integration(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping integration test on windows (uses shell script mock)")
	}

	tmpDir := t.TempDir()
	mockEditor := filepath.Join(tmpDir, "mock-editor.sh")
	outputFile := filepath.Join(tmpDir, "output.txt")

	// The mock editor writes its arguments to a file
	script := "#!/bin/sh\necho \"$@\" > " + outputFile + "\n"
	if err := os.WriteFile(mockEditor, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EDITOR", mockEditor+" --wait")

	targetFile := filepath.Join(tmpDir, "claude_desktop_config.json")
	if err := os.WriteFile(targetFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Open(t.Context(), targetFile); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "--wait "+targetFile {
		t.Errorf("mock editor args = %q, want %q", string(got), "--wait "+targetFile)
	}
}

func TestOpen_NoEditor(t *testing.T) {
	t.Setenv("EDITOR", "non-existent-binary-12345")
	t.Setenv("VISUAL", "")

	if err := Open(t.Context(), "test.txt"); err == nil {
		t.Error("expected error for non-existent editor, got nil")
	}
}
