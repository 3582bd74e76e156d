package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// stubScript emulates the transcription CLI: it finds the --output-json flag
// and writes a fixed segment payload there.
const stubScript = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output-json" ]; then
    out="$2"
  fi
  shift
done
cat > "$out" <<'JSON'
{"language": "en", "device": "cpu", "segments": [{"start": 0, "end": 1.5, "speaker": "SPEAKER_00", "text": "from the subprocess"}]}
JSON
`

func TestSubprocessRunner_ReadsCommandOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "transcribe.sh")
	if err := os.WriteFile(script, []byte(stubScript), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	audio := filepath.Join(dir, "sample.wav")
	if err := os.WriteFile(audio, []byte("x"), 0644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	r := NewSubprocessRunner(script)
	tr, err := r.Run(context.Background(), Request{
		FilePath:    audio,
		Model:       "base",
		NumSpeakers: 2,
	}, func(float64, string) {})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(tr.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(tr.Segments))
	}
	if tr.Segments[0].Text != "from the subprocess" {
		t.Fatalf("unexpected text %q", tr.Segments[0].Text)
	}
	if tr.Language != "en" || tr.Device != "cpu" {
		t.Fatalf("metadata: language=%q device=%q", tr.Language, tr.Device)
	}
}

func TestSubprocessRunner_FailingCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	r := NewSubprocessRunner(script)
	if _, err := r.Run(context.Background(), Request{FilePath: "x.wav"}, func(float64, string) {}); err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestSubprocessRunner_NoCommandConfigured(t *testing.T) {
	r := NewSubprocessRunner("")
	if _, err := r.Run(context.Background(), Request{FilePath: "x.wav"}, func(float64, string) {}); err == nil {
		t.Fatal("expected error when command is empty")
	}
}
