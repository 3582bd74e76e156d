package storage

import "testing"

func TestIsAudioFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"recording.mp3", true},
		{"RECORDING.WAV", true},
		{"talk.m4a", true},
		{"session.opus", true},
		{"movie.mkv", false},
		{"notes.txt", false},
		{"noextension", false},
	}

	for _, c := range cases {
		if got := IsAudioFile(c.name); got != c.want {
			t.Fatalf("IsAudioFile(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"meeting.mp3", "meeting.mp3"},
		{"../../etc/passwd", "passwd"},
		{"my talk (final).wav", "my_talk_final_.wav"},
		{"..", ""},
		{"???", ""},
	}

	for _, c := range cases {
		if got := SafeFileName(c.in); got != c.want {
			t.Fatalf("SafeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveWithin(t *testing.T) {
	dir := t.TempDir()

	if _, err := ResolveWithin(dir, "job_output.txt"); err != nil {
		t.Fatalf("plain name rejected: %v", err)
	}

	if _, err := ResolveWithin(dir, "../escape.txt"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}
