package transcript

import "testing"

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{59.25, "00:00:59,250"},
		{60, "00:01:00,000"},
		{125.4567, "00:02:05,456"}, // milliseconds truncated, not rounded
		{3599.9999, "00:59:59,999"},
		{3600, "01:00:00,000"},
		{7325.25, "02:02:05,250"},
	}

	for _, c := range cases {
		if got := FormatTimestamp(c.seconds); got != c.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestGenerateSRT_EmptyTranscript(t *testing.T) {
	if got := GenerateSRT(&Transcript{}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestGenerateSRT_Cues(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Start: 0, End: 5, Speaker: "SPEAKER_01", Text: "This is a demonstration of the pipeline."},
		{Start: 5, End: 8.5, Text: " trimmed "},
	}}

	want := "1\n" +
		"00:00:00,000 --> 00:00:05,000\n" +
		"[SPEAKER_01]: This is a demonstration of the pipeline.\n" +
		"\n" +
		"2\n" +
		"00:00:05,000 --> 00:00:08,500\n" +
		"[UNKNOWN]: trimmed\n"

	if got := GenerateSRT(tr); got != want {
		t.Fatalf("srt output:\nwant %q\ngot  %q", want, got)
	}
}

func TestGenerateSRT_EmptyTextCueBody(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Start: 1, End: 2, Speaker: "A", Text: ""},
	}}

	want := "1\n00:00:01,000 --> 00:00:02,000\n[A]: \n"
	if got := GenerateSRT(tr); got != want {
		t.Fatalf("empty cue body:\nwant %q\ngot  %q", want, got)
	}
}
