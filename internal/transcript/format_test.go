package transcript

import (
	"strings"
	"testing"
)

// header is the fixed document prologue: title line, rule line, and the blank
// line that separates it from the first speaker block.
func header() string {
	return "TRANSCRIPT WITH SPEAKER DIARIZATION\n" + strings.Repeat("=", 50) + "\n"
}

func TestFormat_EmptyTranscriptIsHeaderOnly(t *testing.T) {
	got := Format(&Transcript{})
	if got != header() {
		t.Fatalf("empty transcript:\nwant %q\ngot  %q", header(), got)
	}
}

func TestFormat_GroupsConsecutiveSpeakerRuns(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Speaker: "A", Text: "hi"},
		{Speaker: "A", Text: "there"},
		{Speaker: "B", Text: "ok"},
	}}

	want := header() + "\n\n[A]:\nhi there\n\n[B]:\nok"
	if got := Format(tr); got != want {
		t.Fatalf("grouped transcript:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormat_SpeakerReturnStartsNewBlock(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Speaker: "A", Text: "one"},
		{Speaker: "B", Text: "two"},
		{Speaker: "A", Text: "three"},
	}}

	want := header() + "\n\n[A]:\none\n\n[B]:\ntwo\n\n[A]:\nthree"
	if got := Format(tr); got != want {
		t.Fatalf("alternating speakers:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormat_MissingSpeakerDefaultsToUnknown(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Text: "nobody claimed this line yet"},
	}}

	got := Format(tr)
	if !strings.Contains(got, "[UNKNOWN]:") {
		t.Fatalf("expected UNKNOWN block, got %q", got)
	}
}

func TestFormat_WrapsInterjectionsAndTrims(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Speaker: "A", Text: "  so the experiment ran overnight without issues  "},
		{Speaker: "B", Text: " Yeah. ", Interjection: true},
	}}

	want := header() + "\n\n[A]:\nso the experiment ran overnight without issues\n\n[B]:\n*Yeah.*"
	if got := Format(tr); got != want {
		t.Fatalf("interjection block:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormat_EmptyTextProducesEmptyGroupedLine(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Speaker: "A", Text: ""},
	}}

	want := header() + "\n\n[A]:\n"
	if got := Format(tr); got != want {
		t.Fatalf("empty text block:\nwant %q\ngot  %q", want, got)
	}
}
