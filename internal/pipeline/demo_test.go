package pipeline

import (
	"context"
	"testing"
)

func TestDemoRunner_ReturnsFixtureTranscript(t *testing.T) {
	r := NewDemoRunner(0)

	var progress []float64
	tr, err := r.Run(context.Background(), Request{Model: "base", NumSpeakers: 2}, func(p float64, _ string) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(tr.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(tr.Segments))
	}
	if tr.Language != "en" || tr.Device != "cpu" {
		t.Fatalf("unexpected metadata: language=%q device=%q", tr.Language, tr.Device)
	}

	speakers := map[string]bool{}
	prevEnd := 0.0
	for i, seg := range tr.Segments {
		speakers[seg.Speaker] = true
		if seg.Start < prevEnd {
			t.Fatalf("segment %d starts before previous end: %v < %v", i, seg.Start, prevEnd)
		}
		prevEnd = seg.End
	}
	if len(speakers) != 2 {
		t.Fatalf("expected 2 speakers, got %v", speakers)
	}

	if len(progress) == 0 {
		t.Fatal("expected progress updates")
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] <= progress[i-1] {
			t.Fatalf("progress not increasing: %v", progress)
		}
	}
}

func TestDemoRunner_HonorsCancellation(t *testing.T) {
	r := NewDemoRunner(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, Request{}, func(float64, string) {}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
