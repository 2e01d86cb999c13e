package gateway

import (
	"fmt"
	"testing"
)

func TestReplayBuffer_Range(t *testing.T) {
	rb := NewReplayBuffer(4)

	for seq := int64(1); seq <= 3; seq++ {
		rb.Push(seq, []byte(fmt.Sprintf("msg-%d", seq)))
	}

	entries := rb.Range(2, 3)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Seq != 2 || string(entries[0].Data) != "msg-2" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Seq != 3 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestReplayBuffer_OverwritesOldest(t *testing.T) {
	rb := NewReplayBuffer(2)

	rb.Push(1, []byte("one"))
	rb.Push(2, []byte("two"))
	rb.Push(3, []byte("three"))

	if rb.Len() != 2 {
		t.Fatalf("len = %d, want 2", rb.Len())
	}
	if got := rb.Range(1, 1); len(got) != 0 {
		t.Fatalf("seq 1 should be evicted, got %d entries", len(got))
	}
	got := rb.Range(2, 3)
	if len(got) != 2 || got[0].Seq != 2 || got[1].Seq != 3 {
		t.Fatalf("unexpected surviving entries: %+v", got)
	}
}

func TestReplayBuffer_CopiesData(t *testing.T) {
	rb := NewReplayBuffer(2)

	data := []byte("original")
	rb.Push(1, data)
	data[0] = 'X'

	got := rb.Range(1, 1)
	if string(got[0].Data) != "original" {
		t.Fatalf("buffer aliased caller slice: %q", got[0].Data)
	}
}

func TestHub_BroadcastSeqAndMissed(t *testing.T) {
	h := NewHub(8)

	h.Broadcast("step", []byte(`{"n":1}`))
	h.Broadcast("step", []byte(`{"n":2}`))

	if h.Seq() != 2 {
		t.Fatalf("seq = %d, want 2", h.Seq())
	}
	missed := h.Missed(1, 2)
	if len(missed) != 2 {
		t.Fatalf("missed = %d envelopes, want 2", len(missed))
	}
}
