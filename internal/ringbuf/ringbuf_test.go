package ringbuf

import "testing"

func TestRing_BasicPushPop(t *testing.T) {
	r := New[string](4)

	if !r.Push("a") {
		t.Fatal("push a should succeed")
	}
	if !r.Push("b") {
		t.Fatal("push b should succeed")
	}

	if r.Len() != 2 {
		t.Fatalf("expected len=2, got %d", r.Len())
	}

	got, ok := r.Pop()
	if !ok || got != "a" {
		t.Fatalf("expected a, got %v ok=%v", got, ok)
	}

	got, ok = r.Pop()
	if !ok || got != "b" {
		t.Fatalf("expected b, got %v ok=%v", got, ok)
	}

	_, ok = r.Pop()
	if ok {
		t.Fatal("pop from empty should return false")
	}
}

func TestRing_Overflow(t *testing.T) {
	r := New[int](2)

	r.Push(1)
	r.Push(2)

	// Buffer is full
	if r.Push(3) {
		t.Fatal("push to full buffer should return false")
	}
	if r.Overflow() != 1 {
		t.Fatalf("expected overflow=1, got %d", r.Overflow())
	}
}

func TestRing_Wraparound(t *testing.T) {
	r := New[int](2)

	for round := 0; round < 5; round++ {
		r.Push(round * 10)
		r.Push(round*10 + 1)

		if v, _ := r.Pop(); v != round*10 {
			t.Fatalf("round %d: got %d", round, v)
		}
		if v, _ := r.Pop(); v != round*10+1 {
			t.Fatalf("round %d: got %d", round, v)
		}
	}
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := New[int](0)
	if !r.Push(1) {
		t.Fatal("ring with clamped capacity should accept one element")
	}
	if r.Push(2) {
		t.Fatal("second push should overflow")
	}
}
