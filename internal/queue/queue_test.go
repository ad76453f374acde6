package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	for i := range 200 {
		q.Push(i)
	}
	if q.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", q.Len())
	}
	for i := range 200 {
		v, ok := q.Pop()
		if !ok || v != i {
			t.Fatalf("Pop() = %d, %v, want %d", v, ok, i)
		}
		// Interleave pushes to exercise compaction.
		if i%3 == 0 {
			q.Push(1000 + i)
		}
	}
	prev := -1
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		if v <= prev {
			t.Fatalf("order broken: %d after %d", v, prev)
		}
		prev = v
	}
}

func TestQueue_ReadySignal(t *testing.T) {
	q := New[string]()
	select {
	case <-q.Ready():
		t.Fatal("Ready() signaled on empty queue")
	default:
	}
	q.Push("a")
	q.Push("b")
	select {
	case <-q.Ready():
	default:
		t.Fatal("Ready() not signaled after Push")
	}
	if got := q.Drain(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Drain() = %v", got)
	}
}

func TestQueue_WaitContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := q.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline", err)
	}
}

func TestQueue_CloseWakesWaiter(t *testing.T) {
	q := New[int]()
	q.Push(7)
	errc := make(chan error, 1)
	go func() {
		if v, err := q.Wait(context.Background()); err != nil || v != 7 {
			errc <- errors.New("first Wait did not return queued value")
			return
		}
		_, err := q.Wait(context.Background())
		errc <- err
	}()
	q.Close()
	if q.Push(8) {
		t.Error("Push() accepted on closed queue")
	}
	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Wait() error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Close")
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := New[int]()
	const producers, each = 8, 500
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				q.Push(p*each + i)
			}
		}()
	}

	seen := make(map[int]bool)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for len(seen) < producers*each {
		v, err := q.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait() error = %v after %d values", err, len(seen))
		}
		if seen[v] {
			t.Fatalf("value %d delivered twice", v)
		}
		seen[v] = true
	}
	wg.Wait()
}
