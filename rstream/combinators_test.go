package rstream

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

func TestMapUnorderedPreservesValues(t *testing.T) {
	ctx := context.Background()
	in := FromSlice([]int{1, 2, 3, 4, 5})

	out := MapUnordered(ctx, DefaultPool(), in, 2, func(_ context.Context, v int) (int, error) {
		return v * 2, nil
	})

	got, err := Collect(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Ints(got)
	want := []int{2, 4, 6, 8, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMapUnorderedPropagatesPerItemErrors(t *testing.T) {
	ctx := context.Background()
	in := make(chan Result[int], 3)
	in <- Ok(1)
	in <- Err[int](errors.New("boom"))
	in <- Ok(3)
	close(in)

	out := MapUnordered(ctx, DefaultPool(), in, 2, func(_ context.Context, v int) (int, error) {
		return v, nil
	})

	values, err := Collect(out)
	if err == nil {
		t.Fatal("expected propagated error")
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 successful items to survive the error, got %d", len(values))
	}
}

func TestMapOrderedFlatPreservesOrder(t *testing.T) {
	ctx := context.Background()
	in := FromSlice([]int{1, 2, 3})

	out := MapOrderedFlat(ctx, in, func(_ context.Context, v int) ([]int, error) {
		return []int{v, v * 10}, nil
	})

	got, err := Collect(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 10, 2, 20, 3, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order not preserved: got %v want %v", got, want)
		}
	}
}

func TestBatchFlushesOnSize(t *testing.T) {
	ctx := context.Background()
	in := FromSlice([]int{1, 2, 3, 4})

	batches := Batch(ctx, in, 2, time.Second)

	var got [][]int
	for b := range batches {
		vals := make([]int, len(b))
		for i, r := range b {
			vals[i] = r.Value
		}
		got = append(got, vals)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 batches of size 2, got %v", got)
	}
}

func TestBatchFlushesPartialOnClose(t *testing.T) {
	ctx := context.Background()
	in := FromSlice([]int{1, 2, 3})

	batches := Batch(ctx, in, 10, time.Second)

	var total int
	for b := range batches {
		total += len(b)
	}
	if total != 3 {
		t.Fatalf("expected all 3 items flushed on close, got %d", total)
	}
}

func TestFilterErrorsDropsErrors(t *testing.T) {
	ctx := context.Background()
	in := make(chan Result[int], 2)
	in <- Ok(1)
	in <- Err[int](errors.New("bad"))
	close(in)

	out := FilterErrors(ctx, in)
	got, err := Collect(out)
	if err != nil {
		t.Fatalf("filter_errors must not surface errors: %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only the ok item to survive, got %v", got)
	}
}

func TestLogErrorsPassesThrough(t *testing.T) {
	ctx := context.Background()
	in := make(chan Result[int], 2)
	in <- Ok(1)
	in <- Err[int](errors.New("bad"))
	close(in)

	var logged []error
	out := LogErrors(ctx, in, ErrorLoggerFunc(func(err error) {
		logged = append(logged, err)
	}))

	_, err := Collect(out)
	if err == nil {
		t.Fatal("log_errors must still propagate the error downstream")
	}
	if len(logged) != 1 {
		t.Fatalf("expected exactly one logged error, got %d", len(logged))
	}
}

func TestRunCountsSuccessesAndFirstError(t *testing.T) {
	in := make(chan Result[int], 3)
	in <- Ok(1)
	in <- Err[int](errors.New("x"))
	in <- Ok(2)
	close(in)

	count, _, err := Run(in)
	if count != 2 {
		t.Fatalf("expected 2 successes, got %d", count)
	}
	if err == nil {
		t.Fatal("expected first error to be reported")
	}
}
