package scheduler

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/utkarsh5026/tpool/internal/types"
)

// Test helpers

// labeledTask creates a task that appends label to out when it runs.
func labeledTask(label int, out *[]int) *types.Task {
	return types.NewTask(func(int) {
		*out = append(*out, label)
	}, 0)
}

// drain pops every task from q and runs it on worker 0.
func drain(t *testing.T, q Queue) {
	t.Helper()
	for {
		task, ok := q.Pop()
		if !ok {
			return
		}
		if err := task.Run(0); err != nil {
			t.Fatalf("unexpected task error: %v", err)
		}
	}
}

func TestPriorityQueue_Empty(t *testing.T) {
	pq := NewPriority()

	if !pq.Empty() {
		t.Error("new queue should be empty")
	}

	task, ok := pq.Pop()
	if ok || task != nil {
		t.Errorf("expected (nil, false) from empty queue, got (%v, %v)", task, ok)
	}

	pq.Push(types.NewTask(func(int) {}, 0))
	if pq.Empty() {
		t.Error("queue should not be empty after push")
	}
	if pq.Len() != 1 {
		t.Errorf("expected length 1, got %d", pq.Len())
	}
}

func TestPriorityQueue_HigherPriorityFirst(t *testing.T) {
	tests := []struct {
		name       string
		priorities []int
		want       []int
	}{
		{
			name:       "ascending push order",
			priorities: []int{1, 2, 3, 4},
			want:       []int{3, 2, 1, 0},
		},
		{
			name:       "descending push order",
			priorities: []int{4, 3, 2, 1},
			want:       []int{0, 1, 2, 3},
		},
		{
			name:       "negative priorities go last",
			priorities: []int{-5, 0, 5},
			want:       []int{2, 1, 0},
		},
		{
			name:       "mixed with ties",
			priorities: []int{1, 5, 1},
			want:       []int{1, 0, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := NewPriority()
			var order []int

			for i, p := range tt.priorities {
				pq.PushPriority(labeledTask(i, &order), p)
			}
			drain(t, pq)

			if len(order) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d", len(tt.want), len(order))
			}
			for i := range tt.want {
				if order[i] != tt.want[i] {
					t.Fatalf("expected order %v, got %v", tt.want, order)
				}
			}
		})
	}
}

func TestPriorityQueue_DefaultPushIsPriorityZero(t *testing.T) {
	pq := NewPriority()
	var order []int

	pq.PushPriority(labeledTask(0, &order), -1)
	pq.Push(labeledTask(1, &order))
	pq.PushPriority(labeledTask(2, &order), 1)
	pq.Push(labeledTask(3, &order))

	drain(t, pq)

	want := []int{2, 1, 3, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestPriorityQueue_StableWithinPriority(t *testing.T) {
	pq := NewPriority()
	var order []int

	const n = 500
	for i := range n {
		pq.PushPriority(labeledTask(i, &order), i%3)
	}
	drain(t, pq)

	// Expected: all priority-2 tasks in push order, then priority 1, then 0.
	var want []int
	for p := 2; p >= 0; p-- {
		for i := range n {
			if i%3 == p {
				want = append(want, i)
			}
		}
	}

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("position %d: expected %d, got %d", i, want[i], order[i])
		}
	}
}

func TestPriorityQueue_SequenceWraparound(t *testing.T) {
	starts := []uint32{
		math.MaxUint32 - 3,
		math.MaxUint32,
		halfRange - 2,
		0,
	}

	for _, start := range starts {
		pq := newPriorityQueue()
		pq.stamp.reset(start)

		var order []int
		for i := range 8 {
			pq.PushPriority(labeledTask(i, &order), 7)
		}
		drain(t, pq)

		for i := range 8 {
			if order[i] != i {
				t.Fatalf("start=%d: expected push order, got %v", start, order)
			}
		}
	}
}

func TestPriorityQueue_WraparoundWithMixedPriorities(t *testing.T) {
	pq := newPriorityQueue()
	pq.stamp.reset(math.MaxUint32 - 1)

	var order []int
	// stamps: MaxUint32-1, MaxUint32, 0, 1, 2
	pq.PushPriority(labeledTask(0, &order), 1)
	pq.PushPriority(labeledTask(1, &order), 2)
	pq.PushPriority(labeledTask(2, &order), 1)
	pq.PushPriority(labeledTask(3, &order), 2)
	pq.PushPriority(labeledTask(4, &order), 1)

	drain(t, pq)

	want := []int{1, 3, 0, 2, 4}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestTaskHeap_RandomizedAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := range 20 {
		start := rng.Uint32()
		var h taskHeap
		var entries []prioritizedTask

		for i := range 200 {
			e := prioritizedTask{priority: rng.Intn(5), seq: start + uint32(i)}
			entries = append(entries, e)
			heap.Push(&h, e)
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].priority > entries[j].priority
		})

		for i, want := range entries {
			got, _ := heap.Pop(&h).(prioritizedTask)
			if got.priority != want.priority || got.seq != want.seq {
				t.Fatalf("round %d pos %d: expected (p=%d, seq=%d), got (p=%d, seq=%d)",
					round, i, want.priority, want.seq, got.priority, got.seq)
			}
		}
	}
}

func TestPriorityQueue_ConcurrentPushPop(t *testing.T) {
	pq := NewPriority()

	const producers = 8
	const perProducer = 250

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				pq.PushPriority(types.NewTask(func(int) {}, 0), (p+i)%4)
			}
		}()
	}

	var popped sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for range 4 {
		popped.Add(1)
		go func() {
			defer popped.Done()
			for range perProducer {
				if _, ok := pq.Pop(); ok {
					mu.Lock()
					total++
					mu.Unlock()
				}
			}
		}()
	}

	wg.Wait()
	popped.Wait()

	for {
		if _, ok := pq.Pop(); !ok {
			break
		}
		total++
	}

	if total != producers*perProducer {
		t.Errorf("expected %d tasks, got %d", producers*perProducer, total)
	}
	if !pq.Empty() {
		t.Error("queue should be empty after draining")
	}
}
