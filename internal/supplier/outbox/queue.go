package outbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
)

// Queue holds delayed tasks. Due removes and returns tasks whose DueAt is not after now,
// so a task handed to one dispatcher is not handed to another.
type Queue interface {
	Enqueue(ctx context.Context, task domain.Task) error
	Due(ctx context.Context, now time.Time, limit int) ([]domain.Task, error)
	Len(ctx context.Context) (int, error)
}

type memoryQueue struct {
	mu    sync.Mutex
	tasks []domain.Task
}

func NewMemoryQueue() Queue {
	return &memoryQueue{}
}

func (q *memoryQueue) Enqueue(_ context.Context, task domain.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := sort.Search(len(q.tasks), func(i int) bool { return q.tasks[i].DueAt.After(task.DueAt) })
	q.tasks = append(q.tasks, domain.Task{})
	copy(q.tasks[i+1:], q.tasks[i:])
	q.tasks[i] = task
	return nil
}

func (q *memoryQueue) Due(_ context.Context, now time.Time, limit int) ([]domain.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(q.tasks) && !q.tasks[n].DueAt.After(now) && (limit <= 0 || n < limit) {
		n++
	}
	due := append([]domain.Task(nil), q.tasks[:n]...)
	q.tasks = append(q.tasks[:0], q.tasks[n:]...)
	return due, nil
}

func (q *memoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks), nil
}
