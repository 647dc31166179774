package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/platform/idempotency"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/robfig/cron/v3"
)

const (
	claimScope  = "supplier-task"
	batchSize   = 50
	maxBackoff  = 5 * time.Minute
	baseBackoff = time.Second
)

// ErrPermanent marks a task failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent task failure")

// Handler executes one task. A nil error completes it.
type Handler func(ctx context.Context, task domain.Task) error

type Dispatcher struct {
	queue       Queue
	claims      idempotency.Store
	handle      Handler
	maxAttempts int
	scheduler   *cron.Cron
	now         func() time.Time
}

func NewDispatcher(queue Queue, claims idempotency.Store, handle Handler, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		queue:       queue,
		claims:      claims,
		handle:      handle,
		maxAttempts: maxAttempts,
		scheduler:   cron.New(cron.WithSeconds()),
		now:         time.Now,
	}
}

// Backoff doubles from one second per attempt, capped at five minutes.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 10 {
		return maxBackoff
	}
	d := baseBackoff * time.Duration(1<<uint(attempt-1))
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// RunOnce drains due tasks and returns how many completed.
func (d *Dispatcher) RunOnce(ctx context.Context) int {
	tasks, err := d.queue.Due(ctx, d.now(), batchSize)
	if err != nil {
		logger.Error("Outbox: fetching due tasks failed", err)
	}
	done := 0
	for _, task := range tasks {
		if d.run(ctx, task) {
			done++
		}
	}
	return done
}

func (d *Dispatcher) run(ctx context.Context, task domain.Task) bool {
	claimed, err := d.claims.Claim(ctx, claimScope, task.ID, idempotency.DefaultTTL)
	if err != nil {
		logger.Error("Outbox: claim failed for task "+task.ID, err)
		d.retry(ctx, task, err)
		return false
	}
	if !claimed {
		logger.Debug("Outbox: task %s already processed, skipping", task.ID)
		return false
	}

	err = d.handle(ctx, task)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrPermanent) {
		logger.Warn("Outbox: dropping task %s (%s): %v", task.ID, task.Kind, err)
		return false
	}
	if relErr := d.claims.Release(ctx, claimScope, task.ID); relErr != nil {
		logger.Error("Outbox: releasing claim failed for task "+task.ID, relErr)
	}
	d.retry(ctx, task, err)
	return false
}

func (d *Dispatcher) retry(ctx context.Context, task domain.Task, cause error) {
	task.Attempts++
	task.LastError = cause.Error()
	if task.Attempts >= d.maxAttempts {
		logger.Error("Outbox: task "+task.ID+" gave up", cause, map[string]interface{}{
			"kind":              task.Kind,
			"supplier_order_id": task.SupplierOrderID,
			"attempts":          task.Attempts,
		})
		return
	}
	task.DueAt = d.now().Add(Backoff(task.Attempts))
	if err := d.queue.Enqueue(ctx, task); err != nil {
		logger.Error("Outbox: re-enqueue failed for task "+task.ID, err)
	}
}

func (d *Dispatcher) Start(spec string) error {
	if spec == "" {
		spec = "@every 1s"
	}
	_, err := d.scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Outbox: invalid dispatcher schedule "+spec, err)
		return err
	}
	d.scheduler.Start()
	logger.Info("Outbox dispatcher started (%s)", spec)
	return nil
}

// Stop waits for a running batch to finish.
func (d *Dispatcher) Stop() {
	<-d.scheduler.Stop().Done()
	logger.Info("Outbox dispatcher stopped")
}
