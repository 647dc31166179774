package domain

import "time"

type TaskKind string

const (
	TaskConfirmOrder TaskKind = "confirm_order"
	TaskShipOrder    TaskKind = "ship_order"
)

// Task is a delayed supplier-side action waiting in the outbox.
type Task struct {
	ID              string    `json:"id"`
	Kind            TaskKind  `json:"kind"`
	SupplierOrderID string    `json:"supplierOrderId"`
	Attempts        int       `json:"attempts"`
	DueAt           time.Time `json:"dueAt"`
	LastError       string    `json:"lastError,omitempty"`
}
