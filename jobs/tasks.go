package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan is the task type for the scheduled low-stock scan.
	TaskLowStockScan = "inventory:lowstock_scan"
)

// LowStockScanPayload tunes a single scan run. A zero Threshold means
// "use the configured store threshold".
type LowStockScanPayload struct {
	Threshold int `json:"threshold,omitempty"`
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
