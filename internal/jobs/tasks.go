// Package jobs wires the asynq queue: task constructors, the enqueue client
// and the worker that drains the queue.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue background tasks land on.
	QueueDefault = "default"
	// TaskStoragePurge removes an orphaned object from the bucket.
	TaskStoragePurge = "storage:purge"
)

// StoragePurgePayload names the object to delete.
type StoragePurgePayload struct {
	Key string `json:"key"`
}

// NewStoragePurgeTask constructs a purge task.
func NewStoragePurgeTask(key string) (*asynq.Task, error) {
	data, err := json.Marshal(StoragePurgePayload{Key: key})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStoragePurge, data), nil
}

// ObjectRemover deletes one stored object by key.
type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

// StoragePurgeJob processes TaskStoragePurge tasks.
type StoragePurgeJob struct {
	store  ObjectRemover
	logger *slog.Logger
}

// NewStoragePurgeJob builds the purge handler.
func NewStoragePurgeJob(store ObjectRemover, logger *slog.Logger) *StoragePurgeJob {
	return &StoragePurgeJob{store: store, logger: logger}
}

// Handle deletes the object named by the task payload.
func (j *StoragePurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StoragePurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.store.Remove(ctx, payload.Key); err != nil {
		j.logger.WarnContext(ctx, "storage purge failed",
			slog.String("key", payload.Key), slog.Any("error", err))
		return err
	}
	j.logger.InfoContext(ctx, "object purged", slog.String("key", payload.Key))
	return nil
}
