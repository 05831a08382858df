package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client submits tasks to the queue. A nil inner client performs the work
// inline, so the API keeps functioning without a queue backend.
type Client struct {
	client *asynq.Client
	store  ObjectRemover
}

// NewClient constructs a queue client. Pass a nil asynq client to run purges
// synchronously against the store.
func NewClient(client *asynq.Client, store ObjectRemover) *Client {
	return &Client{client: client, store: store}
}

// PurgeObject schedules the removal of a bucket object.
func (c *Client) PurgeObject(ctx context.Context, key string) error {
	if c.client == nil {
		return c.store.Remove(ctx, key)
	}
	task, err := NewStoragePurgeTask(key)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}

// Close releases queue resources.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
