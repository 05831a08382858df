package jobs

import (
	"context"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeRemover struct {
	removed []string
	err     error
}

func (f *fakeRemover) Remove(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, key)
	return nil
}

func TestStoragePurgeHandle(t *testing.T) {
	remover := &fakeRemover{}
	job := NewStoragePurgeJob(remover, slog.Default())

	task, err := NewStoragePurgeTask("product/old.png")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"product/old.png"}, remover.removed)
}

func TestStoragePurgeSkipsBadPayload(t *testing.T) {
	job := NewStoragePurgeJob(&fakeRemover{}, slog.Default())

	err := job.Handle(context.Background(), asynq.NewTask(TaskStoragePurge, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClientWithoutQueueRunsInline(t *testing.T) {
	remover := &fakeRemover{}
	client := NewClient(nil, remover)

	require.NoError(t, client.PurgeObject(context.Background(), "product/x.png"))
	require.Equal(t, []string{"product/x.png"}, remover.removed)
	require.NoError(t, client.Close())
}
