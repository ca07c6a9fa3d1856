package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

func TestMemoryQueue_DeliversInFIFOOrder(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, domain.DispatchJob{ID: "a"}))
	require.NoError(t, q.Enqueue(ctx, domain.DispatchJob{ID: "b"}))

	var got []string
	err := q.Consume(ctx, func(ctx context.Context, job domain.DispatchJob) error {
		got = append(got, job.ID)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestMemoryQueue_HandlerErrorRequeuesJob(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.DispatchJob{ID: "retry-me"}))

	boom := errors.New("db down")
	err := q.Consume(ctx, func(ctx context.Context, job domain.DispatchJob) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, q.Len(), "failed job should be back on the queue")
}

func TestMemoryQueue_EnqueueAfterCloseFails(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())

	err := q.Enqueue(context.Background(), domain.DispatchJob{ID: "late"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryQueue_EnqueueRespectsContextWhenFull(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), domain.DispatchJob{ID: "fills"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.Enqueue(ctx, domain.DispatchJob{ID: "blocked"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEncodeDecode_PreservesRenderedJob(t *testing.T) {
	job := domain.DispatchJob{
		ID:        "job-1",
		Channel:   domain.ChannelSMS,
		Recipient: "+15550001111",
		Message:   "Hi Asha, your code is 482913",
		Provider:  domain.ProviderRef{ID: 3, BaseURL: "https://sms.example.com", Params: "to=[NUMBER]", Method: "GET"},
	}

	data, err := encode(job)
	require.NoError(t, err)

	decoded, err := decode(data)
	require.NoError(t, err)
	assert.Equal(t, job.Message, decoded.Message)
	assert.Equal(t, job.Provider, decoded.Provider)
}
