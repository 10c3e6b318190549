package ticket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"concierge/models"
	"concierge/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestCreateComplaint(t *testing.T) {
	repo := NewMemoryRepo()
	q := &fakeEnqueuer{}
	svc := NewService(repo, q, nil)

	reply, err := svc.Create(context.Background(), "guest-1", models.IntentComplaint, "Oda çok gürültülü")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Yaşadığınız sorun için"))
	assert.Equal(t, 1, repo.Count())

	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypeTicketNotify, q.tasks[0].Type())
	payload, err := tasks.ParseTicketNotify(q.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "guest-1", payload.UserID)
	assert.Equal(t, "şikayet", payload.Intent)

	stored, err := repo.Get(context.Background(), payload.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "Oda çok gürültülü", stored.Message)
	assert.Equal(t, models.TicketStatusOpen, stored.Status)
	assert.Contains(t, reply, "#"+ShortID(stored.ID))
}

func TestCreateFeedbackWithoutQueue(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil, nil)

	reply, err := svc.Create(context.Background(), "guest-2", models.IntentFeedback, "Kahvaltı harikaydı")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Geri bildiriminiz için teşekkür ederiz!"))
	assert.Equal(t, 1, repo.Count())
}

func TestCreateSurvivesQueueFailure(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, &fakeEnqueuer{err: errors.New("redis down")}, nil)

	_, err := svc.Create(context.Background(), "guest", models.IntentComplaint, "klima çalışmıyor")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Count())
}

func TestCreateRejectsOtherIntents(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil, nil)
	_, err := svc.Create(context.Background(), "guest", models.IntentGreeting, "merhaba")
	assert.Error(t, err)
}

func TestMemoryRepoMarkNotified(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, &models.Ticket{ID: "abc"}))
	assert.Error(t, repo.Create(ctx, &models.Ticket{ID: "abc"}))

	at := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkNotified(ctx, "abc", at))
	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got.NotifiedAt)
	assert.Equal(t, at, *got.NotifiedAt)

	assert.ErrorIs(t, repo.MarkNotified(ctx, "missing", at), ErrNotFound)
	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "1B4E28BA", ShortID("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.Equal(t, "AB", ShortID("ab"))
}
