package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"concierge/models"
	"concierge/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("ticket not found")

// Repository persists tickets.
type Repository interface {
	Create(ctx context.Context, t *models.Ticket) error
	Get(ctx context.Context, id string) (*models.Ticket, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

const (
	msgComplaint = "Yaşadığınız sorun için çok üzgünüz. Talebiniz #%s numarasıyla kaydedildi, ekibimiz en kısa sürede sizinle iletişime geçecek."
	msgFeedback  = "Geri bildiriminiz için teşekkür ederiz! Kayıt numaranız: #%s"
)

// Service records complaints and feedback and tells the front desk.
type Service struct {
	repo     Repository
	enqueuer Enqueuer
	logger   *zap.Logger
	now      func() time.Time
}

// NewService builds the ticket service. enqueuer may be nil, in which case
// tickets are stored but nobody is notified.
func NewService(repo Repository, enqueuer Enqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger, now: time.Now}
}

// ShortID is the guest-facing ticket number.
func ShortID(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 8 {
		s = s[:8]
	}
	return strings.ToUpper(s)
}

// Create stores a ticket for a complaint or feedback and returns the reply.
func (s *Service) Create(ctx context.Context, userID string, intent models.Intent, message string) (string, error) {
	var template string
	switch intent {
	case models.IntentComplaint:
		template = msgComplaint
	case models.IntentFeedback:
		template = msgFeedback
	default:
		return "", fmt.Errorf("ticket: unsupported intent %s", intent)
	}

	t := &models.Ticket{
		ID:        uuid.NewString(),
		UserID:    userID,
		Intent:    intent.String(),
		Message:   message,
		Status:    models.TicketStatusOpen,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return "", fmt.Errorf("create ticket: %w", err)
	}
	s.logger.Info("Ticket created",
		zap.String("ticketID", t.ID), zap.String("userID", userID), zap.String("intent", t.Intent))

	if s.enqueuer != nil {
		task, opts, err := tasks.NewTicketNotifyTask(models.TicketNotifyPayload{
			TicketID: t.ID, UserID: userID, Intent: t.Intent,
		})
		if err == nil {
			_, err = s.enqueuer.EnqueueContext(ctx, task, opts...)
		}
		// The ticket is stored; a lost notification is logged, not surfaced.
		if err != nil {
			s.logger.Error("Failed to enqueue ticket notification", zap.String("ticketID", t.ID), zap.Error(err))
		}
	}

	return fmt.Sprintf(template, ShortID(t.ID)), nil
}

// MemoryRepo keeps tickets in process.
type MemoryRepo struct {
	mu      sync.RWMutex
	tickets map[string]models.Ticket
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tickets: make(map[string]models.Ticket)}
}

func (m *MemoryRepo) Create(ctx context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tickets[t.ID]; exists {
		return fmt.Errorf("ticket %s already exists", t.ID)
	}
	m.tickets[t.ID] = *t
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryRepo) MarkNotified(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return ErrNotFound
	}
	t.NotifiedAt = &at
	m.tickets[id] = t
	return nil
}

func (m *MemoryRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tickets)
}
