package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/email"
	"github.com/Togather-Foundation/booking/internal/storage"
	"github.com/Togather-Foundation/booking/internal/storage/storagetest"
)

type recalculator struct{ mock.Mock }

func (r *recalculator) Recalculate(ctx context.Context, djID string) (*booking.FinancialData, error) {
	args := r.Called(djID)
	data, _ := args.Get(0).(*booking.FinancialData)
	return data, args.Error(1)
}

type mailer struct{ mock.Mock }

func (m *mailer) SendAccessCode(ctx context.Context, to, companyName, accessCode string) error {
	return m.Called(to, companyName, accessCode).Error(0)
}

func jobOf[T river.JobArgs](args T) *river.Job[T] {
	return &river.Job[T]{JobRow: &rivertype.JobRow{ID: 1, Attempt: 1, MaxAttempts: 3}, Args: args}
}

func strptr(s string) *string { return &s }

func TestArgsKinds(t *testing.T) {
	assert.Equal(t, JobKindRecalculateFinancials, RecalculateFinancialsArgs{}.Kind())
	assert.Equal(t, JobKindAccessCodeEmail, AccessCodeEmailArgs{}.Kind())
	assert.Equal(t, JobKindRollupFinancials, RollupFinancialsArgs{}.Kind())
}

func TestRecalculateFinancialsWorker(t *testing.T) {
	t.Run("recalculates", func(t *testing.T) {
		r := &recalculator{}
		r.On("Recalculate", "dj-1").Return(&booking.FinancialData{DJID: "dj-1", TotalEarnings: 1200}, nil)
		w := RecalculateFinancialsWorker{Financials: r, Logger: zerolog.Nop()}

		require.NoError(t, w.Work(context.Background(), jobOf(RecalculateFinancialsArgs{DJID: "dj-1"})))
		r.AssertExpectations(t)
	})

	t.Run("deleted dj cancels", func(t *testing.T) {
		r := &recalculator{}
		r.On("Recalculate", "gone").Return(nil, storage.ErrNotFound)
		w := RecalculateFinancialsWorker{Financials: r, Logger: zerolog.Nop()}

		err := w.Work(context.Background(), jobOf(RecalculateFinancialsArgs{DJID: "gone"}))
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		var cancel *rivertype.JobCancelError
		assert.ErrorAs(t, err, &cancel)
	})

	t.Run("transient error retries", func(t *testing.T) {
		r := &recalculator{}
		r.On("Recalculate", "dj-1").Return(nil, errors.New("connection reset"))
		w := RecalculateFinancialsWorker{Financials: r, Logger: zerolog.Nop()}

		err := w.Work(context.Background(), jobOf(RecalculateFinancialsArgs{DJID: "dj-1"}))
		require.Error(t, err)
		var cancel *rivertype.JobCancelError
		assert.False(t, errors.As(err, &cancel))
	})

	t.Run("unconfigured", func(t *testing.T) {
		err := RecalculateFinancialsWorker{}.Work(context.Background(), jobOf(RecalculateFinancialsArgs{DJID: "dj-1"}))
		assert.Error(t, err)
	})
}

func TestAccessCodeEmailWorker(t *testing.T) {
	producer := &booking.Producer{
		ID:          "p1",
		Name:        "Festa Boa",
		CompanyName: strptr("Festa Boa Produções"),
		Email:       "festa@example.com",
		AccessCode:  strptr("FESTA2024"),
	}

	newWorker := func(repo *storagetest.Repository, m *mailer) AccessCodeEmailWorker {
		return AccessCodeEmailWorker{Producers: repo.Producers(), Mailer: m, Logger: zerolog.Nop()}
	}

	t.Run("sends current code", func(t *testing.T) {
		repo := storagetest.NewRepository()
		repo.ProducerRepo.On("Get", mock.Anything, "p1").Return(producer, nil)
		m := &mailer{}
		m.On("SendAccessCode", "festa@example.com", "Festa Boa Produções", "FESTA2024").Return(nil)

		require.NoError(t, newWorker(repo, m).Work(context.Background(), jobOf(AccessCodeEmailArgs{ProducerID: "p1"})))
		m.AssertExpectations(t)
	})

	t.Run("falls back to producer name", func(t *testing.T) {
		noCompany := *producer
		noCompany.CompanyName = nil
		repo := storagetest.NewRepository()
		repo.ProducerRepo.On("Get", mock.Anything, "p1").Return(&noCompany, nil)
		m := &mailer{}
		m.On("SendAccessCode", "festa@example.com", "Festa Boa", "FESTA2024").Return(nil)

		require.NoError(t, newWorker(repo, m).Work(context.Background(), jobOf(AccessCodeEmailArgs{ProducerID: "p1"})))
		m.AssertExpectations(t)
	})

	t.Run("no code cancels", func(t *testing.T) {
		noCode := *producer
		noCode.AccessCode = nil
		repo := storagetest.NewRepository()
		repo.ProducerRepo.On("Get", mock.Anything, "p1").Return(&noCode, nil)
		m := &mailer{}

		err := newWorker(repo, m).Work(context.Background(), jobOf(AccessCodeEmailArgs{ProducerID: "p1"}))
		var cancel *rivertype.JobCancelError
		assert.ErrorAs(t, err, &cancel)
		m.AssertNotCalled(t, "SendAccessCode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rate limit snoozes", func(t *testing.T) {
		repo := storagetest.NewRepository()
		repo.ProducerRepo.On("Get", mock.Anything, "p1").Return(producer, nil)
		m := &mailer{}
		m.On("SendAccessCode", mock.Anything, mock.Anything, mock.Anything).
			Return(fmt.Errorf("resend: %w", email.ErrRateLimited))

		err := newWorker(repo, m).Work(context.Background(), jobOf(AccessCodeEmailArgs{ProducerID: "p1"}))
		var snooze *rivertype.JobSnoozeError
		require.ErrorAs(t, err, &snooze)
		assert.Equal(t, RateLimitBackoff, snooze.Duration)
	})

	t.Run("bad recipient cancels", func(t *testing.T) {
		repo := storagetest.NewRepository()
		repo.ProducerRepo.On("Get", mock.Anything, "p1").Return(producer, nil)
		m := &mailer{}
		m.On("SendAccessCode", mock.Anything, mock.Anything, mock.Anything).Return(email.ErrInvalidRecipient)

		err := newWorker(repo, m).Work(context.Background(), jobOf(AccessCodeEmailArgs{ProducerID: "p1"}))
		var cancel *rivertype.JobCancelError
		assert.ErrorAs(t, err, &cancel)
	})

	t.Run("missing producer cancels", func(t *testing.T) {
		repo := storagetest.NewRepository()
		repo.ProducerRepo.On("Get", mock.Anything, "p9").Return(nil, storage.ErrNotFound)

		err := newWorker(repo, &mailer{}).Work(context.Background(), jobOf(AccessCodeEmailArgs{ProducerID: "p9"}))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestRollupFinancialsWorker(t *testing.T) {
	repo := storagetest.NewRepository()
	repo.DJRepo.On("ActiveIDs", mock.Anything).Return([]string{"d1", "d2", "d3"}, nil)
	enq := &storagetest.Enqueuer{}
	enq.On("EnqueueFinancials", mock.Anything, []string{"d1", "d2", "d3"}).Return(nil)

	w := RollupFinancialsWorker{DJs: repo.DJs(), Enqueuer: enq, Logger: zerolog.Nop()}
	require.NoError(t, w.Work(context.Background(), jobOf(RollupFinancialsArgs{})))
	enq.AssertExpectations(t)

	t.Run("list failure", func(t *testing.T) {
		repo := storagetest.NewRepository()
		repo.DJRepo.On("ActiveIDs", mock.Anything).Return(nil, errors.New("db down"))
		w := RollupFinancialsWorker{DJs: repo.DJs(), Enqueuer: &storagetest.Enqueuer{}, Logger: zerolog.Nop()}
		assert.Error(t, w.Work(context.Background(), jobOf(RollupFinancialsArgs{})))
	})
}

func TestNewWorkers(t *testing.T) {
	assert.NotNil(t, NewWorkers(Deps{Logger: zerolog.Nop()}))
}
