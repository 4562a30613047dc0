package media

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
	"github.com/Togather-Foundation/booking/internal/storage/storagetest"
)

const djID = "0b4f6a2c-1b7a-4a36-9d0e-3c1a9e5b7d01"

func TestListFiltersForProdutor(t *testing.T) {
	repo := storagetest.NewRepository()
	repo.MediaRepo.On("List", mock.Anything, storage.MediaFilter{}).Return([]booking.Media{
		{ID: "m1", DJID: "d1"},
		{ID: "m2", DJID: "d2"},
		{ID: "m3", EventID: "e1"},
		{ID: "m4", EventID: "e9"},
	}, nil)
	repo.EventRepo.On("List", mock.Anything, storage.EventFilter{ProducerID: "p1"}).
		Return([]booking.Event{{ID: "e1", DJID: "d1", ProducerID: "p1"}}, nil)

	u := access.User{Role: auth.RoleProdutor, ProducerID: "p1"}
	got, err := NewService(repo, zerolog.Nop()).List(context.Background(), u, storage.MediaFilter{})
	require.NoError(t, err)

	var ids []string
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m1", "m3"}, ids)
}

func TestListDJRoleEmpty(t *testing.T) {
	repo := storagetest.NewRepository()
	got, err := NewService(repo, zerolog.Nop()).List(context.Background(), access.User{Role: auth.RoleDJ}, storage.MediaFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertExpectations(t)
}

func TestCreate(t *testing.T) {
	admin := access.User{Role: auth.RoleAdmin}
	svc := func(repo *storagetest.Repository) *Service { return NewService(repo, zerolog.Nop()) }

	t.Run("needs an owner", func(t *testing.T) {
		_, err := svc(storagetest.NewRepository()).Create(context.Background(), admin, booking.MediaInput{
			FileURL: "https://cdn.example.com/a.jpg", FileType: booking.MediaImage, Title: "Press",
		})
		verr, ok := booking.IsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "dj_id")
	})

	t.Run("defaults category", func(t *testing.T) {
		repo := storagetest.NewRepository()
		repo.MediaRepo.On("Create", mock.Anything, mock.MatchedBy(func(m booking.Media) bool {
			return m.Category == booking.CategoryOther && m.DJID == djID
		})).Return(&booking.Media{ID: "m1", Category: booking.CategoryOther}, nil)

		_, err := svc(repo).Create(context.Background(), admin, booking.MediaInput{
			DJID: djID, FileURL: "https://cdn.example.com/a.jpg", FileType: booking.MediaImage, Title: "Press",
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("produtor forbidden", func(t *testing.T) {
		_, err := svc(storagetest.NewRepository()).Create(context.Background(), access.User{Role: auth.RoleProdutor, ProducerID: "p1"}, booking.MediaInput{})
		assert.ErrorIs(t, err, booking.ErrForbidden)
	})
}
