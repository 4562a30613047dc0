package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/audit"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage/postgres"
	"github.com/Togather-Foundation/booking/internal/testutil/pgtest"
)

// setupTestDB starts a throwaway PostgreSQL server with the app schema.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	db := pgtest.Start(t, func(url string) error { return postgres.MigrateUp(url, "") })
	return db.Pool
}

func TestAccountLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	repo, err := postgres.NewRepository(pool)
	require.NoError(t, err)
	jwt := auth.NewJWTManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour, "booking-test")
	svc := NewService(repo, jwt, nil, audit.NewLogger(zerolog.Nop()), zerolog.Nop())

	changed, err := svc.BootstrapAdmin(ctx, "root@example.com", "bootstrap-pass", "Root")
	require.NoError(t, err)
	require.True(t, changed)

	var producerID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO producers (company_name, contact_email, access_code) VALUES ('Festa Boa', 'festa@example.com', 'FESTA2024') RETURNING id`,
	).Scan(&producerID))

	profile, err := svc.SignUp(ctx, booking.SignUpInput{
		Email:      "maria@example.com",
		Password:   "s3nha-segura",
		FullName:   "Maria Silva",
		AccessCode: "festa2024",
	})
	require.NoError(t, err)
	assert.Equal(t, "produtor", profile.Role)
	assert.Equal(t, producerID, profile.ProducerID)

	_, err = svc.SignUp(ctx, booking.SignUpInput{Email: "MARIA@example.com", Password: "another-pass", FullName: "Maria"})
	assert.ErrorIs(t, err, booking.ErrConflict)

	session, err := svc.Login(ctx, booking.LoginInput{Email: "maria@example.com", Password: "s3nha-segura"})
	require.NoError(t, err)
	claims, err := jwt.Validate(session.Token)
	require.NoError(t, err)

	user, err := svc.Resolve(ctx, claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleProdutor, user.Role)
	assert.Equal(t, producerID, user.ProducerID)

	rootSession, err := svc.Login(ctx, booking.LoginInput{Email: "root@example.com", Password: "bootstrap-pass"})
	require.NoError(t, err)
	root, err := svc.Resolve(ctx, rootSession.Profile.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, root, root.ID, booking.RoleUpdate{Role: "dj"})
	assert.ErrorIs(t, err, booking.ErrConflict)

	demoted, err := svc.UpdateRole(ctx, root, user.ID, booking.RoleUpdate{Role: "dj"})
	require.NoError(t, err)
	assert.Equal(t, "dj", demoted.Role)
	assert.Empty(t, demoted.ProducerID)
}

func TestConcurrentDemotionsKeepOneAdmin(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	repo, err := postgres.NewRepository(pool)
	require.NoError(t, err)
	jwt := auth.NewJWTManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour, "booking-test")
	svc := NewService(repo, jwt, nil, audit.NewLogger(zerolog.Nop()), zerolog.Nop())

	_, err = svc.BootstrapAdmin(ctx, "root@example.com", "bootstrap-pass", "Root")
	require.NoError(t, err)
	rootProfile, err := repo.Profiles().GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	root, err := svc.Resolve(ctx, rootProfile.ID)
	require.NoError(t, err)

	second, err := svc.SignUp(ctx, booking.SignUpInput{Email: "ana@example.com", Password: "s3nha-segura", FullName: "Ana"})
	require.NoError(t, err)
	_, err = svc.UpdateRole(ctx, root, second.ID, booking.RoleUpdate{Role: "admin"})
	require.NoError(t, err)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{root.ID, second.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = svc.UpdateRole(ctx, root, id, booking.RoleUpdate{Role: "dj"})
		}()
	}
	close(start)
	wg.Wait()

	var conflicts int
	for _, err := range errs {
		if errors.Is(err, booking.ErrConflict) {
			conflicts++
		} else {
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 1, conflicts)

	admins, err := repo.Profiles().CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}
