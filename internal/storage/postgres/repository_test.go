package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

func TestNewRepositoryRequiresPool(t *testing.T) {
	repo, err := NewRepository(nil)
	require.Error(t, err)
	require.Nil(t, repo)
}

func TestDJRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	insertDJ(t, ctx, pool, "Zeca Groove", "disponivel", 1500, "House", "Tech House")
	insertDJ(t, ctx, pool, "Ana Bass", "ocupado", 3000, "Drum and Bass")
	insertDJ(t, ctx, pool, "Bruno Beats", "ferias", 800, "Funk")
	retired := insertDJ(t, ctx, pool, "Old Timer", "disponivel", 100)
	_, err := pool.Exec(ctx, `UPDATE djs SET is_active = false WHERE id = $1`, retired)
	require.NoError(t, err)

	all, err := repo.DJs().List(ctx, storage.DJFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Ana Bass", "Bruno Beats", "Zeca Groove"}, djNames(all))

	byPrice, err := repo.DJs().List(ctx, storage.DJFilter{Sort: storage.SortPrice, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana Bass", "Zeca Groove", "Bruno Beats"}, djNames(byPrice))

	house, err := repo.DJs().List(ctx, storage.DJFilter{Genre: "house"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeca Groove"}, djNames(house))

	search, err := repo.DJs().List(ctx, storage.DJFilter{Search: "bass"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana Bass"}, djNames(search))

	unavailable, err := repo.DJs().List(ctx, storage.DJFilter{Status: booking.AvailabilityUnavailable})
	require.NoError(t, err)
	require.Len(t, unavailable, 1)
	assert.Equal(t, "Bruno Beats", unavailable[0].Name)
	assert.Equal(t, booking.AvailabilityUnavailable, unavailable[0].AvailabilityStatus)

	paged, err := repo.DJs().List(ctx, storage.DJFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bruno Beats"}, djNames(paged))

	literal, err := repo.DJs().List(ctx, storage.DJFilter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, literal, "wildcards in search must be matched literally")
}

func TestDJRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	price := 2500.0
	created, err := repo.DJs().Create(ctx, booking.DJ{
		Name:               "Luna",
		Phone:              strPtr("+55 81 99999-0000"),
		Genres:             []string{"Techno"},
		BookingPrice:       &price,
		AvailabilityStatus: booking.AvailabilityBusy,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, booking.AvailabilityBusy, created.AvailabilityStatus)

	var whatsapp, stored string
	require.NoError(t, pool.QueryRow(ctx, `SELECT whatsapp, status FROM djs WHERE id = $1`, created.ID).Scan(&whatsapp, &stored))
	assert.Equal(t, "+55 81 99999-0000", whatsapp)
	assert.Equal(t, "ocupado", stored)

	created.Name = "Luna Nova"
	created.AvailabilityStatus = booking.AvailabilityAvailable
	updated, err := repo.DJs().Update(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "Luna Nova", updated.Name)
	assert.Equal(t, booking.AvailabilityAvailable, updated.AvailabilityStatus)

	require.NoError(t, repo.DJs().Delete(ctx, created.ID))
	_, err = repo.DJs().Get(ctx, created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, repo.DJs().Delete(ctx, created.ID), storage.ErrNotFound)

	_, err = repo.DJs().Get(ctx, "not-a-uuid")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEventRepositoryListAndReferences(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	producerA := insertProducer(t, ctx, pool, "Casa Norte")
	producerB := insertProducer(t, ctx, pool, "Sul Eventos")
	dj := insertDJ(t, ctx, pool, "Luna", "disponivel", 1000)

	base := time.Date(2025, 3, 15, 22, 0, 0, 0, time.UTC)
	insertEvent(t, ctx, pool, "Noite Norte", base, &dj, &producerA, "confirmado", 1000)
	insertEvent(t, ctx, pool, "Festival Sul", base.Add(48*time.Hour), nil, &producerB, "pendente", 0)
	insertEvent(t, ctx, pool, "Antigo", base.Add(-30*24*time.Hour), &dj, &producerA, "adiado", 500)

	forA, err := repo.Events().List(ctx, storage.EventFilter{ProducerID: producerA})
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, "Antigo", forA[0].Title, "ordered by event date")
	assert.Equal(t, booking.EventCancelled, forA[0].Status, "unknown stored status reads as cancelled")

	cancelled, err := repo.Events().List(ctx, storage.EventFilter{Status: booking.EventCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)

	from := base.Add(-time.Hour)
	ranged, err := repo.Events().List(ctx, storage.EventFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	search, err := repo.Events().List(ctx, storage.EventFilter{Search: "festival"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Empty(t, search[0].DJID)

	_, err = repo.Events().Create(ctx, booking.Event{
		Title:      "Sem Produtor",
		EventDate:  base,
		Venue:      "Praia",
		City:       "Olinda",
		State:      "PE",
		ProducerID: "00000000-0000-0000-0000-000000000001",
		Status:     booking.EventPending,
	})
	require.ErrorIs(t, err, storage.ErrInvalidReference)
}

func TestContractRepositorySignatureStatus(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	producer := insertProducer(t, ctx, pool, "Casa Norte")
	dj := insertDJ(t, ctx, pool, "Luna", "disponivel", 1000)
	event := insertEvent(t, ctx, pool, "Noite", time.Now().Add(24*time.Hour), &dj, &producer, "confirmado", 1000)

	clauses := "Sem fotos no backstage"
	contract, err := repo.Contracts().Create(ctx, booking.Contract{
		EventID:         event,
		DJID:            dj,
		ProducerID:      producer,
		ContractValue:   1000,
		AdditionalTerms: &clauses,
		CommissionRate:  floatPtr(10),
		Status:          booking.ContractPending,
	})
	require.NoError(t, err)
	assert.Equal(t, booking.ContractPending, contract.Status)
	require.NotNil(t, contract.AdditionalTerms)
	assert.Equal(t, clauses, *contract.AdditionalTerms)

	contract.SignedByProducer = true
	contract, err = repo.Contracts().Update(ctx, *contract)
	require.NoError(t, err)
	assert.Equal(t, booking.ContractPending, contract.Status)

	contract.SignedByDJ = true
	contract, err = repo.Contracts().Update(ctx, *contract)
	require.NoError(t, err)
	assert.Equal(t, booking.ContractSigned, contract.Status)

	signed, err := repo.Contracts().List(ctx, storage.ContractFilter{Status: booking.ContractSigned, ProducerID: producer})
	require.NoError(t, err)
	assert.Len(t, signed, 1)

	none, err := repo.Contracts().List(ctx, storage.ContractFilter{ProducerID: "garbage"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProducerRepositoryAccessCode(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	city, state := "Recife", "PE"
	producer, err := repo.Producers().Create(ctx, booking.Producer{
		Name:   "Casa Norte",
		Email:  "contato@casanorte.example",
		City:   &city,
		State:  &state,
		Status: booking.ProducerActive,
	})
	require.NoError(t, err)
	require.NotNil(t, producer.City)
	assert.Equal(t, "Recife", *producer.City)

	var notes string
	require.NoError(t, pool.QueryRow(ctx, `SELECT notes FROM producers WHERE id = $1`, producer.ID).Scan(&notes))
	assert.Equal(t, "Cidade: Recife, Estado: PE", notes)

	require.NoError(t, repo.Producers().SetAccessCode(ctx, producer.ID, "ABCD2345"))
	found, err := repo.Producers().GetByAccessCode(ctx, "ABCD2345")
	require.NoError(t, err)
	assert.Equal(t, producer.ID, found.ID)

	other, err := repo.Producers().Create(ctx, booking.Producer{Name: "Outra", Email: "o@example.com"})
	require.NoError(t, err)
	err = repo.Producers().SetAccessCode(ctx, other.ID, "ABCD2345")
	require.ErrorIs(t, err, storage.ErrConflict)

	_, err = repo.Producers().GetByAccessCode(ctx, "NOPE")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = pool.Exec(ctx, `UPDATE producers SET company_name = NULL WHERE id = $1`, other.ID)
	require.NoError(t, err)
	unnamed, err := repo.Producers().Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Produtor sem nome", unnamed.Name)
}

func TestFinancialRepositoryRecalculate(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	producer := insertProducer(t, ctx, pool, "Casa Norte")
	dj := insertDJ(t, ctx, pool, "Luna", "disponivel", 1000)
	jan := time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 23, 0, 0, 0, time.UTC)
	insertEvent(t, ctx, pool, "Janeiro 1", jan, &dj, &producer, "concluido", 1000)
	insertEvent(t, ctx, pool, "Janeiro 2", jan.Add(24*time.Hour), &dj, &producer, "concluido", 500)
	insertEvent(t, ctx, pool, "Fevereiro", feb, &dj, &producer, "concluido", 2000)
	insertEvent(t, ctx, pool, "Futuro", feb.AddDate(0, 3, 0), &dj, &producer, "confirmado", 800)
	insertEvent(t, ctx, pool, "Cancelado", feb, &dj, &producer, "cancelado", 9999)

	data, err := repo.Financials().Recalculate(ctx, dj, 15, "America/Sao_Paulo")
	require.NoError(t, err)
	assert.InDelta(t, 3500, data.TotalEarnings, 0.001)
	assert.InDelta(t, 800, data.PendingPayments, 0.001)
	assert.Equal(t, 3, data.CompletedEvents)
	assert.InDelta(t, 1166.67, data.AverageEventValue, 0.001)
	assert.InDelta(t, 15, data.CommissionRate, 0.001)
	assert.InDelta(t, 2975, data.NetEarnings, 0.001)
	require.Len(t, data.MonthlyEarnings, 2)
	assert.Equal(t, booking.MonthlyEarning{Year: 2025, Month: 1, Amount: 1500, EventsCount: 2}, data.MonthlyEarnings[0])

	stored, err := repo.Financials().Get(ctx, dj)
	require.NoError(t, err)
	assert.Equal(t, data.TotalEarnings, stored.TotalEarnings)

	_, err = repo.Financials().Recalculate(ctx, "00000000-0000-0000-0000-000000000009", 15, "")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFinancialRepositoryRecalculateBucketsInZone(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	producer := insertProducer(t, ctx, pool, "Casa Norte")
	dj := insertDJ(t, ctx, pool, "Luna", "disponivel", 1000)
	// 23:30 on January 31st in São Paulo, already February in UTC.
	insertEvent(t, ctx, pool, "Virada", time.Date(2025, 2, 1, 2, 30, 0, 0, time.UTC), &dj, &producer, "concluido", 1000)

	tests := []struct {
		zone  string
		month int
	}{
		{"America/Sao_Paulo", 1},
		{"UTC", 2},
		{"", 1},
	}
	for _, tt := range tests {
		data, err := repo.Financials().Recalculate(ctx, dj, 15, tt.zone)
		require.NoError(t, err, tt.zone)
		require.Len(t, data.MonthlyEarnings, 1, tt.zone)
		assert.Equal(t, tt.month, data.MonthlyEarnings[0].Month, tt.zone)
	}
}

func TestProducerRepositoryUpdateKeepsNotes(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	id := insertProducer(t, ctx, pool, "Casa Norte")
	_, err := pool.Exec(ctx, `UPDATE producers SET notes = $2 WHERE id = $1`, id, "Cliente antigo.\nCidade: Recife, Estado: PE")
	require.NoError(t, err)

	producer, err := repo.Producers().Get(ctx, id)
	require.NoError(t, err)
	booking.ProducerPatch{
		City:        strPtr("Jaboatão, Zona Sul"),
		CompanyName: strPtr("Casa Norte Eventos Ltda"),
	}.Apply(producer)
	updated, err := repo.Producers().Update(ctx, *producer)
	require.NoError(t, err)

	assert.Equal(t, "Casa Norte Eventos Ltda", updated.Name)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Jaboatão, Zona Sul", *updated.City)
	assert.Equal(t, "PE", *updated.State)

	var notes string
	require.NoError(t, pool.QueryRow(ctx, `SELECT notes FROM producers WHERE id = $1`, id).Scan(&notes))
	assert.Equal(t, "Cliente antigo.\nCidade: Jaboatão, Zona Sul, Estado: PE", notes)
}

func TestProfileRepositoryUpdateRole(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	producer := insertProducer(t, ctx, pool, "Casa Norte")
	profile, err := repo.Profiles().Create(ctx, booking.Profile{Email: "Maria@Example.com", PasswordHash: "x"})
	require.NoError(t, err)
	assert.Equal(t, "produtor", profile.Role)

	byEmail, err := repo.Profiles().GetByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, byEmail.ID)

	_, err = repo.Profiles().Create(ctx, booking.Profile{Email: "maria@example.COM"})
	require.ErrorIs(t, err, storage.ErrConflict)

	updated, err := repo.Profiles().UpdateRole(ctx, profile.ID, "produtor", producer)
	require.NoError(t, err)
	assert.Equal(t, producer, updated.ProducerID)

	updated, err = repo.Profiles().UpdateRole(ctx, profile.ID, "admin", producer)
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Empty(t, updated.ProducerID)

	admins, err := repo.Profiles().CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	// Another transaction cannot demote a locked admin.
	err = repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		locked, err := tx.Profiles().LockAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, locked)

		blocked := pgx.BeginFunc(ctx, pool, func(other pgx.Tx) error {
			if _, err := other.Exec(ctx, `SET LOCAL lock_timeout = '100ms'`); err != nil {
				return err
			}
			_, err := other.Exec(ctx, `UPDATE profiles SET role = 'dj' WHERE id = $1`, profile.ID)
			return err
		})
		assert.ErrorContains(t, blocked, "lock timeout")
		return nil
	})
	require.NoError(t, err)
}

func TestStatsRepositoryPlatform(t *testing.T) {
	ctx := context.Background()
	repo, pool := newTestRepository(t)

	producer := insertProducer(t, ctx, pool, "Casa Norte")
	dj := insertDJ(t, ctx, pool, "Luna", "disponivel", 1000)
	insertDJ(t, ctx, pool, "Sol", "ocupado", 1000)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := insertEvent(t, ctx, pool, "Passado", now.Add(-48*time.Hour), &dj, &producer, "concluido", 1000)
	future := insertEvent(t, ctx, pool, "Futuro", now.Add(48*time.Hour), &dj, &producer, "confirmado", 2000)

	_, err := pool.Exec(ctx, `
INSERT INTO contracts (event_id, dj_id, producer_id, fee, commission_rate, is_signed_by_producer, is_signed_by_dj)
VALUES ($1, $2, $3, 1000, 10, true, true), ($4, $2, $3, 2000, 10, true, false)`,
		past, dj, producer, future)
	require.NoError(t, err)
	_, err = repo.Profiles().Create(ctx, booking.Profile{Email: "p@example.com"})
	require.NoError(t, err)

	stats, err := repo.Stats().Platform(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDJs)
	assert.Equal(t, 1, stats.ActiveDJs)
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Equal(t, 1, stats.UpcomingEvents)
	assert.Equal(t, 2, stats.TotalContracts)
	assert.Equal(t, 1, stats.SignedContracts)
	assert.InDelta(t, 1000, stats.TotalRevenue, 0.001)
	assert.InDelta(t, 100, stats.TotalCommission, 0.001)
	assert.InDelta(t, 2000, stats.PendingPayments, 0.001)
	assert.Equal(t, 1, stats.ProducerUsers)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		if _, err := tx.Producers().Create(ctx, booking.Producer{Name: "Temporaria", Email: "t@example.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	producers, err := repo.Producers().List(ctx, storage.ProducerFilter{})
	require.NoError(t, err)
	assert.Empty(t, producers)
}

func TestChangeNotificationTrigger(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, pool := newTestRepository(t)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()
	_, err = conn.Exec(ctx, "LISTEN booking_changes")
	require.NoError(t, err)

	producer := insertProducer(t, ctx, pool, "Casa Norte")

	notification, err := conn.Conn().WaitForNotification(ctx)
	require.NoError(t, err)
	assert.Contains(t, notification.Payload, `"table": "producers"`)
	assert.Contains(t, notification.Payload, producer)
}

func TestSummarizeEarnings(t *testing.T) {
	got := summarizeEarnings(0, 100, 0, 15)
	assert.Zero(t, got.AverageEventValue)
	assert.Zero(t, got.NetEarnings)
	assert.InDelta(t, 100, got.PendingPayments, 0.001)

	got = summarizeEarnings(1000, 0, 4, 12.5)
	assert.InDelta(t, 250, got.AverageEventValue, 0.001)
	assert.InDelta(t, 875, got.NetEarnings, 0.001)
}

func djNames(djs []booking.DJ) []string {
	names := make([]string, 0, len(djs))
	for _, dj := range djs {
		names = append(names, dj.Name)
	}
	return names
}
