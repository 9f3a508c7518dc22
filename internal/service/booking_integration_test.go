package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statify/statify/internal/database"
	"github.com/statify/statify/internal/model"
	"github.com/statify/statify/internal/repository"
	"github.com/statify/statify/internal/service"
)

// openTestDB connects to the MySQL instance named by TEST_MYSQL_DSN and
// skips the test when the variable is unset.  The DSN needs
// parseTime=true, e.g.:
//
//	TEST_MYSQL_DSN='root:pass@tcp(127.0.0.1:3306)/statify_test?parseTime=true'
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, database.Bootstrap(ctx, db))
	return db
}

// seedMatch creates a match with a single stand of the given capacity
// and returns both IDs.
func seedMatch(t *testing.T, db *sql.DB, stand string, capacity int64) (matchID, standID uint64) {
	t.Helper()
	ctx := context.Background()
	matchRepo := repository.NewMatchRepo(db)
	standRepo := repository.NewStandRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	m := &model.Match{
		Team1:     "India",
		Team2:     "Australia",
		StartTime: time.Now().Add(24 * time.Hour).UTC(),
		CreatedBy: "test",
	}
	require.NoError(t, matchRepo.CreateTx(ctx, tx, m))
	require.NoError(t, standRepo.CreateBulkTx(ctx, tx, []model.Stand{
		{MatchID: m.ID, Stand: stand, Total: capacity},
	}))
	require.NoError(t, tx.Commit())

	stands, err := standRepo.ListByMatch(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, stands, 1)
	return m.ID, stands[0].ID
}

func newIntegrationService(db *sql.DB) *service.BookingService {
	return service.NewBookingService(db,
		repository.NewUserRepo(db),
		repository.NewStandRepo(db),
		repository.NewBookingRepo(db),
		nil)
}

// uniquePhone returns a phone number that no earlier test run used, so
// tests stay independent on a persistent database.
func uniquePhone(n int) string {
	return fmt.Sprintf("8%09d%03d", time.Now().UnixNano()%1_000_000_000, n%1000)
}

func TestBookConcurrentNeverOversells(t *testing.T) {
	db := openTestDB(t)
	svc := newIntegrationService(db)

	const capacity = 5
	const attempts = 2 * capacity
	matchID, standID := seedMatch(t, db, "North Stand", capacity)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), service.BookingRequest{
				MatchID: matchID,
				Stand:   "North Stand",
				Name:    fmt.Sprintf("Fan %d", i),
				Phone:   uniquePhone(i),
			})
		}(i)
	}
	wg.Wait()

	var succeeded, soldOut int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case err == repository.ErrSoldOut:
			soldOut++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, attempts-capacity, soldOut)

	// Ledger invariant: available == total - bookings, never negative.
	ctx := context.Background()
	var available, total int64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT available, total FROM stands WHERE id = ?`, standID).Scan(&available, &total))
	assert.Equal(t, int64(0), available)

	count, err := repository.NewBookingRepo(db).CountByStand(ctx, standID)
	require.NoError(t, err)
	assert.Equal(t, total, count)
}

func TestBookSamePhoneReusesUser(t *testing.T) {
	db := openTestDB(t)
	svc := newIntegrationService(db)

	matchID, _ := seedMatch(t, db, "East Stand", 10)
	phone := uniquePhone(1)

	first, err := svc.Book(context.Background(), service.BookingRequest{
		MatchID: matchID, Stand: "East Stand", Name: "Asha", Phone: phone,
	})
	require.NoError(t, err)

	// Second booking submits a different name; the stored identity wins.
	second, err := svc.Book(context.Background(), service.BookingRequest{
		MatchID: matchID, Stand: "East Stand", Name: "Someone Else", Phone: phone,
	})
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.User.PublicID, second.User.PublicID)
	assert.Equal(t, "Asha", second.User.Name)
	assert.Regexp(t, `^USER_\d{5}$`, first.User.PublicID)
}

func TestBookUnknownStandRollsBackUserCreation(t *testing.T) {
	db := openTestDB(t)
	svc := newIntegrationService(db)

	matchID, _ := seedMatch(t, db, "West Stand", 10)
	phone := uniquePhone(2)

	_, err := svc.Book(context.Background(), service.BookingRequest{
		MatchID: matchID, Stand: "Pavilion End", Name: "Vik", Phone: phone,
	})
	require.ErrorIs(t, err, repository.ErrStandNotFound)

	// The user insert ran before the stand lookup failed; the rollback
	// must have discarded it.
	_, err = repository.NewUserRepo(db).GetByPhone(context.Background(), phone)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// failingBookingStore refuses every insert, simulating a storage
// failure after the stand decrement already ran inside the transaction.
type failingBookingStore struct{}

func (failingBookingStore) CreateTx(ctx context.Context, tx *sql.Tx, b model.Booking) (model.Booking, error) {
	return model.Booking{}, fmt.Errorf("booking insert refused")
}

func TestBookConcurrentFirstTimeSamePhoneCreatesOneUser(t *testing.T) {
	db := openTestDB(t)
	svc := newIntegrationService(db)

	matchID, _ := seedMatch(t, db, "East Stand", 20)

	// Two racers per round: the insert loser hits the phone uniqueness
	// constraint and must re-read the winner's row with a locking read.
	// Several rounds with fresh phones raise the odds of a real overlap.
	for round := 0; round < 5; round++ {
		phone := uniquePhone(100 + round)

		var wg sync.WaitGroup
		results := make([]service.BookingResult, 2)
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = svc.Book(context.Background(), service.BookingRequest{
					MatchID: matchID,
					Stand:   "East Stand",
					Name:    fmt.Sprintf("Racer %d", i),
					Phone:   phone,
				})
			}(i)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		// Both bookings must reference the same identity, and exactly
		// one users row may exist for the phone.
		assert.Equal(t, results[0].User.ID, results[1].User.ID)
		assert.Equal(t, results[0].User.PublicID, results[1].User.PublicID)

		var users int64
		require.NoError(t, db.QueryRowContext(context.Background(),
			`SELECT COUNT(*) FROM users WHERE phone = ?`, phone).Scan(&users))
		assert.Equal(t, int64(1), users)
	}
}

func TestBookInsertFailureRollsBackDecrement(t *testing.T) {
	db := openTestDB(t)

	matchID, standID := seedMatch(t, db, "North Stand", 10)
	phone := uniquePhone(6)

	svc := service.NewBookingService(db,
		repository.NewUserRepo(db),
		repository.NewStandRepo(db),
		failingBookingStore{},
		nil)

	_, err := svc.Book(context.Background(), service.BookingRequest{
		MatchID: matchID, Stand: "North Stand", Name: "Vik", Phone: phone,
	})
	require.Error(t, err)

	// The decrement and the user insert both ran before the booking
	// insert failed; the rollback must discard them together.
	var available int64
	require.NoError(t, db.QueryRowContext(context.Background(),
		`SELECT available FROM stands WHERE id = ?`, standID).Scan(&available))
	assert.Equal(t, int64(10), available)

	_, err = repository.NewUserRepo(db).GetByPhone(context.Background(), phone)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	count, err := repository.NewBookingRepo(db).CountByStand(context.Background(), standID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestBookSoldOutLeavesCountAtZero(t *testing.T) {
	db := openTestDB(t)
	svc := newIntegrationService(db)

	matchID, standID := seedMatch(t, db, "North Stand", 1)

	_, err := svc.Book(context.Background(), service.BookingRequest{
		MatchID: matchID, Stand: "North Stand", Name: "A", Phone: uniquePhone(3),
	})
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), service.BookingRequest{
		MatchID: matchID, Stand: "North Stand", Name: "B", Phone: uniquePhone(4),
	})
	require.ErrorIs(t, err, repository.ErrSoldOut)

	var available int64
	require.NoError(t, db.QueryRowContext(context.Background(),
		`SELECT available FROM stands WHERE id = ?`, standID).Scan(&available))
	assert.Equal(t, int64(0), available)
}
