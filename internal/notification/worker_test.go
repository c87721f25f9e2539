package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	mu       sync.Mutex
	sent     []string
	response *http.Response
	err      error
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sub.Endpoint)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusCreated,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestSendNotificationsForTable(t *testing.T) {
	gormDB, mock := newTestDB(t)

	mock.ExpectQuery(`FROM "push_subscriptions" JOIN subscription_table_mapping`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
			AddRow("https://push.example/a", "k1", "a1").
			AddRow("https://push.example/b", "k2", "a2"))
	mock.ExpectQuery(`SELECT "number" FROM "tables"`).
		WithArgs(int64(3), 1).
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(7))

	sender := &mockSender{response: okResponse()}
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = sender

	wp.sendNotificationsForTable(context.Background(), 3)

	assert.ElementsMatch(t, []string{"https://push.example/a", "https://push.example/b"}, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendNotificationsForTableNoSubscribers(t *testing.T) {
	gormDB, mock := newTestDB(t)

	mock.ExpectQuery(`FROM "push_subscriptions" JOIN subscription_table_mapping`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}))

	sender := &mockSender{response: okResponse()}
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = sender

	wp.sendNotificationsForTable(context.Background(), 9)

	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpiredSubscriptionIsDeleted(t *testing.T) {
	gormDB, mock := newTestDB(t)

	mock.ExpectQuery(`FROM "push_subscriptions" JOIN subscription_table_mapping`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
			AddRow("https://push.example/stale", "k1", "a1"))
	mock.ExpectQuery(`SELECT "number" FROM "tables"`).
		WithArgs(int64(3), 1).
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "push_subscriptions"`).
		WithArgs("https://push.example/stale").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sender := &mockSender{response: &http.Response{
		StatusCode: http.StatusGone,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}}
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	wp.sender = sender

	wp.sendNotificationsForTable(context.Background(), 3)

	assert.Len(t, sender.sent, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchDoesNotBlockWhenQueueFull(t *testing.T) {
	wp := NewWorkerPool(1, nil, &webpush.Options{})

	for i := 0; i < cap(wp.Jobs())+5; i++ {
		wp.Dispatch(int64(i))
	}

	assert.Equal(t, cap(wp.Jobs()), len(wp.Jobs()))
}
