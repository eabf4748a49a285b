package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/connect-bot/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с ролью both
func (f *TestDataFactory) CreateUser(t *testing.T, userID int64, fullName string) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO users (user_id, username, full_name, role)
		VALUES ($1, $2, $3, 'both')`, userID, fmt.Sprintf("user%d", userID), fullName)
	require.NoError(t, err)
}

// CreateOrder создает заказ с заданным временем создания и статусом
func (f *TestDataFactory) CreateOrder(t *testing.T, employerID int64, title, status string, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO orders (employer_id, title, description, status, created_at)
		VALUES ($1, $2, 'description', $3, $4) RETURNING order_id`,
		employerID, title, status, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateApplication создает отклик на заказ
func (f *TestDataFactory) CreateApplication(t *testing.T, orderID, workerID int64) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO applications (order_id, worker_id) VALUES ($1, $2)`, orderID, workerID)
	require.NoError(t, err)
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountRows возвращает число строк таблицы по условию на order_id
func (v *TestVerification) CountRows(t *testing.T, table string, orderID int64) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE order_id = $1", table), orderID).Scan(&count)
	require.NoError(t, err)
	return count
}

// setupTestDatabase поднимает PostgreSQL в контейнере и накатывает миграции
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, "5432")
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	t.Cleanup(func() {
		_ = storage.Close()
		_ = postgresContainer.Terminate(ctx)
	})
	return storage
}
