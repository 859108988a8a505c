package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDatabase поднимает контейнер PostgreSQL и создает схему для тестов.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT,
            avatar TEXT,
            google_id TEXT,
            facebook_id TEXT,
            is_email_verified BOOLEAN NOT NULL DEFAULT false,
            verify_email_token TEXT,
            verify_email_expire TIMESTAMPTZ,
            reset_password_token TEXT,
            reset_password_expire TIMESTAMPTZ,
            subscription_plan TEXT NOT NULL DEFAULT 'basic',
            subscription_status TEXT NOT NULL DEFAULT 'inactive',
            stripe_customer_id TEXT,
            stripe_subscription_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE UNIQUE INDEX idx_users_google_id ON users(google_id) WHERE google_id IS NOT NULL;
        CREATE UNIQUE INDEX idx_users_facebook_id ON users(facebook_id) WHERE facebook_id IS NOT NULL;
        CREATE UNIQUE INDEX idx_users_stripe_customer_id ON users(stripe_customer_id) WHERE stripe_customer_id IS NOT NULL;

        CREATE TABLE products (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            type TEXT,
            category TEXT,
            tools_type TEXT,
            image_src JSONB,
            rating REAL NOT NULL DEFAULT 0,
            price NUMERIC(10, 2) NOT NULL DEFAULT 0,
            is_new_product BOOLEAN NOT NULL DEFAULT false,
            is_pick BOOLEAN NOT NULL DEFAULT false,
            details JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE reviews (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            buyer_name TEXT NOT NULL,
            feedback_mark REAL NOT NULL,
            review_text TEXT NOT NULL,
            is_verified_buyer BOOLEAN NOT NULL DEFAULT false,
            is_featured BOOLEAN NOT NULL DEFAULT false,
            product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
    `)
	require.NoError(t, err, "Failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, passwordHash string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3) RETURNING uid`,
		name, email, passwordHash).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateUserWithSubscription создает пользователя с заполненным снимком подписки.
func (f *TestDataFactory) CreateUserWithSubscription(t *testing.T, name, email, plan, status, customerID, subscriptionID string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users
		(name, email, subscription_plan, subscription_status, stripe_customer_id, stripe_subscription_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING uid`,
		name, email, plan, status, customerID, subscriptionID).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateProduct создает тестовый товар и возвращает его идентификатор.
func (f *TestDataFactory) CreateProduct(t *testing.T, title, productType, category string, price float64) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO products (title, description, type, category, price)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		title, "description", productType, category, price).Scan(&id)
	require.NoError(t, err)
	return id
}
