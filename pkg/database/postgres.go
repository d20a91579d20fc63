package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DBClient holds the PostgreSQL database connection
type DBClient struct {
	db *sql.DB
}

// NewPostgresClient opens dsn, pings it and returns a client
func NewPostgresClient(dsn string) (*DBClient, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL!")
	return &DBClient{db: db}, nil
}

// Close closes the database connection
func (c *DBClient) Close() {
	if c.db != nil {
		c.db.Close()
		log.Println("PostgreSQL connection closed.")
	}
}

// GetDB returns the underlying *sql.DB instance
func (c *DBClient) GetDB() *sql.DB {
	return c.db
}
