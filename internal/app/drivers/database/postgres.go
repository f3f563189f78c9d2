package database

import (
	"database/sql"
	"fmt"
	"labtrace-service/internal/app/config"
	"log"

	_ "github.com/lib/pq"
)

func NewPostgresDB(driverConfig *config.DriverConfig) *sql.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		driverConfig.PostgresDB.Host,
		driverConfig.PostgresDB.Port,
		driverConfig.PostgresDB.Username,
		driverConfig.PostgresDB.Password,
		driverConfig.PostgresDB.DBName,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open postgres connection: %s", err.Error())
	}

	if err = db.Ping(); err != nil {
		log.Fatalf("Failed to reach postgres: %s", err.Error())
	}

	// Orders, results and the outbox share this pool.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Successfully connected to postgres")

	return db
}
