package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	// Driver pq para PostgreSQL
	_ "github.com/lib/pq"
)

// NewPostgresDB inicializa y configura el pool de conexiones con PostgreSQL.
// Devuelve la conexión *sql.DB lista para usar.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {

	// 1. Abrir la conexión
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falla al abrir la conexión con el DB: %w", err)
	}

	// 2. Probar la conexión de inmediato
	// Garantiza que las credenciales y el servidor son correctos
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("falla en el ping inicial al DB: %w", err)
	}

	// 3. Configuración del Connection Pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	log.Println("✅ Pool de conexiones PostgreSQL configurado y listo.")

	return db, nil
}
