package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/julee/knowledge-service/config"
	"github.com/julee/knowledge-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	var orgID string
	err = db.QueryRow(`
		INSERT INTO organisations (name, description)
		VALUES ('Acme', 'Seed organisation')
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`).Scan(&orgID)
	if err != nil {
		log.Fatalf("failed to seed organisation: %v", err)
	}
	fmt.Printf("seeded organisation: id=%s name=Acme\n", orgID)

	email := "admin@acme.example"
	password := "password123"
	name := "Acme Admin"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, avatar_url, organisation_id)
		VALUES ($1, $2, $3, '', $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name, orgID).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	for _, d := range []struct{ name, tooltip string }{
		{"Legal", "Contracts, compliance and policy documents"},
		{"Engineering", "Technical documentation and runbooks"},
	} {
		var domainID string
		if err := db.QueryRow(`
			INSERT INTO domains (organisation_id, name, tooltip)
			VALUES ($1, $2, $3)
			ON CONFLICT (organisation_id, name) DO UPDATE SET tooltip = EXCLUDED.tooltip
			RETURNING id
		`, orgID, d.name, d.tooltip).Scan(&domainID); err != nil {
			log.Fatalf("failed to seed domain %s: %v", d.name, err)
		}
		fmt.Printf("seeded domain: id=%s name=%s\n", domainID, d.name)
	}
}
