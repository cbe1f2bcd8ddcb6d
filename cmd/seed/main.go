// seed inserts a test store owner, a customer, a store with a few
// products, and pending email logs into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/bgskoro21/ecommerce-be/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	ownerEmail    = "owner@test.local"
	customerEmail = "customer@test.local"
	seedPassword  = "Password123!"
)

type productSpec struct {
	name      string
	basePrice string
	stock     int
}

var products = []productSpec{
	{"Plain White Tee", "89000.00", 120},
	{"Canvas Tote Bag", "45000.00", 60},
	{"Enamel Mug", "65000.00", 35},
	{"Linen Shirt", "189000.00", 20},
	{"Sticker Pack", "15000.00", 500},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ownerID := upsertUser(ctx, pool, "Seed Owner", ownerEmail, string(hash), "STORE_OWNER")
	customerID := upsertUser(ctx, pool, "Seed Customer", customerEmail, string(hash), "CUSTOMER")

	var storeID string
	err = pool.QueryRow(ctx, `
		INSERT INTO stores (user_id, name, description)
		VALUES ($1, 'Seed Store', 'Fixture store for local development')
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		ownerID,
	).Scan(&storeID)
	if err != nil {
		log.Fatalf("upsert store: %v", err)
	}

	var inserted int
	for _, spec := range products {
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (store_id, name, base_price, stock, has_variants)
			SELECT $1, $2, $3, $4, false
			WHERE NOT EXISTS (
				SELECT 1 FROM products WHERE store_id = $1 AND name = $2
			)`,
			storeID, spec.name, spec.basePrice, spec.stock,
		)
		if err != nil {
			log.Fatalf("insert product %s: %v", spec.name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	// Two pending entries for the mailer to pick up on its next tick.
	for _, row := range []struct{ userID, typ string }{
		{ownerID, "EmailVerification"},
		{customerID, "ForgotPassword"},
	} {
		_, err := pool.Exec(ctx, `
			INSERT INTO email_logs (user_id, type, status)
			SELECT $1, $2, 'Pending'
			WHERE NOT EXISTS (
				SELECT 1 FROM email_logs WHERE user_id = $1 AND type = $2 AND status = 'Pending'
			)`,
			row.userID, row.typ,
		)
		if err != nil {
			log.Fatalf("insert email log: %v", err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Owner:            %s  (password: %s)\n", ownerEmail, seedPassword)
	fmt.Printf("  Customer:         %s  (password: %s)\n", customerEmail, seedPassword)
	fmt.Printf("  Store ID:         %s\n", storeID)
	fmt.Printf("  Products created: %d  (skipped %d already existing)\n", inserted, len(products)-inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in as the owner:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/users/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", ownerEmail, seedPassword)
	fmt.Println()
	fmt.Println("    # Copy accessToken from the response, then:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println()
	fmt.Println("  Step 2 — list the seeded products:")
	fmt.Println()
	fmt.Println("    curl -s 'http://localhost:8080/api/products?page=1&size=10' -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — run the scheduler and watch it drain the two pending email logs:")
	fmt.Println()
	fmt.Println("    go run ./cmd/scheduler")
	fmt.Println("    # With ENV=local the emails are logged, not sent.")
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, name, email, hash, role string) string {
	var id string
	err := pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, verified_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		name, email, hash, role,
	).Scan(&id)
	if err != nil {
		log.Fatalf("upsert user %s: %v", email, err)
	}
	return id
}
