package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedCatalog(db)

	log.Println("Seeding completed successfully!")
}

func seedCatalog(db *sql.DB) {
	products := []struct {
		Name        string
		Slug        string
		Category    string
		BasePrice   string
		Description string
	}{
		{"Classic Matte", "classic-matte", "standard", "2.50", "Smooth matte stock with a soft-touch finish."},
		{"Classic Gloss", "classic-gloss", "standard", "2.50", "High-shine coated stock for vivid colour."},
		{"Premium Ivory", "premium-ivory", "premium", "3.80", "Warm ivory cotton blend with a textured face."},
		{"Premium Onyx", "premium-onyx", "premium", "4.20", "Deep black core stock made for foil and metal."},
		{"Recycled Kraft", "recycled-kraft", "eco", "2.20", "Unbleached 100% recycled kraft board."},
		{"Cotton Letterpress", "cotton-letterpress", "premium", "5.00", "Thick cotton stock that takes a deep impression."},
		{"Velvet Laminate", "velvet-laminate", "premium", "4.50", "Suede-feel laminate over a rigid core."},
		{"Bamboo Natural", "bamboo-natural", "eco", "3.00", "Sustainably sourced bamboo veneer cards."},
		{"Pearl Shimmer", "pearl-shimmer", "premium", "3.90", "Pearlescent stock with a subtle shimmer."},
		{"Budget White", "budget-white", "standard", "1.80", "Everyday white stock for large runs."},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, slug, category, base_price, description, active)
			VALUES ($1, $2, $3, $4::numeric, $5, TRUE)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				base_price = EXCLUDED.base_price,
				description = EXCLUDED.description,
				active = EXCLUDED.active,
				updated_at = NOW();
		`, p.Name, p.Slug, p.Category, p.BasePrice, p.Description)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}
