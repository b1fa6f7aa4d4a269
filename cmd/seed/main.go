// Command seed loads a starter catalog into the database so a fresh
// install has something to sell.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/pharmacare/pos/internal/adapter/storage"
	"github.com/pharmacare/pos/internal/core/domain"
)

func main() {
	dsn := flag.String("dsn", "root:root@tcp(localhost:3306)/pharmacy?parseTime=true", "mysql dsn")
	dbName := flag.String("db", "pharmacy", "database name")
	flag.Parse()

	ctx := context.Background()

	db, err := sql.Open("mysql", *dsn)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.Migrate(*dbName); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	now := time.Now()
	medicines := []domain.Medicine{
		{
			ID: "med-paracetamol-500", Name: "Paracetamol 500mg", GenericName: "Acetaminophen",
			Barcode: "123456789", Category: "Pain Relief", DosageForm: "Tablet", Strength: "500mg",
			Price: decimal.RequireFromString("5.99"), Stock: 85, ReorderLevel: 100,
			BatchNumber: "BAT123", ExpiryDate: now.AddDate(1, 0, 0), Location: "Shelf A1",
			Supplier: "MedSupply Inc",
		},
		{
			ID: "med-amoxicillin-250", Name: "Amoxicillin 250mg", GenericName: "Amoxicillin",
			Barcode: "234567891", Category: "Antibiotics", DosageForm: "Capsule", Strength: "250mg",
			Price: decimal.RequireFromString("12.50"), Stock: 140, ReorderLevel: 60,
			BatchNumber: "BAT207", ExpiryDate: now.AddDate(0, 18, 0), Location: "Shelf B2",
			Supplier: "MedSupply Inc",
		},
		{
			ID: "med-ibuprofen-400", Name: "Ibuprofen 400mg", GenericName: "Ibuprofen",
			Barcode: "345678912", Category: "Pain Relief", DosageForm: "Tablet", Strength: "400mg",
			Price: decimal.RequireFromString("7.25"), Stock: 200, ReorderLevel: 80,
			BatchNumber: "BAT311", ExpiryDate: now.AddDate(2, 0, 0), Location: "Shelf A2",
			Supplier: "Global Pharma Ltd",
		},
		{
			ID: "med-cetirizine-10", Name: "Cetirizine 10mg", GenericName: "Cetirizine",
			Barcode: "456789123", Category: "Antihistamines", DosageForm: "Tablet", Strength: "10mg",
			Price: decimal.RequireFromString("4.00"), Stock: 60, ReorderLevel: 40,
			BatchNumber: "BAT415", ExpiryDate: now.AddDate(1, 6, 0), Location: "Shelf C1",
			Supplier: "Global Pharma Ltd",
		},
		{
			ID: "med-ors-sachet", Name: "ORS Sachet", GenericName: "Oral Rehydration Salts",
			Barcode: "567891234", Category: "Rehydration", DosageForm: "Powder", Strength: "20.5g",
			Price: decimal.RequireFromString("1.50"), Stock: 300, ReorderLevel: 150,
			BatchNumber: "BAT520", ExpiryDate: now.AddDate(3, 0, 0), Location: "Shelf D4",
			Supplier: "MedSupply Inc",
		},
	}

	for _, m := range medicines {
		m.CreatedAt = now
		m.UpdatedAt = now
		if err := adapter.UpsertMedicine(ctx, m); err != nil {
			log.Fatalf("failed to seed %s: %v", m.ID, err)
		}
		log.Printf("seeded %s (%s)", m.Name, m.ID)
	}

	log.Printf("done: %d medicines", len(medicines))
}
