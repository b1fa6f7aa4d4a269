package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/pharmacare/pos/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrStockConflict means the durable stock guard rejected a decrement
// the in-memory catalog had already accepted. The two stores have
// drifted and need operator attention.
var ErrStockConflict = errors.New("stock conflict")

// MySQLAdapter implements port.SaleRepository and port.MedicineRepository.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate brings the schema up to date from the embedded migrations.
func (m *MySQLAdapter) Migrate(databaseName string) error {
	driver, err := migratemysql.WithInstance(m.db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", src, databaseName, driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) CreateSale(ctx context.Context, sale domain.Sale) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, transaction_id, total, payment_method, customer_name, sold_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.TransactionID, sale.Total, string(sale.PaymentMethod),
		sale.CustomerName, sale.SoldBy, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, item := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, medicine_id, name, batch_number, unit_price, quantity, subtotal)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sale.ID, item.MedicineID, item.Name, item.BatchNumber,
			item.UnitPrice, item.Quantity, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE medicines
			SET stock = stock - ?, updated_at = NOW()
			WHERE id = ? AND stock >= ?`,
			item.Quantity, item.MedicineID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("%w: %s", ErrStockConflict, item.MedicineID)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) SalesBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, transaction_id, total, payment_method, customer_name, sold_by, created_at
		FROM sales
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at ASC`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	return m.scanSales(ctx, rows)
}

func (m *MySQLAdapter) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, transaction_id, total, payment_method, customer_name, sold_by, created_at
		FROM sales
		ORDER BY created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	return m.scanSales(ctx, rows)
}

func (m *MySQLAdapter) scanSales(ctx context.Context, rows *sql.Rows) ([]domain.Sale, error) {
	var sales []domain.Sale
	for rows.Next() {
		var s domain.Sale
		var method string
		if err := rows.Scan(&s.ID, &s.TransactionID, &s.Total, &method, &s.CustomerName, &s.SoldBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s.PaymentMethod = domain.PaymentMethod(method)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	for i := range sales {
		items, err := m.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (m *MySQLAdapter) saleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT medicine_id, name, batch_number, unit_price, quantity, subtotal
		FROM sale_items
		WHERE sale_id = ?`, saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sale items: %w", err)
	}
	defer rows.Close()

	var items []domain.SaleItem
	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.MedicineID, &it.Name, &it.BatchNumber, &it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, generic_name, barcode, category, dosage_form, strength,
		       price, stock, reorder_level, batch_number, expiry_date, location,
		       supplier, created_at, updated_at
		FROM medicines`,
	)
	if err != nil {
		return nil, fmt.Errorf("query medicines: %w", err)
	}
	defer rows.Close()

	var medicines []domain.Medicine
	for rows.Next() {
		var med domain.Medicine
		var expiry sql.NullTime
		err := rows.Scan(
			&med.ID, &med.Name, &med.GenericName, &med.Barcode, &med.Category,
			&med.DosageForm, &med.Strength, &med.Price, &med.Stock,
			&med.ReorderLevel, &med.BatchNumber, &expiry, &med.Location,
			&med.Supplier, &med.CreatedAt, &med.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		if expiry.Valid {
			med.ExpiryDate = expiry.Time
		}
		medicines = append(medicines, med)
	}
	return medicines, rows.Err()
}

func (m *MySQLAdapter) UpsertMedicine(ctx context.Context, med domain.Medicine) error {
	var expiry interface{}
	if !med.ExpiryDate.IsZero() {
		expiry = med.ExpiryDate
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO medicines (id, name, generic_name, barcode, category, dosage_form,
		                       strength, price, stock, reorder_level, batch_number,
		                       expiry_date, location, supplier, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), generic_name = VALUES(generic_name),
			barcode = VALUES(barcode), category = VALUES(category),
			dosage_form = VALUES(dosage_form), strength = VALUES(strength),
			price = VALUES(price), stock = VALUES(stock),
			reorder_level = VALUES(reorder_level), batch_number = VALUES(batch_number),
			expiry_date = VALUES(expiry_date), location = VALUES(location),
			supplier = VALUES(supplier), updated_at = VALUES(updated_at)`,
		med.ID, med.Name, med.GenericName, med.Barcode, med.Category,
		med.DosageForm, med.Strength, med.Price, med.Stock, med.ReorderLevel,
		med.BatchNumber, expiry, med.Location, med.Supplier,
		med.CreatedAt, med.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert medicine: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteMedicine(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	return nil
}
