package catalog

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"strings"
)

// Store implements the catalog contracts on Postgres.
type Store struct{ DB *pgxpool.Pool }

var (
	_ Repository         = (*Store)(nil)
	_ BasketRepository   = (*Store)(nil)
	_ StockCommitter     = (*Store)(nil)
	_ CustomerRepository = (*Store)(nil)
)

const itemColumns = `item_id, category_name, category_code,
	COALESCE(subcategory_name, ''), COALESCE(subcategory_code, 0),
	item_name, item_photos, item_price, item_description, item_short_description,
	item_stock, item_visible, item_quick_view`

// filter ketersediaan, sama dengan Item.Available
const availableCond = ` AND item_visible AND item_stock > 0`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (Item, error) {
	var it Item
	err := s.Scan(&it.ID, &it.CategoryName, &it.CategoryCode,
		&it.SubcategoryName, &it.SubcategoryCode,
		&it.Name, &it.Photos, &it.Price, &it.Description, &it.ShortDescription,
		&it.Stock, &it.Visible, &it.QuickView)
	return it, err
}

func (s *Store) Item(ctx context.Context, id int) (Item, error) {
	it, err := scanItem(s.DB.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (s *Store) ItemIDs(ctx context.Context) ([]int, error) {
	rows, err := s.DB.Query(ctx, `SELECT item_id FROM items ORDER BY item_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (s *Store) ItemNames(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT item_name FROM items ORDER BY item_name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) Categories(ctx context.Context, scope Scope) ([]Category, error) {
	q := `SELECT DISTINCT category_name, category_code FROM items WHERE TRUE`
	if scope == ScopeAvailable {
		q += availableCond
	}
	rows, err := s.DB.Query(ctx, q+` ORDER BY category_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Code); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Subcategories(ctx context.Context, categoryCode int, scope Scope) ([]Subcategory, error) {
	q := `SELECT DISTINCT COALESCE(subcategory_name, ''), COALESCE(subcategory_code, 0)
	      FROM items WHERE category_code=$1`
	if scope == ScopeAvailable {
		q += availableCond
	}
	rows, err := s.DB.Query(ctx, q+` ORDER BY 1`, categoryCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subcategory
	for rows.Next() {
		var sc Subcategory
		if err := rows.Scan(&sc.Name, &sc.Code); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) Items(ctx context.Context, categoryCode, subcategoryCode int, scope Scope) ([]Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE category_code=$1`
	args := []any{categoryCode}
	if subcategoryCode != 0 {
		q += ` AND subcategory_code=$2`
		args = append(args, subcategoryCode)
	}
	if scope == ScopeAvailable {
		q += availableCond
	}
	rows, err := s.DB.Query(ctx, q+` ORDER BY item_name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) ItemsLike(ctx context.Context, prefix string, offset, limit int) ([]Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE item_name ILIKE $1` + availableCond +
		` ORDER BY item_name OFFSET $2 LIMIT $3`
	rows, err := s.DB.Query(ctx, q, likeEscaper.Replace(prefix)+"%", offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(DISTINCT category_name) FROM items`).Scan(&n)
	return n, err
}

func (s *Store) CountSubcategories(ctx context.Context, categoryCode int) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx,
		`SELECT COUNT(DISTINCT subcategory_name) FROM items WHERE category_code=$1`, categoryCode).Scan(&n)
	return n, err
}

func (s *Store) CountItems(ctx context.Context, categoryCode, subcategoryCode int) (int, error) {
	var n int
	var err error
	if subcategoryCode != 0 {
		err = s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE category_code=$1 AND subcategory_code=$2`,
			categoryCode, subcategoryCode).Scan(&n)
	} else {
		err = s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE category_code=$1`, categoryCode).Scan(&n)
	}
	return n, err
}

func (s *Store) CreateItem(ctx context.Context, it Item) error {
	if err := ValidateItem(it); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `
		INSERT INTO items(item_id, category_name, category_code, subcategory_name, subcategory_code,
			item_name, item_photos, item_price, item_description, item_short_description,
			item_stock, item_visible, item_quick_view)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, 0), $6, $7, $8, $9, $10, $11, $12, $13)`,
		it.ID, it.CategoryName, it.CategoryCode, it.SubcategoryName, it.SubcategoryCode,
		it.Name, it.Photos, it.Price, it.Description, it.ShortDescription,
		it.Stock, it.Visible, it.QuickView)
	if err != nil {
		return mapPgError(err, map[Field]string{FieldID: fmt.Sprint(it.ID), FieldName: it.Name})
	}
	return nil
}

var mutable = map[Field]bool{
	FieldID: true, FieldName: true, FieldPhotos: true, FieldPrice: true,
	FieldDescription: true, FieldShortDescription: true, FieldStock: true,
	FieldVisible: true, FieldQuickView: true,
}

func (s *Store) UpdateItemField(ctx context.Context, id int, f Field, v any) error {
	if !mutable[f] {
		return fmt.Errorf("catalog: field %q is not mutable", f)
	}
	// f berasal dari whitelist di atas, aman untuk disambung ke query
	ct, err := s.DB.Exec(ctx, `UPDATE items SET `+string(f)+`=$2 WHERE item_id=$1`, id, v)
	if err != nil {
		return mapPgError(err, map[Field]string{f: fmt.Sprint(v)})
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id int) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM items WHERE item_id=$1`, id)
	if err != nil {
		return mapPgError(err, nil)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, name string) (int64, error) {
	ct, err := s.DB.Exec(ctx, `DELETE FROM items WHERE category_name=$1`, name)
	if err != nil {
		return 0, mapPgError(err, nil)
	}
	return ct.RowsAffected(), nil
}

func (s *Store) DeleteSubcategory(ctx context.Context, category, subcategory string) (int64, error) {
	ct, err := s.DB.Exec(ctx, `DELETE FROM items WHERE category_name=$1 AND subcategory_name=$2`,
		category, subcategory)
	if err != nil {
		return 0, mapPgError(err, nil)
	}
	return ct.RowsAffected(), nil
}

func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE items SET category_name=$2 WHERE category_name=$1`, oldName, newName)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *Store) RenameSubcategory(ctx context.Context, category, oldName, newName string) (int64, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE items SET subcategory_name=$3 WHERE category_name=$1 AND subcategory_name=$2`,
		category, oldName, newName)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// CommitStock: kurangi stok dengan UPDATE bersyarat dalam satu tx.
// Kalau ada satu baris yang kurang, semua di-rollback.
func (s *Store) CommitStock(ctx context.Context, lines []StockLine) ([]Item, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		updated []Item
		short   []StockShortage
	)
	for _, l := range lines {
		it, err := scanItem(tx.QueryRow(ctx, `
			UPDATE items SET item_stock = item_stock - $2
			WHERE item_id=$1 AND item_stock >= $2
			RETURNING `+itemColumns, l.ItemID, l.Quantity))
		if err == nil {
			updated = append(updated, it)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		var stock int
		if err := tx.QueryRow(ctx, `SELECT item_stock FROM items WHERE item_id=$1`, l.ItemID).Scan(&stock); err != nil &&
			!errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		short = append(short, StockShortage{ItemID: l.ItemID, Required: l.Quantity, Available: stock})
	}

	if len(short) > 0 {
		return nil, &ShortStock{Lines: short} // rollback via defer
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}
