package catalog

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
)

func (s *Store) BasketEntry(ctx context.Context, customerID int64, itemID int) (BasketEntry, error) {
	e := BasketEntry{CustomerID: customerID, ItemID: itemID}
	err := s.DB.QueryRow(ctx, `SELECT quantity, modified_at FROM basket WHERE customer_id=$1 AND item_id=$2`,
		customerID, itemID).Scan(&e.Quantity, &e.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BasketEntry{}, ErrNotFound
	}
	return e, err
}

func (s *Store) BasketLines(ctx context.Context, customerID int64) ([]BasketLine, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT b.item_id, i.item_name, i.item_price, b.quantity
		FROM basket b JOIN items i USING (item_id)
		WHERE b.customer_id=$1
		ORDER BY b.modified_at, b.item_id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BasketLine
	for rows.Next() {
		var l BasketLine
		if err := rows.Scan(&l.ItemID, &l.Name, &l.Price, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) PutBasketEntry(ctx context.Context, e BasketEntry) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO basket(customer_id, item_id, quantity, modified_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id, item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity, modified_at = EXCLUDED.modified_at`,
		e.CustomerID, e.ItemID, e.Quantity, e.ModifiedAt)
	return mapPgError(err, nil)
}

func (s *Store) DeleteBasketEntry(ctx context.Context, customerID int64, itemID int) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM basket WHERE customer_id=$1 AND item_id=$2`, customerID, itemID)
	return err
}

func (s *Store) ClearBasket(ctx context.Context, customerID int64) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM basket WHERE customer_id=$1`, customerID)
	return err
}

func (s *Store) UpsertCustomer(ctx context.Context, c Customer) (bool, error) {
	var created bool
	// xmax = 0 hanya untuk baris yang baru di-insert
	err := s.DB.QueryRow(ctx, `
		INSERT INTO customers(id, username, full_name, first_seen, referrer_id)
		VALUES ($1, $2, $3, $4, NULLIF($5::bigint, 0))
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, full_name = EXCLUDED.full_name
		RETURNING (xmax = 0)`,
		c.ID, c.Username, c.FullName, c.FirstSeen, c.ReferrerID).Scan(&created)
	return created, err
}

func (s *Store) Customer(ctx context.Context, id int64) (Customer, error) {
	c := Customer{ID: id}
	err := s.DB.QueryRow(ctx, `SELECT username, full_name, COALESCE(email, ''), first_seen, COALESCE(referrer_id, 0)
		FROM customers WHERE id=$1`,
		id).Scan(&c.Username, &c.FullName, &c.Email, &c.FirstSeen, &c.ReferrerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (s *Store) SetCustomerEmail(ctx context.Context, id int64, email string) error {
	_, err := s.DB.Exec(ctx, `UPDATE customers SET email=$2 WHERE id=$1`, id, email)
	return err
}
