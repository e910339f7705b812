package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

// Repo is the Postgres-backed Store.
type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, customer_name, phone_number, number_of_people, items, status,
	placed_at, COALESCE(payment_proof, ''), verified`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o     Order
		items string
	)
	if err := row.Scan(&o.ID, &o.CustomerName, &o.PhoneNumber, &o.NumberOfPeople, &items,
		&o.Status, &o.Timestamp, &o.PaymentProof, &o.Verified); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items for order %d: %w", o.ID, err)
	}
	return o, nil
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders
		ORDER BY CASE status
			WHEN 'pending' THEN 1
			WHEN 'preparing' THEN 2
			WHEN 'ready' THEN 3
			WHEN 'completed' THEN 4
			ELSE 5
		END, placed_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// Insert stores o and fills in its generated id.
func (r *Repo) Insert(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO orders(customer_name, phone_number, number_of_people, items, status, placed_at, payment_proof, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		o.CustomerName, o.PhoneNumber, o.NumberOfPeople, string(items), o.Status, o.Timestamp, o.PaymentProof, o.Verified,
	).Scan(&o.ID)
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, s Status) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, s)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerified juga memaksa status ke preparing kalau verified=true; unverify tidak mengubah status.
func (r *Repo) SetVerified(ctx context.Context, id int64, verified bool) error {
	sql := `UPDATE orders SET verified=false WHERE id=$1`
	if verified {
		sql = `UPDATE orders SET verified=true, status='preparing' WHERE id=$1`
	}
	ct, err := r.DB.Exec(ctx, sql, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompleted removes every completed order and returns the removed ids.
func (r *Repo) DeleteCompleted(ctx context.Context) ([]int64, error) {
	rows, err := r.DB.Query(ctx, `DELETE FROM orders WHERE status='completed' RETURNING id`)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
