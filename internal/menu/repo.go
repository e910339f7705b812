package menu

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("menu item not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, type, price, COALESCE(image_path, ''), created_at
	                              FROM menu ORDER BY type, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Type, &it.Price, &it.ImagePath, &it.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Insert(ctx context.Context, it *Item) error {
	var image any
	if it.ImagePath != "" {
		image = it.ImagePath
	}
	return r.DB.QueryRow(ctx, `INSERT INTO menu(name, type, price, image_path, created_at)
	                           VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		it.Name, it.Type, it.Price, image, it.Timestamp).Scan(&it.ID)
}

// ImagePath returns the stored image filename ("" when the item has none).
func (r *Repo) ImagePath(ctx context.Context, id int64) (string, error) {
	var p string
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(image_path, '') FROM menu WHERE id=$1`, id).Scan(&p)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return p, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM menu WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
