package promotions

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("promotion not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Promotion, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, title, description, image_path, date, created_at
	                              FROM promotions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Promotion{}
	for rows.Next() {
		var p Promotion
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ImagePath, &p.Date, &p.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Insert(ctx context.Context, p *Promotion) error {
	return r.DB.QueryRow(ctx, `INSERT INTO promotions(title, description, image_path, date, created_at)
	                           VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		p.Title, p.Description, p.ImagePath, p.Date, p.Timestamp).Scan(&p.ID)
}

func (r *Repo) ImagePath(ctx context.Context, id int64) (string, error) {
	var p string
	err := r.DB.QueryRow(ctx, `SELECT image_path FROM promotions WHERE id=$1`, id).Scan(&p)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return p, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM promotions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
