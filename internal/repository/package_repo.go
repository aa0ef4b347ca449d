package repository

import (
	"context"
	"errors"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PackageRepository struct {
	db *pgxpool.Pool
}

func NewPackageRepository(db *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, name, price, level_rank, max_daily_tasks, duration_days, category, is_active, created_at`

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*domain.Package, error) {
	row := r.db.QueryRow(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id)
	p, err := scanPackage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PackageRepository) ListActive(ctx context.Context) ([]domain.Package, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+packageColumns+` FROM packages WHERE is_active ORDER BY price
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPackages(rows)
}

func (r *PackageRepository) Create(ctx context.Context, p *domain.Package) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO packages (name, price, level_rank, max_daily_tasks, duration_days, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.Name, p.Price, p.LevelRank, p.MaxDailyTasks, p.DurationDays, p.Category, p.IsActive).Scan(&p.ID, &p.CreatedAt)
}

func (r *PackageRepository) Update(ctx context.Context, p *domain.Package) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE packages
		SET name = $2, price = $3, level_rank = $4, max_daily_tasks = $5,
		    duration_days = $6, category = $7, is_active = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Price, p.LevelRank, p.MaxDailyTasks, p.DurationDays, p.Category, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var p domain.Package
	if err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.LevelRank, &p.MaxDailyTasks,
		&p.DurationDays, &p.Category, &p.IsActive, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPackages(rows pgx.Rows) ([]domain.Package, error) {
	var packages []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, rows.Err()
}
