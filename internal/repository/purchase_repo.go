package repository

import (
	"context"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository struct {
	db *pgxpool.Pool
}

func NewPurchaseRepository(db *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// CreateTx records the purchase; the returned id keys the commission fan-out.
func (r *PurchaseRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *domain.Purchase) error {
	return tx.QueryRow(ctx, `
		INSERT INTO package_purchases (account_id, package_id, price, level_rank)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.AccountID, p.PackageID, p.Price, p.LevelRank).Scan(&p.ID, &p.CreatedAt)
}

func (r *PurchaseRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.Purchase, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, package_id, price, level_rank, created_at
		FROM package_purchases
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.AccountID, &p.PackageID, &p.Price, &p.LevelRank, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
