package repository

import (
	"context"
	"errors"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, reward, level1_reward, level2_reward, level3_reward,
	min_level_rank, watch_seconds, provider, video_url, is_active, created_at`

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListActive returns active tasks available at the given level rank.
func (r *TaskRepository) ListActive(ctx context.Context, levelRank int) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE is_active AND min_level_rank <= $1
		ORDER BY id
	`, levelRank)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, reward, level1_reward, level2_reward, level3_reward,
			min_level_rank, watch_seconds, provider, video_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, t.Title, t.Reward, t.Level1Reward, t.Level2Reward, t.Level3Reward,
		t.MinLevelRank, t.WatchSeconds, t.Provider, t.VideoURL, t.IsActive).Scan(&t.ID, &t.CreatedAt)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET title = $2, reward = $3, level1_reward = $4, level2_reward = $5, level3_reward = $6,
		    min_level_rank = $7, watch_seconds = $8, provider = $9, video_url = $10, is_active = $11
		WHERE id = $1
	`, t.ID, t.Title, t.Reward, t.Level1Reward, t.Level2Reward, t.Level3Reward,
		t.MinLevelRank, t.WatchSeconds, t.Provider, t.VideoURL, t.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TaskRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.Exec(ctx, `UPDATE tasks SET is_active = $2 WHERE id = $1`, id, active)
	return err
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.Title, &t.Reward, &t.Level1Reward, &t.Level2Reward, &t.Level3Reward,
		&t.MinLevelRank, &t.WatchSeconds, &t.Provider, &t.VideoURL, &t.IsActive, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
