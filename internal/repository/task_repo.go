package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskflow/internal/domain"
)

// TaskRepository define el contrato de persistencia para tareas. Todas las
// operaciones van acotadas por user_id: una tarea ajena se comporta igual
// que una inexistente.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	GetByID(ctx context.Context, id, userID string) (domain.Task, error)
	Update(ctx context.Context, id, userID string, title *string, status *domain.TaskStatus) (domain.Task, error)
	Delete(ctx context.Context, id, userID string) error
	StatusesByUser(ctx context.Context, userID string) ([]domain.TaskStatus, error)
}

// PgTaskRepository implementa TaskRepository usando pgxpool.
type PgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) error {
	const query = `
		INSERT INTO tasks (id, user_id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *PgTaskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	const query = `
		SELECT id, user_id, title, status, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		err = rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Status,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *PgTaskRepository) GetByID(ctx context.Context, id, userID string) (domain.Task, error) {
	const query = `
		SELECT id, user_id, title, status, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, err
	}
	return t, err
}

// Update aplica un cambio parcial: los campos nil conservan su valor.
// Si la fila no existe para ese usuario, el RETURNING no produce filas y
// se propaga pgx.ErrNoRows.
func (r *PgTaskRepository) Update(ctx context.Context, id, userID string, title *string, status *domain.TaskStatus) (domain.Task, error) {
	const query = `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    status = COALESCE($4, status),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, status, created_at, updated_at
	`
	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id, userID, title, status).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, err
	}
	return t, err
}

// Delete no verifica filas afectadas: borrar una tarea inexistente termina
// sin error, igual que el backend original.
func (r *PgTaskRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.pool.Exec(ctx, query, id, userID)
	return err
}

// StatusesByUser proyecta solo la columna status para calcular estadísticas.
func (r *PgTaskRepository) StatusesByUser(ctx context.Context, userID string) ([]domain.TaskStatus, error) {
	const query = `
		SELECT status
		FROM tasks
		WHERE user_id = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []domain.TaskStatus
	for rows.Next() {
		var s domain.TaskStatus
		if err = rows.Scan(&s); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return statuses, nil
}
