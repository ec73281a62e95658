package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskflow/internal/domain"
	"taskflow/internal/repository"
)

// TaskService coordina reglas de negocio para tareas. Toda operación recibe
// el userID resuelto por el autenticador y solo toca filas de ese usuario.
type TaskService struct {
	logger *zap.Logger
	tasks  repository.TaskRepository
}

func NewTaskService(logger *zap.Logger, tasks repository.TaskRepository) *TaskService {
	return &TaskService{
		logger: logger,
		tasks:  tasks,
	}
}

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyUpdate   = errors.New("no updates provided")
	ErrEmptyTitle    = errors.New("title required")
)

type CreateTaskInput struct {
	Title  string
	Status domain.TaskStatus
}

type UpdateTaskInput struct {
	Title  *string
	Status *domain.TaskStatus
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Task{}, ErrEmptyTitle
	}

	status := input.Status
	if status == "" {
		status = domain.StatusTodo
	}
	if !domain.ValidTaskStatus(status) {
		return domain.Task{}, ErrInvalidStatus
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// Get devuelve una tarea del usuario. Una tarea ajena responde igual que
// una inexistente.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Update aplica un cambio parcial. Una tarea inexistente (o de otro
// usuario) devuelve ErrTaskNotFound.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, input UpdateTaskInput) (domain.Task, error) {
	if input.Title == nil && input.Status == nil {
		return domain.Task{}, ErrEmptyUpdate
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return domain.Task{}, ErrEmptyTitle
		}
		input.Title = &title
	}
	if input.Status != nil && !domain.ValidTaskStatus(*input.Status) {
		return domain.Task{}, ErrInvalidStatus
	}

	task, err := s.tasks.Update(ctx, taskID, userID, input.Title, input.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

// Delete borra la tarea del usuario. No distingue fila inexistente: borrar
// algo ya borrado termina bien.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	return s.tasks.Delete(ctx, taskID, userID)
}

// Stats cuenta tareas por estado para el usuario.
func (s *TaskService) Stats(ctx context.Context, userID string) (domain.TaskStats, error) {
	statuses, err := s.tasks.StatusesByUser(ctx, userID)
	if err != nil {
		return domain.TaskStats{}, err
	}

	stats := domain.TaskStats{Total: len(statuses)}
	for _, status := range statuses {
		switch status {
		case domain.StatusTodo:
			stats.Todo++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}
