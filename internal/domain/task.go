package domain

import "time"

// TaskStatus es el estado de una tarea. Los valores son los que la UI
// muestra tal cual, por eso llevan espacios y mayúsculas.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// ValidTaskStatus indica si s es uno de los estados conocidos.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task es una tarea personal de un usuario.
type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskStats agrega conteos de tareas por estado para un usuario.
type TaskStats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}
