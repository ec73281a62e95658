package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow/internal/domain"
	"taskflow/internal/service"
)

// TaskHandler mantiene dependencias para endpoints de tareas. Todas las
// rutas cuelgan detrás del middleware JWT: el userID siempre viene del
// token verificado, nunca del body.
type TaskHandler struct {
	logger   *zap.Logger
	taskServ *service.TaskService
}

// NewTaskHandler crea una instancia de TaskHandler con dependencias necesarias.
func NewTaskHandler(logger *zap.Logger, taskServ *service.TaskService) *TaskHandler {
	return &TaskHandler{
		logger:   logger,
		taskServ: taskServ,
	}
}

// List maneja GET /api/tasks.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	tasks, err := h.taskServ.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list tasks failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Get maneja GET /api/tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	task, err := h.taskServ.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		h.logger.Error("get task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// Stats maneja GET /api/tasks/stats.
func (h *TaskHandler) Stats(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	stats, err := h.taskServ.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("task stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Create maneja POST /api/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	var req struct {
		Title  string            `json:"title" binding:"required"`
		Status domain.TaskStatus `json:"status" binding:"omitempty,oneof='Todo' 'In Progress' 'Completed'"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	task, err := h.taskServ.Create(c.Request.Context(), userID, service.CreateTaskInput{
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyTitle) || errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.logger.Error("create task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Update maneja PUT /api/tasks/:id. Tarea inexistente responde 404.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	var req struct {
		Title  *string            `json:"title" binding:"omitempty"`
		Status *domain.TaskStatus `json:"status" binding:"omitempty,oneof='Todo' 'In Progress' 'Completed'"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	task, err := h.taskServ.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateTaskInput{
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, service.ErrEmptyUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updates provided"})
		case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		default:
			h.logger.Error("update task failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		}
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete maneja DELETE /api/tasks/:id. Una tarea que ya no existe borra
// en vacío y responde igual que un borrado real.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	if err := h.taskServ.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.logger.Error("delete task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
