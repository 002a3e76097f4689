// Package http wires the public JSON API onto gin. Handlers translate
// between request/response DTOs and the domain services; error mapping
// follows a fixed taxonomy: validation 400, auth 401, missing rows 404,
// everything unexpected 500 with a generic body.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/faccoco/web-todo/internal/domain"
	"github.com/faccoco/web-todo/internal/repository"
	"github.com/faccoco/web-todo/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	todos  service.TodoService
	logger *logrus.Logger
}

func NewHandler(users service.UserService, todos service.TodoService, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		todos:  todos,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", h.authRequired(), h.me)

		todos := api.Group("/todos", h.authRequired())
		{
			todos.GET("", h.listTodos)
			todos.POST("", h.createTodo)
			todos.GET("/:id", h.getTodo)
			todos.PUT("/:id", h.updateTodo)
			todos.DELETE("/:id", h.deleteTodo)
		}
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Text    string  `json:"text"`
	DueDate *string `json:"dueDate"`
}

type updateTodoRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// AuthUserResponse is the short user shape embedded in register/login
// responses.
type AuthUserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	User  AuthUserResponse `json:"user"`
	Token string           `json:"token"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type TodoResponse struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DueDate   *string `json:"due_date"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		User:  authUserToResponse(user),
		Token: h.users.IssueToken(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:  authUserToResponse(user),
		Token: h.users.IssueToken(user),
	})
}

func (h *Handler) me(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) listTodos(c *gin.Context) {
	user := currentUser(c)

	todos, err := h.todos.List(c.Request.Context(), user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]TodoResponse, len(todos))
	for i := range todos {
		resp[i] = todoToResponse(todos[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createTodo(c *gin.Context) {
	user := currentUser(c)

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text field is required"})
		return
	}

	todo, err := h.todos.Create(c.Request.Context(), user.ID, req.Text, req.DueDate)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, todoToResponse(*todo))
}

func (h *Handler) getTodo(c *gin.Context) {
	user := currentUser(c)

	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := h.todos.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, todoToResponse(*todo))
}

func (h *Handler) updateTodo(c *gin.Context) {
	user := currentUser(c)

	id, ok := todoID(c)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text field is required"})
		return
	}

	todo, err := h.todos.Update(c.Request.Context(), id, user.ID, req.Text, req.Completed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, todoToResponse(*todo))
}

func (h *Handler) deleteTodo(c *gin.Context) {
	user := currentUser(c)

	id, ok := todoID(c)
	if !ok {
		return
	}

	deleted, err := h.todos.Delete(c.Request.Context(), id, user.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}).Errorf("request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func authUserToResponse(user *domain.User) AuthUserResponse {
	return AuthUserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func todoToResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        todo.ID,
		UserID:    todo.UserID,
		Text:      todo.Text,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt.Format(time.RFC3339),
		UpdatedAt: todo.UpdatedAt.Format(time.RFC3339),
		DueDate:   todo.DueDate,
	}
}
