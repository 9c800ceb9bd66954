package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/pagination"
	"github.com/platefeed/backend/internal/service"
)

// UserHandler exposes user profiles, avatars and subscriptions.
type UserHandler struct {
	users     *service.UserService
	subs      *service.SubscriptionService
	validator middleware.TokenValidator
	projector projector
}

func NewUserHandler(users *service.UserService, subs *service.SubscriptionService, validator middleware.TokenValidator, db *gorm.DB) *UserHandler {
	return &UserHandler{
		users:     users,
		subs:      subs,
		validator: validator,
		projector: projector{db: db},
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(middleware.OptionalAuthMiddleware(h.validator))
	{
		users.GET("", h.List)
		users.GET("/:id", h.Get)
	}

	authed := router.Group("/users")
	authed.Use(middleware.AuthMiddleware(h.validator))
	{
		authed.GET("/me", h.Me)
		authed.PUT("/me/avatar", h.SetAvatar)
		authed.DELETE("/me/avatar", h.DeleteAvatar)
		authed.GET("/subscriptions", h.Subscriptions)
		authed.POST("/:id/subscribe", h.Subscribe)
		authed.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *UserHandler) List(c *gin.Context) {
	params := pagination.FromQuery(c)
	users, total, err := h.users.List(c.Request.Context(), params.Limit, params.Offset())
	if err != nil {
		respondError(c, err)
		return
	}

	rc := GetRequestContext(c)
	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp, err := h.projector.user(c.Request.Context(), rc, u)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}
	c.JSON(http.StatusOK, pagination.NewPage(c, params, total, results))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.user(c.Request.Context(), GetRequestContext(c), *user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	rc := GetRequestContext(c)
	user, err := h.users.Get(c.Request.Context(), rc.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.user(c.Request.Context(), rc, *user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type avatarRequest struct {
	Avatar string `json:"avatar"`
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	rc := GetRequestContext(c)
	url, err := h.users.SetAvatar(c.Request.Context(), rc.UserID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	rc := GetRequestContext(c)
	if err := h.users.DeleteAvatar(c.Request.Context(), rc.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}

	rc := GetRequestContext(c)
	if err := h.subs.Subscribe(c.Request.Context(), rc.UserID, authorID); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.subscriptionResponse(c, rc, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}

	rc := GetRequestContext(c)
	if err := h.subs.Unsubscribe(c.Request.Context(), rc.UserID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	rc := GetRequestContext(c)
	params := pagination.FromQuery(c)

	recipesLimit := service.DefaultRecipesLimit
	if v, err := strconv.Atoi(c.Query("recipes_limit")); err == nil && v > 0 {
		recipesLimit = v
	}

	entries, total, err := h.subs.List(c.Request.Context(), rc.UserID, recipesLimit, params.Limit, params.Offset())
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(entries))
	for _, entry := range entries {
		author, err := h.projector.user(c.Request.Context(), rc, entry.Author)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, SubscriptionResponse{
			UserResponse: author,
			Recipes:      recipeSummaries(entry.Recipes),
			RecipesCount: entry.RecipeCount,
		})
	}
	c.JSON(http.StatusOK, pagination.NewPage(c, params, total, results))
}

// subscriptionResponse builds the entry returned right after
// subscribing, mirroring the subscriptions listing shape.
func (h *UserHandler) subscriptionResponse(c *gin.Context, rc RequestContext, authorID uint) (SubscriptionResponse, error) {
	author, err := h.users.Get(c.Request.Context(), authorID)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	authorResp, err := h.projector.user(c.Request.Context(), rc, *author)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	entries, _, err := h.subs.List(c.Request.Context(), rc.UserID, service.DefaultRecipesLimit, 0, 0)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	for _, entry := range entries {
		if entry.Author.ID == authorID {
			return SubscriptionResponse{
				UserResponse: authorResp,
				Recipes:      recipeSummaries(entry.Recipes),
				RecipesCount: entry.RecipeCount,
			}, nil
		}
	}
	return SubscriptionResponse{UserResponse: authorResp}, nil
}
