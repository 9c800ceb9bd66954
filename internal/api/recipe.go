package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/pagination"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
)

// RecipeHandler exposes recipe CRUD, favorite/cart toggles, the short
// link endpoint and the shopping list download.
type RecipeHandler struct {
	recipes      *service.RecipeService
	favorites    *service.FavoriteService
	cart         *service.CartService
	shoppingList *service.ShoppingListService
	shortLinks   *service.ShortLinkService
	validator    middleware.TokenValidator
	rateLimiter  *middleware.RateLimiter
	projector    projector
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	favorites *service.FavoriteService,
	cart *service.CartService,
	shoppingList *service.ShoppingListService,
	shortLinks *service.ShortLinkService,
	validator middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
	db *gorm.DB,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		favorites:    favorites,
		cart:         cart,
		shoppingList: shoppingList,
		shortLinks:   shortLinks,
		validator:    validator,
		rateLimiter:  rateLimiter,
		projector:    projector{db: db},
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	public := router.Group("/recipes")
	public.Use(middleware.OptionalAuthMiddleware(h.validator))
	{
		public.GET("", h.List)
		public.GET("/:id", h.Get)
		public.GET("/:id/get-link", h.GetLink)
	}

	authed := router.Group("/recipes")
	authed.Use(middleware.AuthMiddleware(h.validator))
	{
		mutations := authed.Group("")
		if h.rateLimiter != nil {
			mutations.Use(h.rateLimiter.Middleware())
		}
		mutations.POST("", h.Create)
		mutations.PATCH("/:id", h.Update)
		mutations.DELETE("/:id", h.Delete)

		authed.POST("/:id/favorite", h.Favorite)
		authed.DELETE("/:id/favorite", h.Unfavorite)
		authed.POST("/:id/shopping_cart", h.AddToCart)
		authed.DELETE("/:id/shopping_cart", h.RemoveFromCart)
		authed.GET("/download_shopping_cart", h.DownloadShoppingCart)
	}
}

type recipeIngredientRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type recipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time"`
	Ingredients []recipeIngredientRequest `json:"ingredients"`
}

func (r recipeRequest) toInput() service.RecipeInput {
	in := service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
	for _, ing := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, service.RecipeIngredientInput{
			ID:     ing.ID,
			Amount: ing.Amount,
		})
	}
	return in
}

func (h *RecipeHandler) List(c *gin.Context) {
	rc := GetRequestContext(c)
	params := pagination.FromQuery(c)

	filter := service.RecipeFilter{Limit: params.Limit, Offset: params.Offset()}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid author id"})
			return
		}
		authorID := uint(id)
		filter.AuthorID = &authorID
	}
	// Viewer-relative filters only apply for authenticated callers.
	if rc.IsAuthenticated {
		if isBoolSet(c.Query("is_favorited")) {
			filter.FavoritedBy = &rc.UserID
		}
		if isBoolSet(c.Query("is_in_shopping_cart")) {
			filter.InCartOf = &rc.UserID
		}
	}

	recipes, total, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.projector.recipes(c.Request.Context(), rc, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(c, params, total, results))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.recipe(c.Request.Context(), GetRequestContext(c), *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	rc := GetRequestContext(c)
	recipe, err := h.recipes.Create(c.Request.Context(), rc.UserID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.recipe(c.Request.Context(), rc, *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	rc := GetRequestContext(c)
	actor := &types.TokenClaims{UserID: rc.UserID, IsAdmin: rc.IsAdmin}
	recipe, err := h.recipes.Update(c.Request.Context(), id, actor, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.projector.recipe(c.Request.Context(), rc, *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	rc := GetRequestContext(c)
	actor := &types.TokenClaims{UserID: rc.UserID, IsAdmin: rc.IsAdmin}
	if err := h.recipes.Delete(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.toggleAdd(c, h.favorites.Add)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.toggleRemove(c, h.favorites.Remove)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggleAdd(c, h.cart.Add)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.toggleRemove(c, h.cart.Remove)
}

// toggleAdd handles the shared add semantics of the favorite and cart
// endpoints; both respond with the recipe summary on success.
func (h *RecipeHandler) toggleAdd(c *gin.Context, add func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	rc := GetRequestContext(c)
	if err := add(c.Request.Context(), rc.UserID, id); err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	})
}

func (h *RecipeHandler) toggleRemove(c *gin.Context, remove func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	rc := GetRequestContext(c)
	if err := remove(c.Request.Context(), rc.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func isBoolSet(v string) bool {
	return v == "1" || v == "true"
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	link, err := h.shortLinks.ShortLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": link})
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	rc := GetRequestContext(c)
	doc, err := h.shoppingList.Build(c.Request.Context(), rc.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}
