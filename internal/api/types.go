package api

import (
	"context"

	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// UserResponse is the public shape of a user, including the
// viewer-relative is_subscribed flag.
type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeSummary is the short projection shared by the subscriptions
// listing and any feature that embeds another user's recipes.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// projector builds response DTOs, resolving viewer-relative fields
// against the store for the identity in the RequestContext.
type projector struct {
	db *gorm.DB
}

func (p projector) user(ctx context.Context, rc RequestContext, u models.User) (UserResponse, error) {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.AvatarURL,
	}
	if rc.IsAuthenticated {
		var count int64
		err := p.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("user_id = ? AND author_id = ?", rc.UserID, u.ID).
			Count(&count).Error
		if err != nil {
			return resp, err
		}
		resp.IsSubscribed = count > 0
	}
	return resp, nil
}

func (p projector) recipe(ctx context.Context, rc RequestContext, r models.Recipe) (RecipeResponse, error) {
	author, err := p.user(ctx, rc, r.Author)
	if err != nil {
		return RecipeResponse{}, err
	}

	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	resp := RecipeResponse{
		ID:          r.ID,
		Author:      author,
		Ingredients: ingredients,
		Name:        r.Name,
		Image:       r.ImageURL,
		Text:        r.Text,
		CookingTime: r.CookingTime,
	}
	if rc.IsAuthenticated {
		var count int64
		err = p.db.WithContext(ctx).Model(&models.FavoriteRecipe{}).
			Where("user_id = ? AND recipe_id = ?", rc.UserID, r.ID).
			Count(&count).Error
		if err != nil {
			return resp, err
		}
		resp.IsFavorited = count > 0

		err = p.db.WithContext(ctx).Model(&models.ShoppingCartItem{}).
			Where("user_id = ? AND recipe_id = ?", rc.UserID, r.ID).
			Count(&count).Error
		if err != nil {
			return resp, err
		}
		resp.IsInShoppingCart = count > 0
	}
	return resp, nil
}

func (p projector) recipes(ctx context.Context, rc RequestContext, rs []models.Recipe) ([]RecipeResponse, error) {
	out := make([]RecipeResponse, 0, len(rs))
	for _, r := range rs {
		resp, err := p.recipe(ctx, rc, r)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func recipeSummaries(rs []models.Recipe) []RecipeSummary {
	out := make([]RecipeSummary, 0, len(rs))
	for _, r := range rs {
		out = append(out, RecipeSummary{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return out
}
