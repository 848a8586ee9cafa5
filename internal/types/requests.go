package types

// IngredientAmount is one ingredient line of a recipe write request.
// Amount and cooking time are capped at the positive smallint range.
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gt=0,max=32767"`
}

// RecipeRequest is the body of POST and PATCH /recipes. Image carries a
// base64 data URI; on update an empty image keeps the stored one.
type RecipeRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time" validate:"min=1,max=32767"`
	Tags        []uint             `json:"tags" validate:"required,min=1"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
}

// AvatarRequest is the body of PUT /users/me/avatar
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}
