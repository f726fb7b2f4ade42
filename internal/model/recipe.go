package model

// Recipe は消費カロリーに応じて提案するレシピ。
type Recipe struct {
	Title    string
	Calories float64
	Image    string
}

// RecipeSuggestion は直近のワークアウトの消費カロリーと提案レシピの組。
type RecipeSuggestion struct {
	CaloriesBurned float64
	Recipes        []Recipe
}
