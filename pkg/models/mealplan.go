package models

// MealType distinguishes planned meal slots.
type MealType string

const (
	MealTypeLunch  MealType = "lunch"
	MealTypeDinner MealType = "dinner"
)

// DayOfWeek is a lowercase weekday name, matching what the UI sends.
type DayOfWeek string

const (
	Sunday    DayOfWeek = "sunday"
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
)

// ValidDayOfWeek reports whether d is one of the seven weekday names.
func ValidDayOfWeek(d DayOfWeek) bool {
	switch d {
	case Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	}
	return false
}

// WeekDays returns the seven days starting from the given week start day.
func WeekDays(start DayOfWeek) []DayOfWeek {
	all := []DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
	offset := 0
	for i, d := range all {
		if d == start {
			offset = i
			break
		}
	}
	days := make([]DayOfWeek, 7)
	for i := range days {
		days[i] = all[(offset+i)%7]
	}
	return days
}

// MealPlanMeal is one recipe planned into a meal slot.
type MealPlanMeal struct {
	ID         int64    `json:"id"`
	RecipeID   int64    `json:"recipe_id"`
	RecipeName string   `json:"recipe_name"`
	MealType   MealType `json:"meal_type"`
	SortOrder  int      `json:"sort_order"`
}

// MealPlanDay is one day of a weekly plan with its lunch and dinner slots.
type MealPlanDay struct {
	ID        int64          `json:"id"`
	DayOfWeek DayOfWeek      `json:"day_of_week"`
	Lunch     []MealPlanMeal `json:"lunch"`
	Dinner    []MealPlanMeal `json:"dinner"`
}

// MealPlan is a user's weekly meal plan. One active plan per user.
type MealPlan struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	WeekStartDay DayOfWeek     `json:"week_start_day"`
	Days         []MealPlanDay `json:"days"`
}
