package task

// DefaultMaxScore is used when a task row carries no max score.
const DefaultMaxScore = 2.0

// CategoryAll selects tasks regardless of their category.
const CategoryAll = "all"

// Task is an externally curated practice exercise. Tasks are never modified by the bot.
type Task struct {
	ID            int64
	Category      string
	Text          string
	AnswerKeyText string // reference answer, never shown to the user
	MaxScore      float64
}

// IsAllCategories reports whether category means "no filter".
func IsAllCategories(category string) bool {
	return category == "" || category == CategoryAll
}
