package user

// Defaults applied to a user created on first contact.
const (
	DefaultTasksLeft = 100
	DefaultIsAllowed = true
)

// User is a chat participant practising tasks.
type User struct {
	UserID    int64  // Telegram user id, stable external identity
	Username  string // may be empty
	IsAllowed bool
	TasksLeft int // balance of answer checks, never below zero
}

// New returns a user with the defaults used on first contact.
func New(userID int64, username string) *User {
	return &User{
		UserID:    userID,
		Username:  username,
		IsAllowed: DefaultIsAllowed,
		TasksLeft: DefaultTasksLeft,
	}
}

// HasBalance reports whether the user can still request and submit tasks.
func (u *User) HasBalance() bool {
	return u.TasksLeft > 0
}
