package grading

import "context"

//go:generate mockgen -source=./grader.go -package=gradingmocks -destination=./mocks/grader.mock.go Grader

// Grader asks a language model to score an answer. The reply is free-form text
// containing a labelled score and commentary.
type Grader interface {
	Name() string
	Grade(ctx context.Context, prompt string) (string, error)
}
