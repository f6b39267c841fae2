package grader

import (
	"fmt"
	"time"

	"task_practice_bot/internal/domain/grading"
	"task_practice_bot/internal/infra/config"
)

// Timeout bounds a single grading call.
const Timeout = 90 * time.Second

// New builds the grader selected by GRADER_PROVIDER.
func New(cfg *config.AppConfig) (grading.Grader, error) {
	switch cfg.GraderProvider {
	case config.GraderMistral:
		return NewMistralGrader(cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.MistralAgentID), nil
	case config.GraderOpenAI:
		return NewOpenAIGrader(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case config.GraderZhipu:
		return NewZhipuGrader(cfg.ZhipuAPIKey, cfg.ZhipuBaseURL, cfg.ZhipuModel)
	default:
		return nil, fmt.Errorf("unknown grader provider %q", cfg.GraderProvider)
	}
}
