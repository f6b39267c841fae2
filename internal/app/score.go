package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var scorePattern = regexp.MustCompile(`(?i)баллы\D*(\d+(?:[.,]\d+)?)`)

// ParseScore extracts the first number following the "баллы" label.
// Comma decimals are accepted. ok is false when no labelled number is found.
func ParseScore(output string) (score float64, ok bool) {
	m := scorePattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BuildPrompt renders the grading request sent to the model.
func BuildPrompt(taskText, answerKey, userAnswer string, maxScore float64) string {
	return fmt.Sprintf(
		"Задание: %s Эталонный ответ (для сверки смысла, не слов): %s. Ответ ученика: %s. Максимальный балл: %s",
		taskText, answerKey, userAnswer, strconv.FormatFloat(maxScore, 'f', -1, 64),
	)
}
