package repository

import "context"

// CommentaryRepository - внешний генератор текста для комментария к лучшему варианту
type CommentaryRepository interface {
	Summarize(ctx context.Context, score, delayMinutes int, weather, place string) (string, error)
}
