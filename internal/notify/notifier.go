package notify

import (
	"context"
	"fmt"
	"strings"

	"veda-backend/internal/models"
)

// Notifier publishes a message to whoever watches answer quality.
// Swapping the log notifier for email needs no handler changes.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// RatingMessage renders the notification sent when a user rates an answer.
func RatingMessage(id string, rating models.Rating) string {
	verdict := "👍"
	if rating == models.RatingDown {
		verdict = "👎"
	}
	var b strings.Builder
	b.WriteString("New answer rating received\n")
	fmt.Fprintf(&b, "Record: %s\n", id)
	fmt.Fprintf(&b, "Rating: %s %s", verdict, rating)
	return b.String()
}
