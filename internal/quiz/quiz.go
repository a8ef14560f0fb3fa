// Package quiz holds the style quiz: its questions, answer validation, and
// the recommend/generate requests built from a completed set of answers.
package quiz

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dressi-app/dressi/internal/backend"
)

const (
	KeyStyle     = "style"
	KeyBodyShape = "bodyShape"

	// RecommendCount is the size of the eager batch that seeds the queue.
	RecommendCount = 16
	// GenerateCount is the size of the background batch that fills placeholders.
	GenerateCount = 4
)

type Question struct {
	Key     string
	Prompt  string
	Options []string
}

var Questions = []Question{
	{
		Key:     KeyStyle,
		Prompt:  "What's your preferred style?",
		Options: []string{"Casual", "Sporty", "Formal", "Party"},
	},
	{
		Key:     KeyBodyShape,
		Prompt:  "What's your body shape?",
		Options: []string{"Rectangle", "Hourglass", "Pear", "Round", "Inverted Triangle"},
	},
}

// ErrInvalidAnswer wraps every answer validation failure.
var ErrInvalidAnswer = errors.New("invalid quiz answer")

// Answers maps a question key to the chosen option.
type Answers map[string]string

// Normalize matches each answer to its option label case-insensitively and
// returns the canonical labels.
func Normalize(a Answers) (Answers, error) {
	out := make(Answers, len(Questions))
	for _, q := range Questions {
		given := strings.TrimSpace(a[q.Key])
		if given == "" {
			return nil, fmt.Errorf("%w: missing answer for %q", ErrInvalidAnswer, q.Key)
		}
		idx := slices.IndexFunc(q.Options, func(opt string) bool {
			return strings.EqualFold(opt, given)
		})
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q for %q, choose one of %s", ErrInvalidAnswer, given, q.Key, strings.Join(q.Options, ", "))
		}
		out[q.Key] = q.Options[idx]
	}
	return out, nil
}

func (a Answers) Style() string     { return a[KeyStyle] }
func (a Answers) BodyShape() string { return a[KeyBodyShape] }

// RecommendRequest builds the eager request. useWeather asks the backend to
// bias results by local weather.
func RecommendRequest(a Answers, useWeather bool) backend.QuizRequest {
	return backend.QuizRequest{
		Styles:     []string{a.Style()},
		BodyShapes: []string{a.BodyShape()},
		ImageCount: RecommendCount,
		UseWeather: &useWeather,
	}
}

func GenerateRequest(a Answers) backend.QuizRequest {
	return backend.QuizRequest{
		Styles:     []string{a.Style()},
		BodyShapes: []string{a.BodyShape()},
		ImageCount: GenerateCount,
	}
}

// WeatherSummary is the one-line status shown above the swipe deck.
func WeatherSummary(useWeather bool, w *backend.Weather) string {
	if !useWeather {
		return "Weather filtering off"
	}
	if w == nil || !w.Applied || w.Tag == "" {
		return "Weather filtering on"
	}
	where := ""
	if w.City != "" {
		where = " in " + w.City
	}
	if w.Temperature != nil {
		return fmt.Sprintf("Tuned for %s weather%s (%.0f°)", w.Tag, where, *w.Temperature)
	}
	return fmt.Sprintf("Tuned for %s weather%s", w.Tag, where)
}
