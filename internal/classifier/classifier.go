package classifier

import (
	"context"
	"strings"
)

// Classifier produces tags for a free-text log entry.
type Classifier interface {
	ClassifyContent(ctx context.Context, content string) []string
}

type SimpleClassifier struct {
	maxTags int
}

func NewSimpleClassifier(maxTags int) *SimpleClassifier {
	return &SimpleClassifier{maxTags: maxTags}
}

// Simple implementation that extracts hashtags and common keywords
func (c *SimpleClassifier) ClassifyContent(ctx context.Context, content string) []string {
	words := strings.Fields(content)
	tags := make(map[string]struct{})
	var ordered []string

	add := func(tag string) {
		if _, seen := tags[tag]; seen {
			return
		}
		tags[tag] = struct{}{}
		ordered = append(ordered, tag)
	}

	// Extract hashtags
	for _, word := range words {
		if strings.HasPrefix(word, "#") {
			tag := strings.ToLower(strings.TrimPrefix(word, "#"))
			if tag != "" {
				add(tag)
			}
		}
	}

	// Extract common categories based on keywords
	categories := []struct {
		name     string
		keywords []string
	}{
		{"work", []string{"project", "meeting", "deadline", "task", "focus"}},
		{"health", []string{"sleep", "tired", "energy", "workout", "walk"}},
		{"mood", []string{"happy", "anxious", "calm", "stressed", "grateful"}},
		{"planning", []string{"plan", "tomorrow", "schedule", "should", "try"}},
	}

	lowered := strings.ToLower(content)
	for _, category := range categories {
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				add(category.name)
				break
			}
		}
	}

	if len(ordered) > c.maxTags {
		ordered = ordered[:c.maxTags]
	}

	return ordered
}
