package pattern

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/folderly/internal/service"
)

// ExampleRules returns the rules seeded for a user that has none yet.
func ExampleRules(now time.Time) []Rule {
	now = now.In(time.Local)
	minSize := int64(1500)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	yearAgo := time.Date(now.Year()-1, now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	return []Rule{
		{
			Name:        "Imágenes grandes recientes",
			Destination: "Imagenes_Grandes_Recientes",
			Extensions:  []string{"jpg", "png", "jpeg"},
			MinSizeKB:   &minSize,
			From:        &monthStart,
		},
		{
			Name:        "Documentos antiguos",
			Destination: "Documentos_Antiguos",
			Extensions:  []string{"pdf", "docx", "pptx"},
			To:          &yearAgo,
		},
	}
}

// LoadOrSeed loads the stored rules. When there are none, the example rules
// are saved immediately and returned.
func LoadOrSeed(ctx context.Context, store service.RuleStore, now time.Time) ([]Rule, error) {
	rules, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rules) > 0 {
		return rules, nil
	}

	examples := ExampleRules(now)
	if err := store.Save(ctx, examples); err != nil {
		return nil, fmt.Errorf("failed to seed example rules: %w", err)
	}
	slog.Info("Seeded example rules", "count", len(examples))

	return store.Load(ctx)
}
