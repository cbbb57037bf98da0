package ai

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

type modelEntry struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	DisplayName string `mapstructure:"display_name"`
	Model       string `mapstructure:"model"`
}

func (e modelEntry) label() string {
	for _, candidate := range []string{e.ID, e.Name, e.DisplayName, e.Model} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// NormalizeModelList turns a decoded listing payload into model names. It
// accepts a bare array or an object with a models array; items are strings or
// objects named by id, name, display_name or model.
func NormalizeModelList(payload any) []string {
	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		if list, ok := v["models"].([]any); ok {
			items = list
		}
	}

	models := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				models = append(models, trimmed)
			}
		case map[string]any:
			var entry modelEntry
			if err := mapstructure.WeakDecode(v, &entry); err != nil {
				continue
			}
			if label := entry.label(); label != "" {
				models = append(models, label)
			}
		}
	}
	return models
}

// SplitModelList parses a comma separated model list, dropping blanks.
func SplitModelList(csv string) []string {
	models := make([]string, 0)
	for _, item := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			models = append(models, trimmed)
		}
	}
	return models
}
