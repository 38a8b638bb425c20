package pagegen

import (
	"errors"
	"fmt"
	"os"
)

// LoadTemplate reads the template from disk. Nothing is cached between calls.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("template %s: %w", path, ErrFileNotFound)
		}
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}
