package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/interfaces"
)

type FileRuleLoader struct {
	BaseDir string
}

func NewFileRuleLoader(baseDir string) interfaces.RulePackLoader {
	return &FileRuleLoader{BaseDir: baseDir}
}

// Load lê <BaseDir>/<version>_invoice_guards.json.
func (l *FileRuleLoader) Load(ctx context.Context, version string) (*domain.RulePackDefinition, error) {
	path := filepath.Join(l.BaseDir, fmt.Sprintf("%s_invoice_guards.json", version))

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRulePackNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var def domain.RulePackDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule definition %s: %w", path, err)
	}
	if def.Version == "" {
		def.Version = version
	}

	return &def, nil
}
