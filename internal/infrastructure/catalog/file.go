package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/utils"
)

// FileSource reads curated projects from a JSON array file.
type FileSource struct {
	path   string
	logger port.Logger
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, l port.Logger) *FileSource {
	return &FileSource{path: path, logger: l}
}

// FetchProjects returns the projects in the file. A missing file yields none.
func (s *FileSource) FetchProjects(_ context.Context) ([]entity.Project, error) {
	projects, err := utils.LoadJSONFile[[]entity.Project](s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Curated projects file not found", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load projects file %s: %w", s.path, err)
	}

	valid := projects[:0]
	for _, p := range projects {
		if p.ID == "" || p.Symbol == "" {
			s.logger.Warn("Skipping project without id or symbol", "path", s.path, "id", p.ID)
			continue
		}
		valid = append(valid, p)
	}
	s.logger.Info("Curated projects loaded", "path", s.path, "count", len(valid))
	return valid, nil
}
