package port

import (
	"context"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// ProjectRepository reads and seeds the token catalog.
type ProjectRepository interface {
	List(ctx context.Context) ([]entity.Project, error)
	Get(ctx context.Context, id string) (entity.Project, error)
	Upsert(ctx context.Context, project entity.Project) error
}

// ProjectSource fetches project metadata from outside the store.
type ProjectSource interface {
	FetchProjects(ctx context.Context) ([]entity.Project, error)
}
