package repository

import (
	"context"
	"fmt"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

const projectPageSize = 100

type projectRepository struct {
	store port.DocumentStore
}

// NewProjectRepository reads the token catalog collection.
func NewProjectRepository(store port.DocumentStore) port.ProjectRepository {
	return &projectRepository{store: store}
}

// List pages through the catalog.
func (r *projectRepository) List(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	for skip := 0; ; skip += projectPageSize {
		docs, err := r.store.Find(ctx, projectsCollection, nil, port.FindOptions{Skip: skip, Limit: projectPageSize})
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			p, err := fromDocument[entity.Project](d)
			if err != nil {
				return nil, err
			}
			projects = append(projects, p)
		}
		if len(docs) < projectPageSize {
			return projects, nil
		}
	}
}

func (r *projectRepository) Get(ctx context.Context, id string) (entity.Project, error) {
	docs, err := r.store.Find(ctx, projectsCollection, map[string]any{"id": id}, port.FindOptions{Limit: 1})
	if err != nil {
		return entity.Project{}, err
	}
	if len(docs) == 0 {
		return entity.Project{}, fmt.Errorf("%w: %s", entity.ErrProjectNotFound, id)
	}
	return fromDocument[entity.Project](docs[0])
}

func (r *projectRepository) Upsert(ctx context.Context, project entity.Project) error {
	doc, err := toDocument(project)
	if err != nil {
		return err
	}
	return r.store.Insert(ctx, projectsCollection, doc)
}
