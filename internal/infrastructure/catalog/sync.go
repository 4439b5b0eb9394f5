package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// Merge folds later project lists into earlier ones by id. Non-empty scalar
// fields of a later project win, contracts and protocols merge per chain.
func Merge(lists ...[]entity.Project) []entity.Project {
	byID := map[string]entity.Project{}
	for _, list := range lists {
		for _, p := range list {
			cur, ok := byID[p.ID]
			if !ok {
				byID[p.ID] = clone(p)
				continue
			}
			byID[p.ID] = mergeInto(cur, p)
		}
	}
	out := make([]entity.Project, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clone(p entity.Project) entity.Project {
	out := p
	out.Contracts = make(map[string]entity.ContractEntry, len(p.Contracts))
	for k, v := range p.Contracts {
		out.Contracts[k] = v
	}
	if p.Protocols != nil {
		out.Protocols = make(map[string]map[string]entity.ContractEntry, len(p.Protocols))
		for proto, chains := range p.Protocols {
			out.Protocols[proto] = make(map[string]entity.ContractEntry, len(chains))
			for k, v := range chains {
				out.Protocols[proto][k] = v
			}
		}
	}
	return out
}

func mergeInto(dst, src entity.Project) entity.Project {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Symbol != "" {
		dst.Symbol = src.Symbol
	}
	if src.Decimal != 0 {
		dst.Decimal = src.Decimal
	}
	for chain, c := range src.Contracts {
		dst.Contracts[chain] = c
	}
	for proto, chains := range src.Protocols {
		if dst.Protocols == nil {
			dst.Protocols = map[string]map[string]entity.ContractEntry{}
		}
		if dst.Protocols[proto] == nil {
			dst.Protocols[proto] = map[string]entity.ContractEntry{}
		}
		for chain, c := range chains {
			dst.Protocols[proto][chain] = c
		}
	}
	return dst
}

// Sync fetches every source in order, merges the results and upserts them.
// When onlyIfEmpty is set and the repository already has projects, nothing is fetched.
func Sync(ctx context.Context, repo port.ProjectRepository, l port.Logger, onlyIfEmpty bool, sources ...port.ProjectSource) (int, error) {
	if onlyIfEmpty {
		existing, err := repo.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list projects: %w", err)
		}
		if len(existing) > 0 {
			l.Debug("Project catalog already seeded", "count", len(existing))
			return 0, nil
		}
	}

	lists := make([][]entity.Project, 0, len(sources))
	for _, src := range sources {
		projects, err := src.FetchProjects(ctx)
		if err != nil {
			l.Warn("Project source failed", "error", err)
			continue
		}
		lists = append(lists, projects)
	}

	merged := Merge(lists...)
	for _, p := range merged {
		if err := repo.Upsert(ctx, p); err != nil {
			return 0, fmt.Errorf("failed to upsert project %s: %w", p.ID, err)
		}
	}
	l.Info("Project catalog synced", "count", len(merged))
	return len(merged), nil
}
