package report

import (
	"context"
	"fmt"

	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

// Resolution resultado de resolver un nombre de empresa a su id.
type Resolution int

const (
	Resolved Resolution = iota
	NotFound
	Ambiguous
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not_found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// UnresolvedName nombre que no se pudo convertir en asociación.
type UnresolvedName struct {
	Name   string
	Reason Resolution
}

// CompanyResolver traduce nombres escritos por personas a ids de empresa.
// Solo coincidencia exacta y sensible a mayúsculas; nombres vacíos se ignoran.
type CompanyResolver struct {
	companies repository.CompanyRepository
}

// NewCompanyResolver construye el resolver.
func NewCompanyResolver(companies repository.CompanyRepository) *CompanyResolver {
	return &CompanyResolver{companies: companies}
}

// Resolve devuelve el id solo cuando hay exactamente una empresa con ese nombre.
func (r *CompanyResolver) Resolve(ctx context.Context, name string) (int64, Resolution, error) {
	if name == "" {
		return 0, NotFound, nil
	}
	matches, err := r.companies.FindByName(ctx, name)
	if err != nil {
		return 0, NotFound, fmt.Errorf("resolver empresa %q: %w", name, err)
	}
	switch len(matches) {
	case 0:
		return 0, NotFound, nil
	case 1:
		return matches[0].ID, Resolved, nil
	default:
		return 0, Ambiguous, nil
	}
}

// ResolveAll resuelve una lista de nombres. Los ids salen sin duplicados y en orden de aparición;
// los nombres no resueltos se devuelven aparte para que el llamante los informe.
func (r *CompanyResolver) ResolveAll(ctx context.Context, names []string) ([]int64, []UnresolvedName, error) {
	ids := make([]int64, 0, len(names))
	var unresolved []UnresolvedName
	seen := make(map[int64]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		id, res, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if res != Resolved {
			unresolved = append(unresolved, UnresolvedName{Name: name, Reason: res})
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, unresolved, nil
}
