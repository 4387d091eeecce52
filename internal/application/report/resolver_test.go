package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/memory"
)

func TestCompanyResolver(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	acme := &entity.Company{Name: "Acme"}
	require.NoError(t, s.Companies().Create(ctx, acme))
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{Name: "Twin"}))
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{Name: "Twin"}))

	r := report.NewCompanyResolver(s.Companies())

	tests := []struct {
		name   string
		input  string
		wantID int64
		want   report.Resolution
	}{
		{"exacto", "Acme", acme.ID, report.Resolved},
		{"distinto en mayúsculas", "ACME", 0, report.NotFound},
		{"inexistente", "Initech", 0, report.NotFound},
		{"ambiguo", "Twin", 0, report.Ambiguous},
		{"vacío", "", 0, report.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, res, err := r.Resolve(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCompanyResolver_ResolveAll(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	acme := &entity.Company{Name: "Acme"}
	globex := &entity.Company{Name: "Globex"}
	require.NoError(t, s.Companies().Create(ctx, acme))
	require.NoError(t, s.Companies().Create(ctx, globex))
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{Name: "Twin"}))
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{Name: "Twin"}))

	ids, unresolved, err := report.NewCompanyResolver(s.Companies()).
		ResolveAll(ctx, []string{"Globex", "Acme", "", "Globex", "Twin", "Nope"})
	require.NoError(t, err)

	assert.Equal(t, []int64{globex.ID, acme.ID}, ids)
	assert.Equal(t, []report.UnresolvedName{
		{Name: "Twin", Reason: report.Ambiguous},
		{Name: "Nope", Reason: report.NotFound},
	}, unresolved)
	assert.Equal(t, "ambiguous", unresolved[0].Reason.String())
}
