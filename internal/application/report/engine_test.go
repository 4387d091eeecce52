package report_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/memory"
)

type fixture struct {
	store     *memory.Store
	engine    *report.Engine
	owner     entity.Actor
	other     entity.Actor
	admin     entity.Actor
	companies map[string]int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	f := &fixture{store: s, engine: report.NewEngine(s, s.Reports()), companies: map[string]int64{}}

	for i, id := range []string{"user_owner", "user_other", "user_admin"} {
		e := &entity.Employee{ExternalID: id, Email: id + "@example.com"}
		require.NoError(t, s.Employees().Create(ctx, e))
		actor := entity.Actor{IdentityID: id, EmployeeID: e.ID, Role: entity.RoleMember}
		switch i {
		case 0:
			f.owner = actor
		case 1:
			f.other = actor
		case 2:
			actor.Role = entity.RoleAdmin
			f.admin = actor
		}
	}
	for _, name := range []string{"A", "B", "C", "D"} {
		c := &entity.Company{Name: name}
		require.NoError(t, s.Companies().Create(ctx, c))
		f.companies[name] = c.ID
	}
	return f
}

func (f *fixture) ids(names ...string) []int64 {
	out := make([]int64, 0, len(names))
	for _, n := range names {
		out = append(out, f.companies[n])
	}
	return out
}

func (f *fixture) create(t *testing.T, companies ...string) *entity.Report {
	t.Helper()
	r, err := f.engine.Create(context.Background(), f.owner, report.CreateInput{
		Date:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Client:     "Cliente",
		Hours:      decimal.RequireFromString("7.5"),
		CompanyIDs: f.ids(companies...),
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) links(t *testing.T, reportID int64) []int64 {
	t.Helper()
	ids, err := f.store.Reports().CompanyIDs(context.Background(), reportID)
	require.NoError(t, err)
	return ids
}

// Todo vínculo apunta a un reporte y una empresa existentes.
func (f *fixture) assertNoDangling(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	links, err := f.store.Reports().Links(ctx)
	require.NoError(t, err)
	for _, l := range links {
		r, err := f.store.Reports().GetByID(ctx, l.ReportID)
		require.NoError(t, err)
		assert.NotNil(t, r, "vínculo a reporte inexistente %d", l.ReportID)
		c, err := f.store.Companies().GetByID(ctx, l.CompanyID)
		require.NoError(t, err)
		assert.NotNil(t, c, "vínculo a empresa inexistente %d", l.CompanyID)
	}
}

func TestCreate_ConEmpresasSinDuplicados(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B", "A")

	assert.NotZero(t, r.ID)
	assert.Equal(t, f.owner.EmployeeID, r.EmployeeID, "sin employee_id se usa el del actor")
	assert.ElementsMatch(t, f.ids("A", "B"), r.CompanyIDs)
	assert.ElementsMatch(t, f.ids("A", "B"), f.links(t, r.ID))
}

func TestCreate_SinEmpresas(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	assert.Empty(t, f.links(t, r.ID))
	assert.NotNil(t, r.CompanyIDs)
}

func TestCreate_EmpresaInexistenteNoEscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, f.owner, report.CreateInput{
		Date:       time.Now(),
		CompanyIDs: []int64{f.companies["A"], 9999},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := f.store.Reports().List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "el reporte no debe quedar creado")
	links, _ := f.store.Reports().Links(ctx)
	assert.Empty(t, links)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor entity.Actor
		in    report.CreateInput
		want  error
	}{
		{"sin fecha", f.owner, report.CreateInput{}, domain.ErrInvalidInput},
		{"horas negativas", f.owner, report.CreateInput{Date: time.Now(), Hours: decimal.NewFromInt(-1)}, domain.ErrInvalidInput},
		{"id de empresa no positivo", f.owner, report.CreateInput{Date: time.Now(), CompanyIDs: []int64{0}}, domain.ErrInvalidInput},
		{"para otro empleado", f.owner, report.CreateInput{EmployeeID: f.other.EmployeeID, Date: time.Now()}, domain.ErrForbidden},
		{"actor sin empleado", entity.Actor{IdentityID: "x"}, report.CreateInput{Date: time.Now()}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Create(ctx, tc.actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// El admin sí puede crear para otro empleado.
	r, err := f.engine.Create(ctx, f.admin, report.CreateInput{EmployeeID: f.other.EmployeeID, Date: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, f.other.EmployeeID, r.EmployeeID)
}

// Reemplazo {A,B} -> {C}.
func TestUpdate_ReemplazaVinculos(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B")

	ids := f.ids("C")
	out, err := f.engine.Update(context.Background(), f.owner, r.ID, report.UpdateInput{CompanyIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, f.ids("C"), out.CompanyIDs)
	assert.Equal(t, f.ids("C"), f.links(t, r.ID))
}

func TestUpdate_ListaVaciaQuitaTodo(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B", "C")

	empty := []int64{}
	_, err := f.engine.Update(context.Background(), f.owner, r.ID, report.UpdateInput{CompanyIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, f.links(t, r.ID))
}

func TestUpdate_SinEmpresasConservaVinculos(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B")

	market := "LATAM"
	hours := decimal.NewFromInt(3)
	out, err := f.engine.Update(context.Background(), f.owner, r.ID, report.UpdateInput{Market: &market, Hours: &hours})
	require.NoError(t, err)
	assert.Equal(t, "LATAM", out.Market)
	assert.Equal(t, "Cliente", out.Client, "los campos ausentes no cambian")
	assert.True(t, hours.Equal(out.Hours))
	assert.ElementsMatch(t, f.ids("A", "B"), out.CompanyIDs)
	assert.ElementsMatch(t, f.ids("A", "B"), f.links(t, r.ID))
}

func TestUpdate_EmpresaInexistenteNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B")

	market := "EU"
	ids := []int64{f.companies["C"], 4242}
	_, err := f.engine.Update(context.Background(), f.owner, r.ID, report.UpdateInput{Market: &market, CompanyIDs: &ids})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.engine.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Market)
	assert.ElementsMatch(t, f.ids("A", "B"), got.CompanyIDs)
}

func TestUpdate_NoEncontradoYAjeno(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A")
	ctx := context.Background()

	_, err := f.engine.Update(ctx, f.owner, 9999, report.UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.Update(ctx, f.other, r.ID, report.UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	comments := "revisado"
	_, err = f.engine.Update(ctx, f.admin, r.ID, report.UpdateInput{Comments: &comments})
	assert.NoError(t, err)
}

// Un lector concurrente solo ve el conjunto anterior completo o el nuevo completo.
func TestUpdate_LectorNuncaVeEstadoIntermedio(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B", "C")
	ctx := context.Background()

	var stop atomic.Bool
	var bad atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			ids, err := f.store.Reports().CompanyIDs(ctx, r.ID)
			if err != nil || (len(ids) != 3 && len(ids) != 0) {
				bad.Add(1)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		var ids []int64
		if i%2 == 0 {
			ids = []int64{}
		} else {
			ids = f.ids("A", "B", "C")
		}
		_, err := f.engine.Update(ctx, f.owner, r.ID, report.UpdateInput{CompanyIDs: &ids})
		require.NoError(t, err)
	}
	stop.Store(true)
	wg.Wait()

	assert.Zero(t, bad.Load(), "se observó un conjunto de vínculos parcial")
	assert.Len(t, f.links(t, r.ID), 3)
}

func TestDelete_CascadaVinculos(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, "A", "B")
	keep := f.create(t, "A")
	ctx := context.Background()

	deleted, err := f.engine.Delete(ctx, f.owner, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, deleted.ID)
	assert.ElementsMatch(t, f.ids("A", "B"), deleted.CompanyIDs)

	links, err := f.store.Reports().Links(ctx)
	require.NoError(t, err)
	for _, l := range links {
		assert.NotEqual(t, r.ID, l.ReportID)
	}
	assert.Equal(t, f.ids("A"), f.links(t, keep.ID))

	_, err = f.engine.Delete(ctx, f.owner, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "borrar dos veces es not found")

	_, err = f.engine.Delete(ctx, f.other, keep.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.assertNoDangling(t)
}

// Borrar una empresa vinculada elimina sus vínculos.
func TestBorrarEmpresa_SinVinculosColgantes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, "A", "B")

	deleted, err := f.store.Companies().Delete(ctx, f.companies["B"])
	require.NoError(t, err)
	require.True(t, deleted)

	got, err := f.engine.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ids("A"), got.CompanyIDs)
	f.assertNoDangling(t)
}

func TestListados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "A")
	f.create(t, "B", "C")
	_, err := f.engine.Create(ctx, f.other, report.CreateInput{Date: time.Now()})
	require.NoError(t, err)

	all, err := f.engine.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := f.engine.ListByEmployee(ctx, f.owner.EmployeeID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, r := range own {
		assert.NotEmpty(t, r.CompanyIDs)
	}

	_, err = f.engine.Get(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
