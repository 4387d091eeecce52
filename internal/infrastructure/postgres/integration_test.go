package postgres_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/postgres"
	"github.com/jhoicas/timetracker-api/pkg/config"
)

// openDB aplica migraciones y deja las tablas vacías. Requiere TEST_DATABASE_URL.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	m, err := postgres.NewMigrator(dsn)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE report_companies, reports, companies, employees, bootstrap_locks RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestEmployeeRepository(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	repo := postgres.NewEmployeeRepository(pool)

	e := &entity.Employee{ExternalID: "user_1", Name: "Ana", Email: "ana@example.com", Status: entity.EmployeeActive}
	require.NoError(t, repo.Create(ctx, e))
	assert.NotZero(t, e.ID)

	err := repo.Create(ctx, &entity.Employee{ExternalID: "user_1", Email: "otra@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Varias filas sin vincular conviven.
	require.NoError(t, repo.Create(ctx, &entity.Employee{Email: "a@example.com"}))
	require.NoError(t, repo.Create(ctx, &entity.Employee{Email: "b@example.com"}))

	got, err := repo.GetByExternalID(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana", got.Name)

	missing, err := repo.GetByExternalID(ctx, "user_x")
	require.NoError(t, err)
	assert.Nil(t, missing)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEmployeeRepository_UpdateDelete(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	employees := postgres.NewEmployeeRepository(pool)
	companies := postgres.NewCompanyRepository(pool)
	reports := postgres.NewReportRepository(pool)

	e := &entity.Employee{ExternalID: "user_1", Name: "Ana", Email: "ana@example.com", Status: entity.EmployeeActive,
		JoinDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, employees.Create(ctx, e))

	e.Department = "Media"
	e.ExternalID = ""
	require.NoError(t, employees.Update(ctx, e))
	assert.Equal(t, "user_1", e.ExternalID)
	got, err := employees.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Media", got.Department)

	err = employees.Update(ctx, &entity.Employee{ID: 999999, Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c := &entity.Company{Name: "Acme"}
	require.NoError(t, companies.Create(ctx, c))
	c.Projects = 2
	require.NoError(t, companies.Update(ctx, c))
	gotC, err := companies.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gotC.Projects)
	assert.ErrorIs(t, companies.Update(ctx, &entity.Company{ID: 999999, Name: "X"}), domain.ErrNotFound)

	r := &entity.Report{EmployeeID: e.ID, Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, reports.Create(ctx, r))
	require.NoError(t, reports.AddLinks(ctx, r.ID, []int64{c.ID}))

	deleted, err := employees.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	gone, err := reports.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	links, err := reports.Links(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)

	deleted, err = employees.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReportEngine_Postgres(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	employees := postgres.NewEmployeeRepository(pool)
	companies := postgres.NewCompanyRepository(pool)
	reports := postgres.NewReportRepository(pool)
	engine := report.NewEngine(postgres.NewTxRunner(pool), reports)

	emp := &entity.Employee{ExternalID: "user_1", Email: "ana@example.com"}
	require.NoError(t, employees.Create(ctx, emp))
	actor := entity.Actor{IdentityID: "user_1", EmployeeID: emp.ID, Role: entity.RoleMember}

	var ids []int64
	for _, name := range []string{"A", "B", "C"} {
		c := &entity.Company{Name: name}
		require.NoError(t, companies.Create(ctx, c))
		ids = append(ids, c.ID)
	}

	r, err := engine.Create(ctx, actor, report.CreateInput{
		Date:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Hours:      decimal.RequireFromString("7.25"),
		CompanyIDs: []int64{ids[0], ids[1], ids[0]},
	})
	require.NoError(t, err)

	got, err := engine.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[1]}, got.CompanyIDs)
	assert.True(t, decimal.RequireFromString("7.25").Equal(got.Hours))

	// Empresa inexistente: rollback completo.
	bad := []int64{ids[2], 999999}
	_, err = engine.Update(ctx, actor, r.ID, report.UpdateInput{CompanyIDs: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	got, err = engine.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[1]}, got.CompanyIDs)

	// Lector concurrente durante reemplazos: ve un conjunto completo (el inicial, vacío o los tres).
	var stop atomic.Bool
	var partial atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			cur, err := reports.CompanyIDs(ctx, r.ID)
			if err == nil && len(cur) != 0 && len(cur) != 3 && len(cur) != 2 {
				partial.Add(1)
			}
		}
	}()
	for i := 0; i < 50; i++ {
		next := []int64{}
		if i%2 == 1 {
			next = ids
		}
		_, err := engine.Update(ctx, actor, r.ID, report.UpdateInput{CompanyIDs: &next})
		require.NoError(t, err)
	}
	stop.Store(true)
	wg.Wait()
	assert.Zero(t, partial.Load())

	// Borrar una empresa elimina sus vínculos (FK en cascada).
	deleted, err := companies.Delete(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, deleted)
	links, err := reports.Links(ctx)
	require.NoError(t, err)
	for _, l := range links {
		assert.NotEqual(t, ids[1], l.CompanyID)
	}

	_, err = engine.Delete(ctx, actor, r.ID)
	require.NoError(t, err)
	links, err = reports.Links(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestLeaseLock_Postgres(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	a := postgres.NewLeaseLock(pool, "bootstrap", 300*time.Millisecond)
	b := postgres.NewLeaseLock(pool, "bootstrap", 300*time.Millisecond)

	tok, ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "lease vigente")

	// Sin Release: el lease expira y otro lo toma.
	assert.Eventually(t, func() bool {
		_, ok, err := b.Acquire(ctx)
		return err == nil && ok
	}, 3*time.Second, 50*time.Millisecond)

	// El token viejo ya no libera el lease ajeno.
	require.NoError(t, a.Release(ctx, tok))
	_, ok, err = a.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
