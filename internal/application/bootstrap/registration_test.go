package bootstrap_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

func TestRegistrationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("sin usuarios permite el alta", func(t *testing.T) {
		f := newFixture()
		st, err := f.svc.RegistrationStatus(ctx)
		require.NoError(t, err)
		assert.True(t, st.Allowed)
		assert.False(t, st.Degraded)
	})

	t.Run("identidad en el proveedor cierra el alta", func(t *testing.T) {
		f := newFixture(u1)
		st, err := f.svc.RegistrationStatus(ctx)
		require.NoError(t, err)
		assert.False(t, st.Allowed)
		assert.True(t, st.ProviderIdentities)
	})

	t.Run("empleado local cierra el alta sin consultar al proveedor", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.store.Employees().Create(ctx, &entity.Employee{Email: "a@x.com"}))
		f.idp.FailWith(domain.ErrIdentityProvider)
		st, err := f.svc.RegistrationStatus(ctx)
		require.NoError(t, err)
		assert.False(t, st.Allowed)
		assert.True(t, st.LocalEmployees)
	})

	t.Run("proveedor caído permite el alta degradada", func(t *testing.T) {
		f := newFixture()
		f.idp.FailWith(fmt.Errorf("%w: 502", domain.ErrIdentityProvider))
		st, err := f.svc.RegistrationStatus(ctx)
		require.NoError(t, err)
		assert.True(t, st.Allowed)
		assert.True(t, st.Degraded)
	})
}
