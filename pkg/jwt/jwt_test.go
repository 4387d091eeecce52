package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("secret", "user_1", "ana@example.com", "timetracker", 60)
	require.NoError(t, err)

	id, email, err := jwt.Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", id)
	assert.Equal(t, "ana@example.com", email)
}

func TestParse_Errores(t *testing.T) {
	token, err := jwt.Generate("secret", "user_1", "", "timetracker", 60)
	require.NoError(t, err)
	expired, err := jwt.Generate("secret", "user_1", "", "timetracker", -5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro", token)
	assert.Error(t, err, "firma incorrecta")

	_, _, err = jwt.Parse("secret", expired)
	assert.Error(t, err, "expirado")

	_, _, err = jwt.Parse("secret", "no.es.un.token")
	assert.Error(t, err)

	_, _, err = jwt.Parse("", token)
	assert.Error(t, err)
}

func TestGenerate_Validaciones(t *testing.T) {
	_, err := jwt.Generate("", "user_1", "", "", 60)
	assert.Error(t, err)
	_, err = jwt.Generate("secret", "", "", "", 60)
	assert.Error(t, err)
}
