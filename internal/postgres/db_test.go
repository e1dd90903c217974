package postgres

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/ariefcatur/go-grocery-store/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_DoesNotRequireDatabase(t *testing.T) {
	p, err := Open(context.Background(), config.DB{
		Host: "127.0.0.1", Port: 1, User: "nobody", Name: "nothing", MaxConns: 2,
	})
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.Pool())
	assert.NotNil(t, p.SQLX())

	err = p.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}
