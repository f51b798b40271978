package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	a := &fixedRule{name: "a"}
	b := &fixedRule{name: "b", result: true}

	reg, err := NewRegistry(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	all := reg.All()
	all[0] = nil
	assert.Same(t, a, reg.All()[0].(*fixedRule), "All devuelve copia")

	_, err = NewRegistry(a, nil)
	require.ErrorIs(t, err, ErrNilRule)
	_, err = NewRegistry(a, &fixedRule{name: "a"})
	require.ErrorIs(t, err, ErrDuplicateRule)
}

func TestRegistry_EvaluateOrder(t *testing.T) {
	a := &fixedRule{name: "a"}
	b := &fixedRule{name: "b", result: true}
	c := &fixedRule{name: "c", result: true}
	reg, err := NewRegistry(a, b, c)
	require.NoError(t, err)

	name, ok, err := reg.Evaluate(context.Background(), &RequestContext{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", name)
	assert.Zero(t, c.calls)

	var empty *Registry
	_, ok, err = empty.Evaluate(context.Background(), &RequestContext{})
	require.NoError(t, err)
	assert.False(t, ok)
}
