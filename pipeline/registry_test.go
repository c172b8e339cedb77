package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStep struct {
	name string
	fn   func(ctx context.Context, pctx *Context) error
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context, pctx *Context) error {
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, pctx)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	step := &fakeStep{name: "canonicalize"}

	r.Register(step)

	assert.True(t, r.Has("canonicalize"))
	assert.False(t, r.Has("enrich"))
	assert.Equal(t, step, r.Get("canonicalize"))
	assert.Nil(t, r.Get("enrich"))
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeStep{name: "verify"})

	require.Panics(t, func() {
		r.Register(&fakeStep{name: "verify"})
	})
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeStep{name: "verify"})
	r.Register(&fakeStep{name: "canonicalize"})
	r.Register(&fakeStep{name: "enrich"})

	assert.Equal(t, []string{"canonicalize", "enrich", "verify"}, r.Names())
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeStep{name: "canonicalize"})
	r.Register(&fakeStep{name: "verify"})

	require.NoError(t, r.Validate("canonicalize", "verify"))
	require.NoError(t, r.Validate())

	err := r.Validate("canonicalize", "grammar", "senses")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grammar")
	assert.Contains(t, err.Error(), "senses")
	assert.Contains(t, err.Error(), "registered: canonicalize, verify")
}
