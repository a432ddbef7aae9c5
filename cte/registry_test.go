package cte_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/nodes"
)

func TestZeroRegistryIsEmpty(t *testing.T) {
	t.Parallel()
	var r cte.Registry
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Recursive())
	assert.Empty(t, r.Names())
	assert.Equal(t, "base", compile(r))
}

func TestAttachAppendsInOrder(t *testing.T) {
	t.Parallel()
	r := mustAttach(cte.Registry{}, "a", raw("q1"))
	r = mustAttach(r, "b", raw("q2"))
	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, "WITH a(q1), b(q2) base", compile(r))
}

func TestAttachDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()
	base := mustAttach(cte.Registry{}, "a", raw("q1"))
	left := mustAttach(base, "b", raw("q2"))
	right := mustAttach(base, "c", raw("q3"))

	assert.Equal(t, []string{"a"}, base.Names())
	assert.Equal(t, []string{"a", "b"}, left.Names())
	assert.Equal(t, []string{"a", "c"}, right.Names())
}

func TestAttachSameNameKeepsFirstPositionAndLastBody(t *testing.T) {
	t.Parallel()
	r := mustAttach(cte.Registry{}, "a", raw("q1"))
	r = mustAttach(r, "b", raw("q2"))
	r = mustAttach(r, "a", raw("q3"))
	assert.Equal(t, "WITH a(q3), b(q2) base", compile(r))
}

func TestAttachAllMatchesChainedAttach(t *testing.T) {
	t.Parallel()
	chained := mustAttach(mustAttach(cte.Registry{}, "u1", raw("q1")), "u2", raw("q2"))
	single, err := cte.Registry{}.AttachAll(cte.Define("u1", raw("q1")), cte.Define("u2", raw("q2")))
	require.NoError(t, err)
	assert.Equal(t, compile(chained), compile(single))
}

func TestAttachAllIsAllOrNothing(t *testing.T) {
	t.Parallel()
	r := mustAttach(cte.Registry{}, "a", raw("q1"))
	got, err := r.AttachAll(cte.Define("b", raw("q2")), cte.Define("1bad", raw("q3")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cte.ErrInvalidIdentifier))
	assert.Equal(t, []string{"a"}, got.Names())
}

func TestAttachRejectsInvalidName(t *testing.T) {
	t.Parallel()
	_, err := cte.Registry{}.Attach("bad name", raw("q"))
	var ierr *cte.InvalidIdentifierError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "bad name", ierr.Name)
}

func TestAttachRejectsNilBody(t *testing.T) {
	t.Parallel()
	_, err := cte.Registry{}.Attach("a", nil)
	require.ErrorIs(t, err, cte.ErrNilBody)
}

func TestMarkRecursive(t *testing.T) {
	t.Parallel()
	r := mustAttach(cte.Registry{}, "u1", raw("q1"))
	rec := r.MarkRecursive()
	assert.False(t, r.Recursive())
	assert.True(t, rec.Recursive())
	assert.Equal(t, "WITH RECURSIVE u1(q1) base", compile(rec))
}

func TestMarkRecursiveBeforeAttach(t *testing.T) {
	t.Parallel()
	r := mustAttach(cte.Registry{}.MarkRecursive(), "u1", raw("q1"))
	assert.Equal(t, "WITH RECURSIVE u1(q1) base", compile(r))
}

func TestMergeOrdersReceiverFirst(t *testing.T) {
	t.Parallel()
	left := mustAttach(mustAttach(cte.Registry{}, "a", raw("l1")), "b", raw("l2"))
	right := mustAttach(mustAttach(cte.Registry{}, "c", raw("r1")), "a", raw("r2"))

	merged := left.Merge(right)
	assert.Equal(t, "WITH a(r2), b(l2), c(r1) base", compile(merged))
	assert.Equal(t, []string{"a", "b"}, left.Names(), "receiver must be unchanged")
	assert.Equal(t, []string{"c", "a"}, right.Names(), "argument must be unchanged")
}

func TestMergeRecursiveIsOr(t *testing.T) {
	t.Parallel()
	plain := mustAttach(cte.Registry{}, "a", raw("q1"))
	rec := mustAttach(cte.Registry{}, "b", raw("q2")).MarkRecursive()
	assert.True(t, plain.Merge(rec).Recursive())
	assert.True(t, rec.Merge(plain).Recursive())
	assert.False(t, plain.Merge(plain).Recursive())
}

func TestMergeWithSelf(t *testing.T) {
	t.Parallel()
	r := mustAttach(mustAttach(cte.Registry{}, "a", raw("q1")), "b", raw("q2"))
	assert.Equal(t, compile(r), compile(r.Merge(r)))
}

func TestLookupAndDefinitions(t *testing.T) {
	t.Parallel()
	body := raw("q1")
	r := mustAttach(cte.Registry{}, "a", body)

	d, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Same(t, body, d.Body)
	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	defs := r.Definitions()
	defs[0].Name = "changed"
	assert.Equal(t, []string{"a"}, r.Names(), "Definitions must return a copy")
}

func TestTransformReplacesBodies(t *testing.T) {
	t.Parallel()
	r := mustAttach(mustAttach(cte.Registry{}, "a", raw("q1")), "b", raw("q2")).MarkRecursive()
	out, err := r.Transform(func(d cte.Definition) (nodes.Node, error) {
		return raw(d.Name + "!"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "WITH RECURSIVE a(a!), b(b!) base", compile(out))
	assert.Equal(t, "WITH RECURSIVE a(q1), b(q2) base", compile(r))
}

func TestTransformPropagatesErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	r := mustAttach(cte.Registry{}, "a", raw("q1"))

	_, err := r.Transform(func(cte.Definition) (nodes.Node, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, err = r.Transform(func(cte.Definition) (nodes.Node, error) { return nil, nil })
	assert.ErrorIs(t, err, cte.ErrNilBody)
}
