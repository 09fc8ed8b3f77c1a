package aml_test

import (
	"testing"

	"github.com/gopher-aml/machine/aml"
	"github.com/gopher-aml/machine/aml/amltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMethodArgRefcountBalancedAfterReturn exercises the spec's refcount
// -to-zero invariant: a caller-owned argument object outlives the call with
// exactly the refcount it had going in, once the frame tears down.
func TestMethodArgRefcountBalancedAfterReturn(t *testing.T) {
	ev, rec, ns := newEvaluator(t, 2)
	body := amltest.New().Raw(amltest.Return(amltest.New().Arg(0).Bytes())...).Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("ECHO", 1, 0, body))
	require.NoError(t, err)

	node := ns.Find(nil, "ECHO")
	arg := aml.NewInteger(123)
	require.EqualValues(t, 1, arg.RefCount())

	result, err := ev.Evaluate(ns.Root(), node.Object(), []*aml.Object{arg})
	require.NoError(t, err)
	assert.Equal(t, uint64(123), mustInteger(t, result))
	assert.EqualValues(t, 1, arg.RefCount(), "frame teardown must release its own reference, leaving the caller's untouched")

	result.Release(rec)
	arg.Release(rec)
}

// TestBufferFieldWriteBackUpdatesBackingBuffer exercises CreateByteField's
// write path: a Store through the field must splice the backing Buffer in
// place.
func TestBufferFieldWriteBackUpdatesBackingBuffer(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	bufOperand := amltest.Buffer(amltest.New().ByteConst(4).Bytes(), []byte{0, 0, 0, 0})
	body := amltest.New().
		Raw(amltest.CreateByteField(bufOperand, amltest.New().ByteConst(2).Bytes(), "BYF2")...).
		Raw(amltest.Store(amltest.New().ByteConst(0x5A).Bytes(), amltest.Name("BYF2"))...).
		Raw(amltest.Return(amltest.Name("BYF2"))...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5A), mustInteger(t, result))
}
