package aml_test

import (
	"testing"

	"github.com/gopher-aml/machine/aml/amltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatenateIntegerProducesBuffer(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	body := amltest.New().
		Raw(amltest.Concat(amltest.New().ByteConst(1).Bytes(), amltest.New().ByteConst(2).Bytes(), []byte{0x60})...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	data := mustBuffer(t, result)
	require.Len(t, data, 16) // revision 2: two 8-byte little-endian integers
	assert.Equal(t, byte(1), data[0])
	assert.Equal(t, byte(2), data[8])
}

func TestConcatenateStringAndBufferRejected(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	bufOperand := amltest.Buffer(amltest.New().ByteConst(1).Bytes(), []byte{0xAA})
	body := amltest.New().
		Raw(amltest.Concat(amltest.New().StringConst("x").Bytes(), bufOperand, []byte{0x60})...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	_, err = ev.Evaluate(ns.Root(), node.Object(), nil)
	assert.Error(t, err)
}

func TestMidClipsToSourceLength(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	body := amltest.New().
		Raw(0x9E). // MidOp
		Raw(amltest.New().StringConst("hello").Bytes()...).
		Raw(amltest.New().ByteConst(2).Bytes()...).
		Raw(amltest.New().ByteConst(100).Bytes()...). // clipped to end of string
		Raw([]byte{0x60}...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, "llo", mustString(t, result))
}

func TestToHexStringRendersInteger(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	body := amltest.New().
		Raw(0x98). // ToHexStringOp
		Raw(amltest.New().DWordConst(255).Bytes()...).
		Raw([]byte{0x60}...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, "0xFF", mustString(t, result))
}

func TestCreateFieldFamilyReadsBackingBuffer(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	init := []byte{0x11, 0x22, 0x33, 0x44}
	bufOperand := amltest.Buffer(amltest.New().ByteConst(4).Bytes(), init)
	body := amltest.New().
		Raw(amltest.CreateByteField(bufOperand, amltest.New().ByteConst(1).Bytes(), "BYF1")...).
		Raw(amltest.Return(amltest.Name("BYF1"))...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x22), mustInteger(t, result))
}

func TestAcquireMutexInvertedBoolean(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	body := amltest.New().
		Raw(amltest.MutexDecl("MTX0", 0)...).
		Raw(amltest.Return(amltest.Acquire(amltest.Name("MTX0"), 0xFFFF))...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), mustInteger(t, result)) // success => False
}

func TestNotifyForwardsToHost(t *testing.T) {
	ev, rec, ns := newEvaluator(t, 2)
	body := amltest.Notify(amltest.Name("\\_SB"), amltest.New().ByteConst(0x80).Bytes())
	sbDev := amltest.Device("_SB", []byte{})
	_, err := ev.EvaluateBytes(ns.Root(), sbDev)
	require.NoError(t, err)
	_, err = ev.EvaluateBytes(ns.Root(), body)
	require.NoError(t, err)
	require.Len(t, rec.Notifies, 1)
	assert.Equal(t, uint64(0x80), rec.Notifies[0].Value)
}
