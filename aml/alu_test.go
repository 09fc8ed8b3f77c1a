package aml_test

import (
	"testing"

	"github.com/gopher-aml/machine/aml/amltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalReturningByte(t *testing.T, code []byte) uint64 {
	t.Helper()
	ev, _, ns := newEvaluator(t, 2)
	result, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, code))
	require.NoError(t, err)
	assert.Nil(t, result) // declaring a method never produces a value
	node := ns.Find(nil, "CALC")
	require.NotNil(t, node)
	result, err = ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	return mustInteger(t, result)
}

func TestArithmeticAddSubtractMultiply(t *testing.T) {
	code := amltest.New().
		Raw(amltest.Add(amltest.New().ByteConst(3).Bytes(), amltest.New().ByteConst(4).Bytes(), []byte{0x60})...).
		Raw(amltest.Subtract(amltest.New().Local(0).Bytes(), amltest.New().ByteConst(2).Bytes(), []byte{0x61})...).
		Raw(amltest.Multiply(amltest.New().Local(1).Bytes(), amltest.New().ByteConst(10).Bytes(), []byte{0x61})...).
		Raw(amltest.Return(amltest.New().Local(1).Bytes())...).
		Bytes()

	assert.Equal(t, uint64((3+4-2)*10), evalReturningByte(t, code))
}

func TestLogicalComparators(t *testing.T) {
	pred := amltest.LEqual(amltest.New().ByteConst(5).Bytes(), amltest.New().ByteConst(5).Bytes())
	code := amltest.New().
		Raw(amltest.If(pred, amltest.Return(amltest.New().One().Bytes()))...).
		Raw(amltest.Return(amltest.New().Zero().Bytes())...).
		Bytes()

	assert.Equal(t, uint64(1), evalReturningByte(t, code))
}

func TestWhileLoopAccumulates(t *testing.T) {
	// Local0 = 0; While (Local0 < 5) { Increment(Local0) }; Return(Local0)
	pred := amltest.LLess(amltest.New().Local(0).Bytes(), amltest.New().ByteConst(5).Bytes())
	body := amltest.Increment([]byte{0x60})
	code := amltest.New().
		Raw(amltest.Store(amltest.New().Zero().Bytes(), []byte{0x60})...).
		Raw(amltest.While(pred, body)...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()

	assert.Equal(t, uint64(5), evalReturningByte(t, code))
}

func TestBreakExitsWhileEarly(t *testing.T) {
	// Local0 = 0; While (One) { If (LEqual(Local0, 3)) { Break }; Increment(Local0) }
	innerIf := amltest.If(amltest.LEqual(amltest.New().Local(0).Bytes(), amltest.New().ByteConst(3).Bytes()), amltest.Break())
	body := amltest.New().Raw(innerIf...).Raw(amltest.Increment([]byte{0x60})...).Bytes()
	code := amltest.New().
		Raw(amltest.Store(amltest.New().Zero().Bytes(), []byte{0x60})...).
		Raw(amltest.While(amltest.New().One().Bytes(), body)...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()

	assert.Equal(t, uint64(3), evalReturningByte(t, code))
}

func TestRevision1Truncates32Bit(t *testing.T) {
	ev, _, ns := newEvaluator(t, 1)
	body := amltest.New().
		Raw(amltest.Add(amltest.New().DWordConst(0xFFFFFFFF).Bytes(), amltest.New().One().Bytes(), []byte{0x60})...).
		Raw(amltest.Return(amltest.New().Local(0).Bytes())...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), mustInteger(t, result))
}
