package aml_test

import (
	"testing"

	"github.com/gopher-aml/machine/aml/amltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefOfDerefOfRoundTrip(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	decl := amltest.NameDecl("VAL0", amltest.New().DWordConst(7).Bytes())
	body := amltest.New().
		Raw(decl...).
		Raw(amltest.Return(amltest.DerefOf(amltest.RefOf(amltest.Name("VAL0"))))...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), mustInteger(t, result))
}

func TestIndexIntoPackageProducesLiveReference(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	pkg := amltest.Package(2, append(amltest.New().ByteConst(10).Bytes(), amltest.New().ByteConst(20).Bytes()...))
	decl := amltest.NameDecl("PKG0", pkg)
	// Index(PKG0, One, Local0); Store(99, DerefOf(Local0)); Return(DerefOf(Index(PKG0, One)))
	body := amltest.New().
		Raw(decl...).
		Raw(amltest.Index(amltest.Name("PKG0"), amltest.New().One().Bytes(), []byte{0x60})...).
		Raw(amltest.Store(amltest.New().ByteConst(99).Bytes(), amltest.DerefOf([]byte{0x60}))...).
		Raw(amltest.Return(amltest.DerefOf(amltest.Index(amltest.Name("PKG0"), amltest.New().One().Bytes(), []byte{0x00})))...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), mustInteger(t, result))
}

func TestSizeOfAndObjectType(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	decl := amltest.NameDecl("STR0", amltest.New().StringConst("abcd").Bytes())
	body := amltest.New().
		Raw(decl...).
		Raw(amltest.Return(amltest.SizeOf(amltest.Name("STR0")))...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), mustInteger(t, result))

	body2 := amltest.New().
		Raw(decl...).
		Raw(amltest.Return(amltest.ObjectType(amltest.Name("STR0")))...).
		Bytes()
	_, err = ev.EvaluateBytes(ns.Root(), amltest.Method("KIND", 0, 0, body2))
	require.NoError(t, err)
	node2 := ns.Find(nil, "KIND")
	result2, err := ev.Evaluate(ns.Root(), node2.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), mustInteger(t, result2)) // String
}

func TestMatchFindsFirstSatisfyingElement(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)
	elems := append(amltest.New().ByteConst(1).Bytes(), amltest.New().ByteConst(5).Bytes()...)
	elems = append(elems, amltest.New().ByteConst(9).Bytes()...)
	pkg := amltest.Package(3, elems)
	decl := amltest.NameDecl("PKG0", pkg)

	// Match(PKG0, MEQ, 5, MTR, 0, 0) -> index 1
	matchExpr := append([]byte{0x89}, amltest.Name("PKG0")...)
	matchExpr = append(matchExpr, 1 /* MEQ */)
	matchExpr = append(matchExpr, amltest.New().ByteConst(5).Bytes()...)
	matchExpr = append(matchExpr, 0 /* MTR */)
	matchExpr = append(matchExpr, amltest.New().Zero().Bytes()...)
	matchExpr = append(matchExpr, amltest.New().Zero().Bytes()...)

	body := amltest.New().
		Raw(decl...).
		Raw(amltest.Return(matchExpr)...).
		Bytes()
	_, err := ev.EvaluateBytes(ns.Root(), amltest.Method("CALC", 0, 0, body))
	require.NoError(t, err)
	node := ns.Find(nil, "CALC")
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), mustInteger(t, result))
}
