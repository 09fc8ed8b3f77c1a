package aml_test

import (
	"testing"

	"github.com/gopher-aml/machine/aml"
	"github.com/gopher-aml/machine/aml/amltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreIntoNamedInteger(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)

	b := amltest.New()
	b.Raw(amltest.NameDecl("FOOO", amltest.New().Zero().Bytes())...)
	b.Raw(amltest.Store(amltest.New().One().Bytes(), amltest.Name("FOOO"))...)

	_, err := ev.EvaluateBytes(ns.Root(), b.Bytes())
	require.NoError(t, err)

	node := ns.Find(nil, "FOOO")
	require.NotNil(t, node)
	assert.Equal(t, uint64(1), mustInteger(t, node.Object()))
}

func TestStoreImplicitStringFromInteger(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)

	b := amltest.New()
	b.Raw(amltest.NameDecl("STRV", amltest.New().StringConst("hi").Bytes())...)
	b.Raw(amltest.Store(amltest.New().DWordConst(0xAB).Bytes(), amltest.Name("STRV"))...)

	_, err := ev.EvaluateBytes(ns.Root(), b.Bytes())
	require.NoError(t, err)

	node := ns.Find(nil, "STRV")
	require.NotNil(t, node)
	assert.Equal(t, "0xAB", mustString(t, node.Object()))
}

func TestStoreIntoLocalPersistsAcrossMethodBody(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)

	body := amltest.New()
	body.Raw(amltest.Store(amltest.New().DWordConst(42).Bytes(), []byte{0x60})...) // Local0
	body.Raw(amltest.Return([]byte{0x60})...)
	mcode := amltest.Method("CALC", 0, 0, body.Bytes())

	_, err := ev.EvaluateBytes(ns.Root(), mcode)
	require.NoError(t, err)

	node := ns.Find(nil, "CALC")
	require.NotNil(t, node)
	result, err := ev.Evaluate(ns.Root(), node.Object(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), mustInteger(t, result))
}

func TestCopyObjectDoesNotFollowReference(t *testing.T) {
	ev, _, ns := newEvaluator(t, 2)

	b := amltest.New()
	b.Raw(amltest.NameDecl("TGT0", amltest.New().Zero().Bytes())...)
	b.Raw(amltest.NameDecl("TGT1", amltest.New().Zero().Bytes())...)
	b.Raw(amltest.Store(amltest.RefOf(amltest.Name("TGT0")), []byte{0x60})...) // Local0 = RefOf(TGT0)
	b.Raw(0x9D)                                                                // CopyObjectOp
	b.Raw(0x60)                                                                // source: Local0 (a Reference)
	b.Raw(amltest.Name("TGT1")...)                                             // dest: TGT1

	_, err := ev.EvaluateBytes(ns.Root(), b.Bytes())
	require.NoError(t, err)

	node := ns.Find(nil, "TGT1")
	require.NotNil(t, node)
	assert.Equal(t, aml.KindReference, node.Object().Kind)
}
