// Package aml_test exercises the evaluator end to end: bytecode hand
// -assembled with amltest.Builder, run through aml.Evaluator.EvaluateBytes
// against an amltest.Recorder host.
package aml_test

import (
	"testing"

	"github.com/gopher-aml/machine/aml"
	"github.com/gopher-aml/machine/aml/amltest"
)

func newEvaluator(t *testing.T, revision uint8) (*aml.Evaluator, *amltest.Recorder, *aml.Namespace) {
	t.Helper()
	rec := amltest.NewRecorder()
	ns := aml.NewNamespace()
	ev := aml.NewEvaluator(ns, rec, revision)
	return ev, rec, ns
}

func mustInteger(t *testing.T, o *aml.Object) uint64 {
	t.Helper()
	v, ok := o.Integer()
	if !ok {
		t.Fatalf("expected Integer, got %s", o.Kind)
	}
	return v
}

func mustString(t *testing.T, o *aml.Object) string {
	t.Helper()
	v, ok := o.StringBytes()
	if !ok {
		t.Fatalf("expected String, got %s", o.Kind)
	}
	return string(v)
}

func mustBuffer(t *testing.T, o *aml.Object) []byte {
	t.Helper()
	v, ok := o.BufferBytes()
	if !ok {
		t.Fatalf("expected Buffer, got %s", o.Kind)
	}
	return v
}
