package errors

import (
	"context"
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "position out of range")
		if err.Error() != "[NOT_FOUND] position out of range" {
			t.Errorf("expected [NOT_FOUND] position out of range, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("disk error")
		err := Wrap(original, CodeInternal, "load parse tree")
		expected := "[INTERNAL_ERROR] load parse tree: disk error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeCyclicAlias, "alias cycle")
		if !IsCode(err, CodeCyclicAlias) {
			t.Error("expected IsCode to return true for CodeCyclicAlias")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("AddContextPromotesPlainErrors", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxModule, "Main")
		if !IsCode(err, CodeInternal) {
			t.Fatalf("expected CodeInternal, got %v", err)
		}
		var de *DomainError
		if !errors.As(err, &de) || de.Context[CtxModule] != "Main" {
			t.Errorf("expected module context, got %v", err)
		}
	})

	t.Run("Invariant", func(t *testing.T) {
		err := Invariant("Expression_access", "missing member node")
		if !IsCode(err, CodeInvariantViolation) {
			t.Fatalf("expected CodeInvariantViolation, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		err := Cancelled(context.Canceled, "get_symbol")
		if !IsCode(err, CodeCancelled) || !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected cancelled error %v", err)
		}
	})
}
