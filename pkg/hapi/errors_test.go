package hapi_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/hapi/memengine"
)

func TestErrorKindMatching(t *testing.T) {
	nf := hapi.NotFound("attribute %q", "mask")
	if !errors.Is(nf, &hapi.Error{Kind: hapi.KindNotFound}) {
		t.Error("not-found error does not match its own kind")
	}
	// NotFound is a specialization of InvalidArgument.
	if !errors.Is(nf, &hapi.Error{Kind: hapi.KindInvalidArgument}) {
		t.Error("not-found error does not match invalid-argument")
	}
	if errors.Is(hapi.InvalidArgument("bad width"), &hapi.Error{Kind: hapi.KindNotFound}) {
		t.Error("invalid-argument matched not-found")
	}
	if !strings.Contains(nf.Error(), `"mask"`) {
		t.Errorf("message lost formatting: %q", nf.Error())
	}
}

func TestIsIgnorable(t *testing.T) {
	if !hapi.IsIgnorable(hapi.Ignorable("missing script attribute")) {
		t.Error("ignorable error not reported as ignorable")
	}
	if hapi.IsIgnorable(hapi.NewError("cook failed")) {
		t.Error("runtime error reported as ignorable")
	}
	if hapi.IsIgnorable(nil) {
		t.Error("nil reported as ignorable")
	}
}

func TestCheckResult(t *testing.T) {
	eng := memengine.New(nil)

	if err := hapi.CheckResult(eng, hapi.ResultSuccess, "GetParmInfo"); err != nil {
		t.Errorf("success mapped to error: %v", err)
	}
	if err := hapi.CheckResult(eng, hapi.ResultUserCancelled, "CookNode"); !errors.Is(err, hapi.ErrProgressCancelled) {
		t.Errorf("cancelled result = %v, want ErrProgressCancelled", err)
	}
	err := hapi.CheckResult(eng, hapi.ResultFailure, "CookNode")
	if err == nil {
		t.Fatal("failure mapped to nil")
	}
	if !strings.Contains(err.Error(), "CookNode") {
		t.Errorf("error does not name the failed call: %v", err)
	}
}
