package typerr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	if got := KindNotImplemented.String(); got != "NOT_IMPLEMENTED" {
		t.Errorf("Expected NOT_IMPLEMENTED, got %s", got)
	}
	if got := KindMalformedInput.String(); got != "MALFORMED_INPUT" {
		t.Errorf("Expected MALFORMED_INPUT, got %s", got)
	}
	if got := KindStreamExhausted.String(); got != "STREAM_EXHAUSTED" {
		t.Errorf("Expected STREAM_EXHAUSTED, got %s", got)
	}
}

func TestConstructorsSetKind(t *testing.T) {
	if !IsNotImplemented(NotImplementedf("no size")) {
		t.Error("Expected NotImplementedf to produce a NotImplemented error")
	}
	if !IsMalformed(Malformedf("bad byte %q", 'x')) {
		t.Error("Expected Malformedf to produce a MalformedInput error")
	}
	if !IsExhausted(Exhaustedf("stream ended")) {
		t.Error("Expected Exhaustedf to produce a StreamExhausted error")
	}
}

func TestPredicatesRejectOtherKinds(t *testing.T) {
	err := Malformedf("nope")
	if IsNotImplemented(err) {
		t.Error("Malformed error misclassified as NotImplemented")
	}
	if IsExhausted(err) {
		t.Error("Malformed error misclassified as Exhausted")
	}
	if IsMalformed(errors.New("plain")) {
		t.Error("Plain error misclassified as Malformed")
	}
	if IsMalformed(nil) {
		t.Error("nil misclassified as Malformed")
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("column 3: %w", Exhaustedf("short read"))
	if !IsExhausted(err) {
		t.Error("Expected wrapped Exhausted error to be detected")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(KindMalformedInput, cause, "decoding row %d", 4)

	if !errors.Is(err, cause) {
		t.Error("Expected Wrap to keep the cause in the chain")
	}
	if !strings.Contains(err.Error(), "decoding row 4") {
		t.Errorf("Expected message in %q", err.Error())
	}
	if !strings.Contains(err.Error(), "disk gone") {
		t.Errorf("Expected cause in %q", err.Error())
	}
}

func TestFromIO(t *testing.T) {
	if FromIO(nil, "x") != nil {
		t.Error("Expected nil for nil input")
	}
	if !IsExhausted(FromIO(io.EOF, "header")) {
		t.Error("Expected EOF to map to StreamExhausted")
	}
	if !IsExhausted(FromIO(io.ErrUnexpectedEOF, "body")) {
		t.Error("Expected ErrUnexpectedEOF to map to StreamExhausted")
	}

	other := errors.New("permission denied")
	if got := FromIO(other, "x"); got != other {
		t.Errorf("Expected non-EOF errors to pass through, got %v", got)
	}
}
