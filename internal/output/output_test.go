package output

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)
	p.Printf("%d branch(es)\n", 2)
	p.Println("done")

	if got := buf.String(); got != "2 branch(es)\ndone\n" {
		t.Errorf("got %q", got)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithPrinter(context.Background(), &buf)

	FromContext(ctx).Print("hi")
	if buf.String() != "hi" {
		t.Errorf("got %q, want hi", buf.String())
	}

	// No printer attached: falls back to stdout
	if FromContext(context.Background()).Writer() != os.Stdout {
		t.Error("fallback printer should write to stdout")
	}
}
