package dedup_test

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/arcvalue/internal/dedup"
	"github.com/roach88/arcvalue/internal/value"
)

func ExampleSession_Canonicalize() {
	s := dedup.NewSession(dedup.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	out := s.Canonicalize(value.NewSeq(value.NewStr("x"), value.NewStr("x"))).(*value.Seq)
	refs, _ := s.Refs(value.NewStr("x"))

	fmt.Println(value.Same(out.At(0), out.At(1)), refs)
	// Output: true 2
}
