package value_test

import (
	"fmt"
	"slices"

	"github.com/roach88/arcvalue/internal/value"
)

func ExampleCompare() {
	vals := []value.Value{value.NewStr("b"), value.I32(2), value.NewStr("a"), value.I32(1)}
	slices.SortFunc(vals, value.Compare)
	fmt.Println(value.NewSeq(vals...))
	// Output: [1,2,a,b]
}

func ExampleDecode() {
	v := value.MapFromEntries(value.Entry{Key: value.NewStr("x"), Value: value.U64(3)})

	var p struct {
		X int `value:"x"`
	}
	err := value.Decode(v, &p)
	fmt.Println(p.X, err)
	// Output: 3 <nil>
}
