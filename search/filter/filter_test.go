package filter

import "testing"

type mapMetadata map[string]any

func (m mapMetadata) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func TestBuilderAndEval(t *testing.T) {
	expr, err := New().EQ("category", "blog").GT("views", 10).Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	ok, err := Eval(expr, mapMetadata{"category": "blog", "views": float64(20)})
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if !ok {
		t.Fatal("expected filter to match")
	}

	ok, err = Eval(expr, mapMetadata{"category": "blog", "views": float64(5)})
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if ok {
		t.Fatal("expected filter to reject low views")
	}
}

func TestBuilderOrNot(t *testing.T) {
	a := New().EQ("category", "blog")
	b := New().EQ("category", "news")
	combined := a.Or(b)
	expr, err := combined.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, _ := Eval(expr, mapMetadata{"category": "news"})
	if !ok {
		t.Fatal("expected OR to match second branch")
	}

	negated := New().EQ("category", "blog").Not()
	nExpr, _ := negated.Build()
	ok, _ = Eval(nExpr, mapMetadata{"category": "news"})
	if !ok {
		t.Fatal("expected NOT to invert the match")
	}
}

func TestInOperator(t *testing.T) {
	expr, err := New().In("tag", "a", "b", "c").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, _ := Eval(expr, mapMetadata{"tag": "b"})
	if !ok {
		t.Fatal("expected IN to match member value")
	}
	ok, _ = Eval(expr, mapMetadata{"tag": "z"})
	if ok {
		t.Fatal("expected IN to reject non-member value")
	}
}
