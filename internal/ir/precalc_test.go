package ir

import "testing"

func TestTryPrecalculateFoldsLiteralAdd(t *testing.T) {
	add, ok := LookupOpCode("add")
	if !ok {
		t.Fatal("add opcode not registered")
	}
	dest := LocalValue(NewLocal("result", Int32))
	ins := NewOperation(add, dest, LiteralValue(IntLiteral(2), Int32), LiteralValue(IntLiteral(3), Int32))

	folded, ok := TryPrecalculate(ins)
	if !ok {
		t.Fatal("expected fold to succeed")
	}
	if folded.Kind != KindMove {
		t.Fatalf("expected a move, got %s", folded.Kind)
	}
	if got := folded.Args[0].Literal.Int(); got != 5 {
		t.Errorf("expected folded value 5, got %d", got)
	}
}

func TestTryPrecalculateRejectsNonConstantArg(t *testing.T) {
	add, _ := LookupOpCode("add")
	dest := LocalValue(NewLocal("result", Int32))
	local := LocalValue(NewLocal("x", Int32))
	ins := NewOperation(add, dest, local, LiteralValue(IntLiteral(3), Int32))

	if _, ok := TryPrecalculate(ins); ok {
		t.Fatal("expected fold to fail when an argument is not a compile-time constant")
	}
}

func TestTryPrecalculateFoldsContainerLaneByLane(t *testing.T) {
	add, _ := LookupOpCode("add")
	vecType := VectorOf(Int32, 2)
	dest := LocalValue(NewLocal("result", vecType))
	container := ContainerValue([]Value{
		LiteralValue(IntLiteral(1), Int32),
		LiteralValue(IntLiteral(2), Int32),
	}, vecType)
	ins := NewOperation(add, dest, container, LiteralValue(IntLiteral(10), Int32))

	folded, ok := TryPrecalculate(ins)
	if !ok {
		t.Fatal("expected fold to succeed")
	}
	result := folded.Args[0]
	if !result.IsContainer() || len(result.Elements) != 2 {
		t.Fatalf("expected a 2-lane container, got %s", result)
	}
	if result.Elements[0].Literal.Int() != 11 || result.Elements[1].Literal.Int() != 12 {
		t.Errorf("unexpected folded lanes: %s", result)
	}
}
