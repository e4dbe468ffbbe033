package typesystem

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		lexeme string
		want   Type
	}{
		{"int", Int},
		{"float", Float},
		{"bool", Bool},
		{"string", String},
		{"char", Char},
		{"auto", Auto},
		{"float[]", ArrayOf(Float)},
		{"auto[]", ArrayOf(Auto)},
		{"Point", TStruct{Name: "Point"}},
		{"Point[]", ArrayOf(TStruct{Name: "Point"})},
	}
	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			got, err := Parse(tt.lexeme)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.lexeme, got, tt.want)
			}
			if got.String() != tt.lexeme {
				t.Errorf("String() = %q, want %q", got.String(), tt.lexeme)
			}
		})
	}

	for _, bad := range []string{"", "int[][]", "1x", "a-b"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		declared, actual Type
		want             bool
	}{
		{Int, Int, true},
		{Float, Int, true},
		{Int, Float, false},
		{String, Char, false},
		{TStruct{Name: "P"}, TStruct{Name: "P"}, true},
		{TStruct{Name: "P"}, TStruct{Name: "Q"}, false},
		{TArray{Elem: Int, Size: 3}, TArray{Elem: Int, Size: 5}, true},
		{ArrayOf(Float), ArrayOf(Int), false},
		{ArrayOf(Int), Int, false},
	}
	for _, tt := range tests {
		if got := IsCompatible(tt.declared, tt.actual); got != tt.want {
			t.Errorf("IsCompatible(%s, %s) = %v, want %v", tt.declared, tt.actual, got, tt.want)
		}
	}
}

func TestContainsAuto(t *testing.T) {
	if !ContainsAuto(Auto) || !ContainsAuto(ArrayOf(Auto)) {
		t.Error("auto and auto[] contain auto")
	}
	if ContainsAuto(Int) || ContainsAuto(ArrayOf(Int)) || ContainsAuto(TStruct{Name: "auto2"}) {
		t.Error("resolved types do not contain auto")
	}
}

func TestPrimitiveName(t *testing.T) {
	if PrimitiveName(Char) != "char" {
		t.Errorf("got %q", PrimitiveName(Char))
	}
	if PrimitiveName(ArrayOf(Char)) != "" {
		t.Errorf("arrays are not primitives")
	}
}
