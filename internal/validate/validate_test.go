package validate

import (
	"math"
	"testing"
)

type settings struct {
	Brightness float64
}

func TestInvalidValue(t *testing.T) {
	var nilSettings *settings
	var nilFunc func()

	tests := []struct {
		name    string
		value   any
		kind    Kind
		wantErr bool
		wantMsg string
	}{
		{name: "string ok", value: "token", kind: String},
		{name: "empty string", value: "", kind: String, wantErr: true, wantMsg: "is empty"},
		{name: "int as string", value: 5, kind: String, wantErr: true, wantMsg: "must be a string, got int"},
		{name: "nil", value: nil, kind: String, wantErr: true, wantMsg: "is missing"},
		{name: "struct object", value: settings{}, kind: Object},
		{name: "pointer object", value: &settings{}, kind: Object},
		{name: "map object", value: map[string]any{"a": 1}, kind: Object},
		{name: "typed nil pointer", value: nilSettings, kind: Object, wantErr: true, wantMsg: "is missing"},
		{name: "string as object", value: "x", kind: Object, wantErr: true},
		{name: "func", value: func() {}, kind: Function},
		{name: "nil func", value: nilFunc, kind: Function, wantErr: true, wantMsg: "is missing"},
		{name: "int number", value: 3, kind: Number},
		{name: "float number", value: 0.5, kind: Number},
		{name: "uint8 number", value: uint8(1), kind: Number},
		{name: "NaN", value: math.NaN(), kind: Number, wantErr: true, wantMsg: "is not a number (NaN)"},
		{name: "positive infinity", value: math.Inf(1), kind: Number, wantErr: true, wantMsg: "is not finite"},
		{name: "negative infinity", value: float32(math.Inf(-1)), kind: Number, wantErr: true, wantMsg: "is not finite"},
		{name: "string as number", value: "1", kind: Number, wantErr: true},
		{name: "bool", value: false, kind: Boolean},
		{name: "int as bool", value: 0, kind: Boolean, wantErr: true},
		{name: "slice", value: []string{"a"}, kind: Array},
		{name: "array", value: [2]int{1, 2}, kind: Array},
		{name: "map as array", value: map[string]int{}, kind: Array, wantErr: true},
		{name: "unknown kind", value: "x", kind: Kind(42), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InvalidValue(tt.value, tt.kind)
			if tt.wantErr && got == "" {
				t.Fatalf("InvalidValue(%v, %s) = \"\", want a description", tt.value, tt.kind)
			}
			if !tt.wantErr && got != "" {
				t.Fatalf("InvalidValue(%v, %s) = %q, want \"\"", tt.value, tt.kind, got)
			}
			if tt.wantMsg != "" && got != tt.wantMsg {
				t.Errorf("InvalidValue(%v, %s) = %q, want %q", tt.value, tt.kind, got, tt.wantMsg)
			}
		})
	}
}

func TestIsValidCallback(t *testing.T) {
	var nilFunc func(error)

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"func", func(error) {}, true},
		{"nil", nil, false},
		{"typed nil func", nilFunc, false},
		{"string", "callback", false},
		{"struct", settings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCallback(tt.value); got != tt.want {
				t.Errorf("IsValidCallback(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if String.String() != "string" || Array.String() != "array" {
		t.Errorf("unexpected kind names: %s, %s", String, Array)
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("Kind(99).String() = %s", Kind(99).String())
	}
}
