package value

import "testing"

func TestToNativeBool(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"none is falsy", None(), false},
		{"zero int is falsy", Int(0), false},
		{"nonzero int is truthy", Int(1), true},
		{"zero float is falsy", Float(0), false},
		{"false bool is falsy", Bool(false), false},
		{"empty string is falsy", String(""), false},
		{"nonempty string is truthy", String("x"), true},
		{"command is always falsy", NewCommand("echo", nil), false},
		{"empty map is falsy", NewMap(nil), false},
		{"nonempty map is truthy", NewMap([]MapEntry{{Key: Int(1), Value: Int(2)}}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.ToNativeBool(); got != tt.want {
				t.Errorf("ToNativeBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualCoercion(t *testing.T) {
	tests := []struct {
		name    string
		lhs     Value
		rhs     Value
		want    bool
		wantErr bool
	}{
		{"int equals int", Int(2), Int(2), true, false},
		{"int equals numeric string", Int(2), String("2"), true, false},
		{"none equals none only", None(), None(), true, false},
		{"none not equal int", None(), Int(1), false, false},
		{"bool equals truthy string", Bool(true), String("x"), true, false},
		{"map never equal", NewMap(nil), NewMap(nil), false, false},
		{"command is invalid operation", NewCommand("a", nil), NewCommand("a", nil), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equal(tt.lhs, tt.rhs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Equal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompareNumeric(t *testing.T) {
	c, err := Compare(Int(1), Int(3))
	if err != nil || c >= 0 {
		t.Errorf("Compare(1, 3) = %d, %v; want negative, nil", c, err)
	}
	c, err = Compare(String("abc"), String("abd"))
	if err != nil || c >= 0 {
		t.Errorf("Compare(abc, abd) = %d, %v; want negative, nil", c, err)
	}
}
