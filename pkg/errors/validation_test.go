package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "input.bmp", false},
		{"nested", "images/2024/input.bmp", false},
		{"absolute", "/tmp/input.bmp", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00.bmp", true},
		{"newline", "foo\n.bmp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateInputOutput(t *testing.T) {
	tests := []struct {
		name    string
		in, out string
		wantErr bool
	}{
		{"different", "in.bmp", "out.bmp", false},
		{"same", "in.bmp", "in.bmp", true},
		{"same after clean", "./dir/../in.bmp", "in.bmp", true},
		{"empty output", "in.bmp", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputOutput(tt.in, tt.out)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputOutput(%q, %q) error = %v, wantErr %v", tt.in, tt.out, err, tt.wantErr)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"800", 800, false},

		{"", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"1.5", 0, true},
		{"not digit", 0, true},
		{"99999999999999999999999", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCount("size", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
		if err != nil && !Is(err, ErrCodeInvalidParameter) {
			t.Errorf("ParseCount(%q) code = %v", tt.input, GetCode(err))
		}
	}
}

func TestParseFloatRange(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"0.5", 0.5, false},
		{"0", 0, false},
		{"1", 1, false},
		{"1.1", 0, true},
		{"-0.1", 0, true},
		{"123not_float*", 0, true},
		{"NaN", 0, true},
		{"inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFloatRange("threshold", tt.input, 0, 1)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFloatRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFloatRange(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
