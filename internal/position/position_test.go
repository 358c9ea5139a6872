package position

import (
	"testing"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		pos      Position
		isValid  bool
	}{
		{
			name:     "Valid position with filename",
			pos:      Position{Filename: "units/loops.json", Line: 10, Column: 5, Offset: 100},
			isValid:  true,
			expected: "loops.json:10:5",
		},
		{
			name:     "Valid position without filename",
			pos:      Position{Line: 1, Column: 1, Offset: 0},
			isValid:  true,
			expected: "1:1",
		},
		{
			name:    "Invalid position - zero line",
			pos:     Position{Line: 0, Column: 1, Offset: 0},
			isValid: false,
		},
		{
			name:    "Invalid position - negative offset",
			pos:     Position{Line: 1, Column: 1, Offset: -1},
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsValid(); got != tt.isValid {
				t.Errorf("Position.IsValid() = %v, want %v", got, tt.isValid)
			}

			if tt.isValid {
				if got := tt.pos.String(); got != tt.expected {
					t.Errorf("Position.String() = %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestSpanString(t *testing.T) {
	single := Span{
		Start: Position{Filename: "a.json", Line: 3, Column: 2, Offset: 20},
		End:   Position{Filename: "a.json", Line: 3, Column: 9, Offset: 27},
	}
	if got := single.String(); got != "a.json:3:2-9" {
		t.Errorf("single-line span = %q", got)
	}

	multi := Span{
		Start: Position{Line: 1, Column: 1, Offset: 0},
		End:   Position{Line: 4, Column: 2, Offset: 40},
	}
	if got := multi.String(); got != "1:1-4:2" {
		t.Errorf("multi-line span = %q", got)
	}

	if got := NoSpan.String(); got != "<synthetic>" {
		t.Errorf("NoSpan = %q", got)
	}
}

func TestSpanUnionAndContains(t *testing.T) {
	a := Span{
		Start: Position{Filename: "f", Line: 1, Column: 1, Offset: 0},
		End:   Position{Filename: "f", Line: 1, Column: 5, Offset: 4},
	}
	b := Span{
		Start: Position{Filename: "f", Line: 1, Column: 3, Offset: 2},
		End:   Position{Filename: "f", Line: 1, Column: 10, Offset: 9},
	}

	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 9 {
		t.Fatalf("Union = %+v", u)
	}
	if !u.Contains(Position{Filename: "f", Line: 1, Column: 7, Offset: 6}) {
		t.Error("union should contain offset 6")
	}
	if a.Contains(Position{Filename: "f", Line: 1, Column: 7, Offset: 6}) {
		t.Error("a should not contain offset 6")
	}
	if got := NoSpan.Union(a); got != a {
		t.Errorf("NoSpan.Union(a) = %+v, want a", got)
	}
}
