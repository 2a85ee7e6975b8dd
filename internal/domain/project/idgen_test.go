package project

import "testing"

func TestNextNumber(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		year     int
		want     string
	}{
		{name: "empty year starts at 001", existing: nil, year: 2026, want: "2026-001"},
		{
			name:     "increments highest suffix",
			existing: []string{"2026-001", "2026-007", "2026-003"},
			year:     2026,
			want:     "2026-008",
		},
		{
			name:     "other years ignored",
			existing: []string{"2025-120", "2024-999"},
			year:     2026,
			want:     "2026-001",
		},
		{
			name:     "malformed numbers ignored",
			existing: []string{"2026-1", "garbage", "2026-010"},
			year:     2026,
			want:     "2026-011",
		},
		{
			name:     "rolls into four digits unpadded",
			existing: []string{"2026-999"},
			year:     2026,
			want:     "2026-1000",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextNumber(tc.existing, tc.year); got != tc.want {
				t.Fatalf("NextNumber = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSequenceOf(t *testing.T) {
	if seq, ok := SequenceOf("2026-042", 2026); !ok || seq != 42 {
		t.Fatalf("SequenceOf(2026-042) = %d, %v", seq, ok)
	}
	if _, ok := SequenceOf("2025-042", 2026); ok {
		t.Fatal("wrong year accepted")
	}
	if _, ok := SequenceOf("2026-42", 2026); ok {
		t.Fatal("unpadded suffix accepted")
	}
}

func TestNewCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewCode()
		if !ValidCode(code) {
			t.Fatalf("NewCode() = %q, want LLL-DDD", code)
		}
	}
}
