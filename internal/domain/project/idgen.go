package project

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`^(\d{4})-(\d{3})$`)

// FormatNumber renders a year-scoped project number, e.g. 2026-014.
func FormatNumber(year, sequence int) string {
	return fmt.Sprintf("%d-%03d", year, sequence)
}

// SequenceOf extracts the numeric suffix of a project number when the
// number belongs to the given year. Returns 0, false otherwise.
func SequenceOf(number string, year int) (int, bool) {
	m := numberPattern.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return 0, false
	}
	y, _ := strconv.Atoi(m[1])
	if y != year {
		return 0, false
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return seq, true
}

// NextNumber picks the highest year-matching sequence out of the
// existing numbers and returns the next one, starting at 001 when the
// year has no projects yet. Uniqueness under concurrent creation is
// enforced by the unique index on number, not here.
func NextNumber(existing []string, year int) string {
	max := 0
	for _, n := range existing {
		if seq, ok := SequenceOf(n, year); ok && seq > max {
			max = seq
		}
	}
	return FormatNumber(year, max+1)
}

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}-\d{3}$`)

// NewCode draws a random LLL-DDD token. Collisions are possible and are
// handled by the creation path as a retryable conflict.
func NewCode() string {
	var b strings.Builder
	b.Grow(7)
	for i := 0; i < 3; i++ {
		b.WriteByte(codeLetters[rand.Intn(len(codeLetters))])
	}
	b.WriteByte('-')
	for i := 0; i < 3; i++ {
		b.WriteByte(codeDigits[rand.Intn(len(codeDigits))])
	}
	return b.String()
}

func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

func ValidNumber(number string) bool {
	return numberPattern.MatchString(number)
}
