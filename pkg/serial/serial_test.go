package serial

import "testing"

func TestNext_IgnoresNonNumeric(t *testing.T) {
	existing := []string{"3", "7", "abc", "10"}
	if got := Next(existing, ""); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
}

func TestNext_Empty(t *testing.T) {
	if got := Next(nil, ""); got != 1 {
		t.Errorf("expected 1 for empty set, got %d", got)
	}
}

func TestNext_WithPrefix(t *testing.T) {
	existing := []string{"P0001", "P0017", "P-broken", "0005"}
	if got := Next(existing, "P"); got != 18 {
		t.Errorf("expected 18, got %d", got)
	}
}

func TestNext_PaddedInput(t *testing.T) {
	existing := []string{"0009", "0012"}
	if got := Next(existing, ""); got != 13 {
		t.Errorf("expected 13, got %d", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(11, ""); got != "0011" {
		t.Errorf("expected 0011, got %s", got)
	}
	if got := Format(18, "P"); got != "P0018" {
		t.Errorf("expected P0018, got %s", got)
	}
	if got := Format(123456, ""); got != "123456" {
		t.Errorf("expected 123456, got %s", got)
	}
}
