package utils

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{1234567, "1 234 567"},
		{-4500, "-4 500"},
	}
	for _, c := range cases {
		if got := FormatAmount(c.in); got != c.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeCardNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4276 0000 1111 2222", "4276000011112222"},
		{"4276-0000-1111-2222", "4276000011112222"},
		{"4276000011112222", "4276000011112222"},
		{"1234", ""},
		{"not a card", ""},
	}
	for _, c := range cases {
		if got := NormalizeCardNumber(c.in); got != c.want {
			t.Errorf("NormalizeCardNumber(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+79991234567", "+79991234567"},
		{"89991234567", "+79991234567"},
		{"79991234567", "+79991234567"},
		{"8 (999) 123-45-67", "+79991234567"},
		{"12345", ""},
		{"+1234567890", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskDetails(t *testing.T) {
	if got := MaskDetails("card", "4276000011112222"); got != "4276 **** **** 2222" {
		t.Errorf("card mask = %q", got)
	}
	if got := MaskDetails("sbp", "+79991234567"); got != "+7 (999) ***-**-67" {
		t.Errorf("sbp mask = %q", got)
	}
	if got := MaskDetails("other", "short"); got != "short" {
		t.Errorf("short details changed: %q", got)
	}
}
