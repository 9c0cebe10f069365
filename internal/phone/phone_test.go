package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5551234567", "+15551234567", true},
		{"15551234567", "+15551234567", true},
		{"+44 20 7946 0958", "+442079460958", true},
		{"(555) 123-4567", "+15551234567", true},
		{"1234567", "+1234567", true},
		{"123", "", false},
		{"", "", false},
		{"+", "", false},
		{"abc", "", false},
		{"1234567890123456", "", false},
	}

	for _, tc := range cases {
		got, ok := Normalize(tc.in, "1")
		if ok != tc.ok || got != tc.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeDefaultCountryCode(t *testing.T) {
	got, ok := Normalize("2079460958", "44")
	if !ok || got != "+442079460958" {
		t.Fatalf("Normalize with country code 44 = %q, %v", got, ok)
	}
}
