package classify

import "testing"

func TestIsUnit(t *testing.T) {
	units := []string{
		"m", "M", "m.", "M.", "ml", "Ml", "m2", "m²", "M3", "m³",
		"ud", "Ud", "u", "UD", "uf", "Uf",
		"pa", "PA", "P.A.", "P:A:", "p.a",
		"kg", "Kg", "KG", "h", "H", "l", "t", "d",
		"mes", "día", "dia", "año", "sem", "sm",
		"ud/d", "m2/d",
	}
	for _, u := range units {
		if !IsUnit(u) {
			t.Errorf("Expected %q to be a unit", u)
		}
	}

	notUnits := []string{
		"", "BORDILLO", "CORTE", "DEM06", "metros", "mm", "uds.",
		"705,60", "de",
	}
	for _, u := range notUnits {
		if IsUnit(u) {
			t.Errorf("Expected %q not to be a unit", u)
		}
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"m", "m"},
		{"M", "m"},
		{"m.", "m"},
		{"ml", "m"},
		{"Ml", "m"},
		{"m2", "m²"},
		{"M2", "m²"},
		{"m²", "m²"},
		{"m3", "m³"},
		{"M3", "m³"},
		{"u", "Ud"},
		{"ud", "Ud"},
		{"UD", "Ud"},
		{"uf", "Uf"},
		{"pa", "PA"},
		{"PA", "PA"},
		{"P.A.", "PA"},
		{"P:A:", "PA"},
		{"kg", "Kg"},
		{"KG", "Kg"},
		{"h", "H"},
		{"día", "Día"},
		{"mes", "Mes"},
		{"ud/d", "Ud/d"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeUnit(tt.in); got != tt.want {
				t.Errorf("NormalizeUnit(%q): expected %q, got %q", tt.in, tt.want, got)
			}
		})
	}
}
