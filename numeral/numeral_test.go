package numeral

import (
	"math"
	"testing"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"630,00", 630},
		{"14,24", 14.24},
		{"1.605,90", 1605.90},
		{"49.578,18", 49578.18},
		{"107.930,01", 107930.01},
		{"1.234,5678", 1234.5678},
		{"95", 95},
		{"9,17", 9.17},
	}

	for _, tt := range tests {
		got, err := ParseFloat(tt.in)
		if err != nil {
			t.Errorf("ParseFloat(%q) error = %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFloatRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "12a,00"} {
		if _, err := ParseFloat(in); err == nil {
			t.Errorf("ParseFloat(%q) expected error, got nil", in)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{1234.5678, 4, "1.234,5678"},
		{49578.18, 2, "49.578,18"},
		{630, 2, "630,00"},
		{9.17, 2, "9,17"},
		{1234567.89, 2, "1.234.567,89"},
		{-1234.5, 2, "-1.234,50"},
		{95, 0, "95"},
	}

	for _, tt := range tests {
		if got := Format(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Format(%v, %d) = %q, want %q", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// A four-decimal quantity must survive parse → format unchanged.
	const in = "1.234,5678"

	v, err := ParseFloat(in)
	if err != nil {
		t.Fatalf("ParseFloat(%q) error = %v", in, err)
	}
	if math.Abs(v-1234.5678) > 1e-9 {
		t.Fatalf("ParseFloat(%q) = %v, want 1234.5678", in, v)
	}
	if got := Format(v, 4); got != in {
		t.Errorf("Format() = %q, want %q", got, in)
	}
}

func TestIsNumber(t *testing.T) {
	valid := []string{"95", "9,17", "630,00", "1.234,56", "1.234,5678", "2,8"}
	for _, s := range valid {
		if !IsNumber(s) {
			t.Errorf("IsNumber(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "mm", "9.17.2", "1,23456", "ud", "95,", "APUDes23UA014e"}
	for _, s := range invalid {
		if IsNumber(s) {
			t.Errorf("IsNumber(%q) = true, want false", s)
		}
	}
}

func TestIsAmount(t *testing.T) {
	valid := []string{"869,32", "49.578,18", "107.930,01", "0,05"}
	for _, s := range valid {
		if !IsAmount(s) {
			t.Errorf("IsAmount(%q) = false, want true", s)
		}
	}

	invalid := []string{"95", "9,1", "1.234,5678", "2,8", "TOTAL"}
	for _, s := range invalid {
		if IsAmount(s) {
			t.Errorf("IsAmount(%q) = true, want false", s)
		}
	}
}

func TestScanAll(t *testing.T) {
	nums := ScanAll("1 530,00 530,00")
	want := []float64{1, 530, 530}
	if len(nums) != len(want) {
		t.Fatalf("ScanAll() = %v, want %v", nums, want)
	}
	for i := range want {
		if math.Abs(nums[i]-want[i]) > 1e-9 {
			t.Errorf("ScanAll()[%d] = %v, want %v", i, nums[i], want[i])
		}
	}

	if nums := ScanAll("SIN CIFRAS"); len(nums) != 0 {
		t.Errorf("ScanAll() on text = %v, want none", nums)
	}
}

func TestAllNumbers(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"95,00 9,17 869,32", true},
		{"2 2,49 4,98", true},
		{"1 1", true},
		{"", false},
		{"2,8 mm", false},
		{"TOTAL 869,32", false},
	}

	for _, tt := range tests {
		if got := AllNumbers(tt.line); got != tt.want {
			t.Errorf("AllNumbers(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestTrailingNumbers(t *testing.T) {
	prefix, nums, ok := TrailingNumbers("ud LEVANTADO DE BORDILLO 95,00 9,17 869,32", 3, 3)
	if !ok {
		t.Fatal("TrailingNumbers() ok = false, want true")
	}
	if prefix != "ud LEVANTADO DE BORDILLO" {
		t.Errorf("prefix = %q, want %q", prefix, "ud LEVANTADO DE BORDILLO")
	}
	if len(nums) != 3 || nums[0] != 95 || nums[1] != 9.17 || nums[2] != 869.32 {
		t.Errorf("nums = %v, want [95 9.17 869.32]", nums)
	}
}

func TestTrailingNumbersStopsAtText(t *testing.T) {
	// The measurement "2,8 mm" sits before text, so only the true value
	// columns at the end are captured.
	prefix, nums, ok := TrailingNumbers("TUBO DE 2,8 mm INSTALADO 10,00 4,50 45,00", 3, 3)
	if !ok {
		t.Fatal("TrailingNumbers() ok = false, want true")
	}
	if prefix != "TUBO DE 2,8 mm INSTALADO" {
		t.Errorf("prefix = %q, want measurement kept in prefix", prefix)
	}
	if len(nums) != 3 || nums[0] != 10 {
		t.Errorf("nums = %v, want [10 4.5 45]", nums)
	}
}

func TestTrailingNumbersRejectsMeasurementOnly(t *testing.T) {
	// An amount-shaped token followed by a unit suffix is not a value
	// column; nothing numeric trails the line.
	if _, _, ok := TrailingNumbers("ESPESOR 2,8 mm", 2, 3); ok {
		t.Error("TrailingNumbers() ok = true, want false for trailing unit suffix")
	}
}

func TestTrailingNumbersDescriptionEndingInNumber(t *testing.T) {
	// "FASE 2" ends in a digit; the cap keeps the capture to the three
	// rightmost numbers and the 2 stays in the prefix.
	prefix, nums, ok := TrailingNumbers("DEM06 m2 DEMOLICIÓN FASE 2 1 530,00 530,00", 3, 3)
	if !ok {
		t.Fatal("TrailingNumbers() ok = false, want true")
	}
	if prefix != "DEM06 m2 DEMOLICIÓN FASE 2" {
		t.Errorf("prefix = %q, want %q", prefix, "DEM06 m2 DEMOLICIÓN FASE 2")
	}
	if len(nums) != 3 || nums[0] != 1 || nums[1] != 530 || nums[2] != 530 {
		t.Errorf("nums = %v, want [1 530 530]", nums)
	}
}

func TestTrailingNumbersPair(t *testing.T) {
	prefix, nums, ok := TrailingNumbers("REJA FIJA 4,00 120,00", 2, 3)
	if !ok {
		t.Fatal("TrailingNumbers() ok = false, want true")
	}
	if prefix != "REJA FIJA" {
		t.Errorf("prefix = %q, want %q", prefix, "REJA FIJA")
	}
	if len(nums) != 2 {
		t.Errorf("nums = %v, want two values", nums)
	}
}

func TestTrailingNumbersTooFew(t *testing.T) {
	if _, _, ok := TrailingNumbers("LEVANTADO DE BORDILLO 95,00", 2, 3); ok {
		t.Error("TrailingNumbers() ok = true, want false with one trailing number")
	}
}
