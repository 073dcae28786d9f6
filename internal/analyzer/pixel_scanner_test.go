package analyzer

import "testing"

// fillCanonical sets the first n pixels (row-major) of img to the given color.
func fillCanonical(img *CanonicalImage, n int, r, g, b uint8) {
	for i := 0; i < n; i++ {
		img.SetRGB(i%CanonicalSize, i/CanonicalSize, r, g, b)
	}
}

func TestPixelScanner_VisitsEveryPixel(t *testing.T) {
	scanner := NewPixelScanner()
	img := newCanonicalImage()
	fillCanonical(img, totalPixels, 120, 100, 80)

	acc := scanner.Scan(img)

	if acc.VegetationPixelCount+acc.SoilPixelCount != totalPixels {
		t.Errorf("Expected vegetation+soil = %d, got %d", totalPixels, acc.VegetationPixelCount+acc.SoilPixelCount)
	}
	if acc.SoilRedSum != 120*totalPixels || acc.SoilGreenSum != 100*totalPixels || acc.SoilBlueSum != 80*totalPixels {
		t.Errorf("Unexpected soil sums: %+v", acc)
	}
	if acc.DarkPixelCount != 0 {
		t.Errorf("Expected no dark pixels, got %d", acc.DarkPixelCount)
	}
}

func TestPixelScanner_VegetationRule(t *testing.T) {
	testCases := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"green dominant", 10, 120, 30, true},
		{"green at threshold", 0, 50, 0, false},
		{"green just above threshold", 0, 51, 0, true},
		{"green ties red", 100, 100, 0, false},
		{"green ties blue", 0, 100, 100, false},
		{"red dominant", 200, 100, 0, false},
		{"dark green", 10, 55, 10, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := isVegetation(uint64(tc.r), uint64(tc.g), uint64(tc.b))
			if got != tc.want {
				t.Errorf("isVegetation(%d,%d,%d) = %v, want %v", tc.r, tc.g, tc.b, got, tc.want)
			}
		})
	}
}

func TestPixelScanner_DarknessRule(t *testing.T) {
	testCases := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"black", 0, 0, 0, true},
		{"brightness 59", 59, 59, 59, true},
		{"brightness 60", 60, 60, 60, false},
		{"brightness 59.67 is still dark", 60, 60, 59, true},
		{"pure red brightness 85", 255, 0, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := isDark(uint64(tc.r), uint64(tc.g), uint64(tc.b))
			if got != tc.want {
				t.Errorf("isDark(%d,%d,%d) = %v, want %v", tc.r, tc.g, tc.b, got, tc.want)
			}
		})
	}
}

func TestPixelScanner_VegetationCanBeDark(t *testing.T) {
	scanner := NewPixelScanner()
	img := newCanonicalImage()
	// Dark green: vegetation and below the brightness threshold.
	fillCanonical(img, totalPixels, 10, 55, 10)

	acc := scanner.Scan(img)

	if acc.VegetationPixelCount != totalPixels {
		t.Errorf("Expected all pixels to be vegetation, got %d", acc.VegetationPixelCount)
	}
	if acc.DarkPixelCount != totalPixels {
		t.Errorf("Expected all pixels to be dark, got %d", acc.DarkPixelCount)
	}
	if acc.SoilPixelCount != 0 || acc.SoilRedSum != 0 {
		t.Errorf("Expected no soil accumulation, got %+v", acc)
	}
}

func TestPixelScanner_Ratios(t *testing.T) {
	scanner := NewPixelScanner()
	img := newCanonicalImage()
	fillCanonical(img, totalPixels, 200, 180, 160)
	fillCanonical(img, totalPixels/4, 20, 200, 20)

	acc := scanner.Scan(img)

	if got := acc.VegetationRatio(); got != 0.25 {
		t.Errorf("Expected vegetation ratio 0.25, got %f", got)
	}
	if got := acc.DarknessRatio(); got != 0 {
		t.Errorf("Expected darkness ratio 0, got %f", got)
	}
}
