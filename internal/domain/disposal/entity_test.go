package disposal

import "testing"

func TestEstimatePoints(t *testing.T) {
	tests := []struct {
		wasteType string
		liters    int
		want      int64
	}{
		{"plastico", 10, 200},
		{"papel", 10, 100},
		{"vidro", 5, 100},
		{"metal", 2, 60},
		{"organico", 3, 30},
		{"eletronico", 1, 50},
		{"desconhecido", 4, 40}, // unknown types fall back to weight 1
	}
	for _, tt := range tests {
		got := EstimatePoints(tt.wasteType, tt.liters, 10)
		if got != tt.want {
			t.Errorf("EstimatePoints(%q, %d) = %d, want %d", tt.wasteType, tt.liters, got, tt.want)
		}
	}
}

func TestDescription(t *testing.T) {
	if got := Description("plastico"); got != "Descarte de plástico" {
		t.Errorf("unexpected description: %s", got)
	}
	if got := Description("eletronico"); got != "Descarte de eletrônico" {
		t.Errorf("unexpected description: %s", got)
	}
	if got := Description("outro"); got != "Descarte de outro" {
		t.Errorf("unknown type should pass through: %s", got)
	}
}
