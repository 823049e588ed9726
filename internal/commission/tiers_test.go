package commission

import (
	"testing"

	"github.com/trefleapp/trefle-backend/pkg/enums"
)

func TestRateBps(t *testing.T) {
	cases := []struct {
		tier enums.VendorTier
		want int64
	}{
		{enums.VendorTierBronze, 450},
		{enums.VendorTierSilver, 425},
		{enums.VendorTierGold, 400},
		{enums.VendorTierPlatinum, 375},
		{enums.VendorTierDiamond, 350},
		{enums.VendorTierMagnat, 325},
		{enums.VendorTierSenior, 300},
		{enums.VendorTier("unknown"), 450},
	}
	for _, tc := range cases {
		if got := RateBps(tc.tier); got != tc.want {
			t.Errorf("RateBps(%s) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestTierForSales(t *testing.T) {
	cases := []struct {
		sales int64
		want  enums.VendorTier
	}{
		{0, enums.VendorTierBronze},
		{19, enums.VendorTierBronze},
		{20, enums.VendorTierSilver},
		{49, enums.VendorTierSilver},
		{50, enums.VendorTierGold},
		{100, enums.VendorTierPlatinum},
		{250, enums.VendorTierDiamond},
		{500, enums.VendorTierMagnat},
		{999, enums.VendorTierMagnat},
		{1000, enums.VendorTierSenior},
		{50000, enums.VendorTierSenior},
	}
	for _, tc := range cases {
		if got := TierForSales(tc.sales); got != tc.want {
			t.Errorf("TierForSales(%d) = %s, want %s", tc.sales, got, tc.want)
		}
	}
}

func TestNextTierNeverMovesDown(t *testing.T) {
	// earned gold stays gold even when the sales count says silver
	if got := NextTier(enums.VendorTierGold, 25); got != enums.VendorTierGold {
		t.Fatalf("NextTier(gold, 25) = %s, want gold", got)
	}
	if got := NextTier(enums.VendorTierBronze, 25); got != enums.VendorTierSilver {
		t.Fatalf("NextTier(bronze, 25) = %s, want silver", got)
	}
	if got := NextTier(enums.VendorTier(""), 0); got != enums.VendorTierBronze {
		t.Fatalf("NextTier(empty, 0) = %s, want bronze", got)
	}
}

func TestNextThreshold(t *testing.T) {
	cases := []struct {
		name     string
		tier     enums.VendorTier
		sales    int64
		wantTier enums.VendorTier
		wantAt   int64
		wantOK   bool
	}{
		{"bronze start", enums.VendorTierBronze, 0, enums.VendorTierSilver, 20, true},
		{"silver midway", enums.VendorTierSilver, 30, enums.VendorTierGold, 50, true},
		{"gold held above silver count", enums.VendorTierGold, 25, enums.VendorTierPlatinum, 100, true},
		{"top of ladder", enums.VendorTierSenior, 1500, enums.VendorTierSenior, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, at, ok := NextThreshold(tc.tier, tc.sales)
			if ok != tc.wantOK {
				t.Fatalf("NextThreshold(%s, %d) ok = %v, want %v", tc.tier, tc.sales, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if next != tc.wantTier || at != tc.wantAt {
				t.Fatalf("NextThreshold(%s, %d) = (%s, %d), want (%s, %d)", tc.tier, tc.sales, next, at, tc.wantTier, tc.wantAt)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		tier  enums.VendorTier
		want  int64
	}{
		{"bronze exact", 10000, enums.VendorTierBronze, 450},
		{"senior exact", 10000, enums.VendorTierSenior, 300},
		{"rounds half up", 111, enums.VendorTierBronze, 5}, // 4.995
		{"rounds down below half", 90, enums.VendorTierBronze, 4}, // 4.05
		{"exact half rounds up", 100, enums.VendorTierBronze, 5}, // 4.5
		{"small order", 1, enums.VendorTierBronze, 0}, // 0.045
		{"zero total", 0, enums.VendorTierGold, 0},
		{"negative total", -500, enums.VendorTierGold, 0},
		{"large order", 12345678, enums.VendorTierPlatinum, 462963}, // 462962.925
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compute(tc.total, tc.tier); got != tc.want {
				t.Fatalf("Compute(%d, %s) = %d, want %d", tc.total, tc.tier, got, tc.want)
			}
		})
	}
}
