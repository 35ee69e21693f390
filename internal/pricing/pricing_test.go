package pricing

import (
	"math"
	"testing"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		sheet model.Sheet
		piece model.CutSize
		want  int
	}{
		{
			name:  "exact grid",
			sheet: model.Sheet{Length: 100, Width: 70},
			piece: model.CutSize{Length: 10, Width: 7},
			want:  100,
		},
		{
			name:  "rotation wins",
			sheet: model.Sheet{Length: 100, Width: 30},
			piece: model.CutSize{Length: 30, Width: 20},
			// без поворота 3*1=3, с поворотом 5*1=5
			want: 5,
		},
		{
			name:  "piece larger than sheet",
			sheet: model.Sheet{Length: 20, Width: 20},
			piece: model.CutSize{Length: 30, Width: 30},
			want:  0,
		},
		{
			name:  "piece fits only rotated",
			sheet: model.Sheet{Length: 50, Width: 10},
			piece: model.CutSize{Length: 10, Width: 50},
			want:  1,
		},
		{
			name:  "zero dimensions",
			sheet: model.Sheet{Length: 0, Width: 70},
			piece: model.CutSize{Length: 10, Width: 7},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fit(tt.sheet, tt.piece); got != tt.want {
				t.Fatalf("Fit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPricePerPiece(t *testing.T) {
	sheet := model.Sheet{
		Length:        100,
		Width:         70,
		PurchasePrice: 500000,
		CuttingPrice:  100000,
		SheetCount:    100,
	}
	piece := model.CutSize{Length: 10, Width: 7}

	// (500000/100 + 100000/100) / 100 = 60
	got := PricePerPiece(sheet, piece)
	if math.Abs(got-60) > 1e-9 {
		t.Fatalf("PricePerPiece = %v, want 60", got)
	}
}

func TestPricePerPiece_NoFitIsZero(t *testing.T) {
	sheet := model.Sheet{Length: 20, Width: 20, PurchasePrice: 1000, CuttingPrice: 100, SheetCount: 10}
	piece := model.CutSize{Length: 30, Width: 30}

	if got := PricePerPiece(sheet, piece); got != 0 {
		t.Fatalf("PricePerPiece = %v, want 0 for piece that does not fit", got)
	}
}

func TestPricePerPiece_NonNegative(t *testing.T) {
	sheets := []model.Sheet{
		{Length: 100, Width: 70, PurchasePrice: 500000, CuttingPrice: 100000, SheetCount: 100},
		{Length: 45, Width: 32, PurchasePrice: 0, CuttingPrice: 0, SheetCount: 1},
		{Length: 1, Width: 1, PurchasePrice: 99999, CuttingPrice: 1, SheetCount: 500},
	}
	pieces := []model.CutSize{
		{Length: 10, Width: 7},
		{Length: 9, Width: 5},
		{Length: 200, Width: 200},
	}

	for _, s := range sheets {
		for _, p := range pieces {
			if got := PricePerPiece(s, p); got < 0 {
				t.Fatalf("PricePerPiece(%+v, %+v) = %v, want non-negative", s, p, got)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		base       float64
		amount     float64
		amountType model.AmountType
		want       float64
	}{
		{name: "percent", base: 200000, amount: 10, amountType: model.AmountTypePercent, want: 20000},
		{name: "percent fractional", base: 150, amount: 2.5, amountType: model.AmountTypePercent, want: 3.75},
		{name: "fix", base: 200000, amount: 15000, amountType: model.AmountTypeFix, want: 15000},
		{name: "unknown type", base: 200000, amount: 10, amountType: model.AmountType("OTHER"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.base, tt.amount, tt.amountType); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}
