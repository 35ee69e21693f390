// Package pricing содержит чистые функции расчёта цен типографии.
package pricing

import (
	"math"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
)

// Fit возвращает количество заготовок указанного размера, помещающихся на листе.
// Учитывается раскладка с поворотом заготовки на 90 градусов: берётся лучший вариант.
func Fit(sheet model.Sheet, piece model.CutSize) int {
	if sheet.Length <= 0 || sheet.Width <= 0 || piece.Length <= 0 || piece.Width <= 0 {
		return 0
	}

	straight := int(math.Floor(sheet.Length/piece.Length)) * int(math.Floor(sheet.Width/piece.Width))
	rotated := int(math.Floor(sheet.Length/piece.Width)) * int(math.Floor(sheet.Width/piece.Length))

	if rotated > straight {
		return rotated
	}
	return straight
}

// PricePerPiece возвращает себестоимость одной заготовки, вырезанной из листа:
// закупка и резка пачки амортизируются на количество листов и заготовок.
// Нулевой результат означает, что заготовка не помещается на листе — это
// допустимое значение, а не ошибка.
func PricePerPiece(sheet model.Sheet, piece model.CutSize) float64 {
	fit := Fit(sheet, piece)
	if fit == 0 || sheet.SheetCount <= 0 {
		return 0
	}

	perSheet := sheet.PurchasePrice/float64(sheet.SheetCount) + sheet.CuttingPrice/float64(sheet.SheetCount)
	return perSheet / float64(fit)
}

// Resolve преобразует пару (сумма, тип суммы) в абсолютное значение относительно базы.
// Используется единообразно для опций, скидок и фестивальных бонусов.
// Неизвестный тип — ошибка программирования; возвращается 0.
func Resolve(base, amount float64, amountType model.AmountType) float64 {
	switch amountType {
	case model.AmountTypePercent:
		return base * amount / 100
	case model.AmountTypeFix:
		return amount
	}
	return 0
}
