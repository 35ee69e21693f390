// Package cashback реализует машину состояний месячного накопления кэшбэка.
//
// Каждая запись ведёт два окна: открытый текущий месяц (now) и последний
// закрытый месяц, ожидающий подтверждения сотрудником (tmp). Границы месяцев
// считаются по календарю джалали. Пакет не обращается к хранилищу: все
// функции мутируют запись в памяти, а вызывающая сторона сохраняет её в
// рамках своей транзакции.
package cashback

import (
	"errors"
	"math"
	"time"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/jalali"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
)

// ErrInactive возвращается при попытке подтвердить кэшбэк отключённой записи.
var (
	ErrInactive = errors.New("cashback record is not active")
	// ErrPeriodNotClosed возвращается, если подтверждаемый период ещё не закрыт.
	ErrPeriodNotClosed = errors.New("cashback period is not closed yet")
)

// LookupPercent возвращает процент первого уровня, диапазон которого содержит
// сумму. Уровни должны быть отсортированы по возрастанию MinAmount — при
// пересекающихся диапазонах выигрывает уровень с меньшей нижней границей.
func LookupPercent(tiers []model.CashBackPercent, amount int64) float64 {
	for _, t := range tiers {
		if t.Contains(amount) {
			return t.Percent
		}
	}
	return 0
}

// PercentFor возвращает действующий процент записи для указанной суммы:
// ручной процент, если он задан, иначе поиск по таблице уровней.
func PercentFor(cb *model.CashBack, tiers []model.CashBackPercent, amount int64) float64 {
	if cb.ManualPercent != 0 {
		return cb.ManualPercent
	}
	return LookupPercent(tiers, amount)
}

// Amount возвращает сумму кэшбэка для суммы заказов и процента.
// Единственная точка округления: результат храним в целых денежных единицах.
func Amount(total int64, percent float64) int64 {
	return int64(math.Round(float64(total) * percent / 100))
}

// RecordOrder применяет событие заказа к записи кэшбэка.
//
// Заказ текущего месяца джалали пополняет окно now (отмена — вычитает);
// заказ предыдущего месяца (достижимо только отменой) корректирует окно tmp
// и освежает уже закрытую запись истории на месте. Более старые заказы и
// заказы неподходящих категорий игнорируются. Возвращает признак изменения записи.
func RecordOrder(cb *model.CashBack, tiers []model.CashBackPercent, ev model.OrderEvent, now time.Time) bool {
	if !cb.CategoryEligible(ev.ParentCategory) {
		return false
	}

	delta := ev.TotalPrice
	if ev.StatusRole == model.OrderRoleCancel {
		delta = -delta
	}

	orderPeriod := jalali.PeriodOf(ev.SubmitDate)

	switch orderPeriod {
	case jalali.PeriodOf(now):
		cb.NowTotalOrderAmount += delta
		cb.NowCashback = Amount(cb.NowTotalOrderAmount, PercentFor(cb, tiers, cb.NowTotalOrderAmount))
		return true
	case jalali.PreviousOf(now):
		cb.TmpTotalOrderAmount += delta
		cb.TmpCashback = Amount(cb.TmpTotalOrderAmount, PercentFor(cb, tiers, cb.TmpTotalOrderAmount))
		RefreshClosedPeriod(cb, tiers, now)
		return true
	}

	return false
}

// ClosePeriod закрывает только что завершившийся месяц джалали: переносит
// значения окна now в запись истории с confirm=false, сдвигает now в tmp и
// обнуляет now. Повторный вызов в пределах одного периода — no-op: сдвиг
// выполняется не более одного раза на период. Возвращает признак сдвига.
func ClosePeriod(cb *model.CashBack, tiers []model.CashBackPercent, now time.Time) bool {
	prev := jalali.PreviousOf(now)
	key := prev.Key()

	if cb.LastClosedPeriod == key {
		return false
	}

	if cb.History == nil {
		cb.History = make(map[string]model.CashBackHistory)
	}

	cb.History[key] = model.CashBackHistory{
		Year:             prev.Year,
		Month:            prev.Month,
		Cashback:         cb.NowCashback,
		TotalOrderAmount: cb.NowTotalOrderAmount,
		Percent:          PercentFor(cb, tiers, cb.NowTotalOrderAmount),
		Confirm:          false,
	}

	cb.TmpTotalOrderAmount = cb.NowTotalOrderAmount
	cb.TmpCashback = cb.NowCashback
	cb.NowTotalOrderAmount = 0
	cb.NowCashback = 0
	cb.LastConfirm = false
	cb.LastClosedPeriod = key

	return true
}

// RefreshClosedPeriod переписывает запись истории закрытого периода значениями
// окна tmp, не создавая нового ключа и не сдвигая окна. Используется после
// корректировки tmp отменой заказа прошлого месяца.
func RefreshClosedPeriod(cb *model.CashBack, tiers []model.CashBackPercent, now time.Time) {
	key := jalali.PreviousOf(now).Key()

	entry, ok := cb.History[key]
	if !ok {
		return
	}

	entry.Cashback = cb.TmpCashback
	entry.TotalOrderAmount = cb.TmpTotalOrderAmount
	entry.Percent = PercentFor(cb, tiers, cb.TmpTotalOrderAmount)
	cb.History[key] = entry
}

// Confirm подтверждает последний закрытый период и формирует депозит выплаты.
//
// Неактивная запись — ошибка доступа; незакрытый период — ошибка валидации.
// Повторное подтверждение того же периода — идемпотентный no-op: депозит не
// возвращается, сумма 0, но LastConfirm выставляется. При первом подтверждении
// запись истории освежается значениями tmp, помечается подтверждённой, окно tmp
// обнуляется, а вызывающей стороне возвращается депозит типа CASHBACK со
// статусом AUTO на выплаченную сумму.
func Confirm(cb *model.CashBack, tiers []model.CashBackPercent, now time.Time, employeeID int64) (*model.Deposit, int64, error) {
	if !cb.IsActive {
		return nil, 0, ErrInactive
	}

	key := jalali.PreviousOf(now).Key()

	entry, ok := cb.History[key]
	if !ok {
		return nil, 0, ErrPeriodNotClosed
	}

	if entry.Confirm {
		cb.LastConfirm = true
		return nil, 0, nil
	}

	entry.Cashback = cb.TmpCashback
	entry.TotalOrderAmount = cb.TmpTotalOrderAmount
	entry.Percent = PercentFor(cb, tiers, cb.TmpTotalOrderAmount)
	entry.Confirm = true
	cb.History[key] = entry

	paid := cb.TmpCashback
	cb.TmpCashback = 0
	cb.TmpTotalOrderAmount = 0
	cb.LastConfirm = true

	dep := &model.Deposit{
		CreditID:        cb.CreditID,
		TotalPrice:      paid,
		Income:          true,
		ConfirmStatus:   model.ConfirmStatusAuto,
		DepositType:     model.DepositTypeCashback,
		TransactionType: model.TransactionTypeCredit,
		SubmitBy:        &employeeID,
		Description:     "cashback payout for period " + key,
	}

	return dep, paid, nil
}
