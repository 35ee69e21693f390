package cashback

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
)

// Опорные даты: 1403-01-01 по джалали — 20 марта 2024.
var (
	farvardinMid  = time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)  // 1403-01-22
	ordibeheshtD1 = time.Date(2024, time.April, 20, 12, 0, 0, 0, time.UTC)  // 1403-02-01
	ordibeheshtD6 = time.Date(2024, time.April, 25, 12, 0, 0, 0, time.UTC)  // 1403-02-06
)

func newRecord() *model.CashBack {
	return &model.CashBack{
		CreditID: 7,
		History:  make(map[string]model.CashBackHistory),
		IsActive: true,
	}
}

func submitEvent(price int64, at time.Time) model.OrderEvent {
	return model.OrderEvent{
		OrderNumber: "TG-1",
		TotalPrice:  price,
		SubmitDate:  at,
		StatusRole:  model.OrderRoleSubmit,
	}
}

func cancelEvent(price int64, at time.Time) model.OrderEvent {
	ev := submitEvent(price, at)
	ev.StatusRole = model.OrderRoleCancel
	return ev
}

func TestLookupPercent(t *testing.T) {
	tiers := []model.CashBackPercent{
		{Percent: 5, MinAmount: 0, MaxAmount: 1000},
		{Percent: 10, MinAmount: 1000, MaxAmount: 5000},
	}

	tests := []struct {
		name   string
		amount int64
		want   float64
	}{
		{name: "first tier", amount: 500, want: 5},
		{name: "second tier", amount: 3000, want: 10},
		{name: "lower bound inclusive", amount: 1000, want: 10},
		{name: "upper bound exclusive", amount: 5000, want: 0},
		{name: "negative amount", amount: -100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LookupPercent(tiers, tt.amount); got != tt.want {
				t.Fatalf("LookupPercent(%d) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestRecordOrder_TierPercent(t *testing.T) {
	tiers := []model.CashBackPercent{
		{Percent: 5, MinAmount: 0, MaxAmount: 1000},
		{Percent: 10, MinAmount: 1000, MaxAmount: 5000},
	}
	cb := newRecord()

	if !RecordOrder(cb, tiers, submitEvent(3000, farvardinMid), farvardinMid) {
		t.Fatalf("expected record to change")
	}

	if cb.NowTotalOrderAmount != 3000 {
		t.Fatalf("NowTotalOrderAmount = %d, want 3000", cb.NowTotalOrderAmount)
	}
	if cb.NowCashback != 300 {
		t.Fatalf("NowCashback = %d, want 300", cb.NowCashback)
	}
}

func TestRecordOrder_ManualPercentOverridesTiers(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 5, MinAmount: 0, MaxAmount: 100000}}
	cb := newRecord()
	cb.ManualPercent = 12

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)

	if cb.NowCashback != 1200 {
		t.Fatalf("NowCashback = %d, want 1200 with manual percent", cb.NowCashback)
	}
}

func TestRecordOrder_CategoryFilter(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 5, MinAmount: 0, MaxAmount: 100000}}
	cb := newRecord()
	cb.ValidCategories = []int64{3, 9}

	ev := submitEvent(1000, farvardinMid)
	ev.ParentCategory = 4
	if RecordOrder(cb, tiers, ev, farvardinMid) {
		t.Fatalf("order of ineligible category must be ignored")
	}
	if cb.NowTotalOrderAmount != 0 {
		t.Fatalf("NowTotalOrderAmount = %d, want 0", cb.NowTotalOrderAmount)
	}

	ev.ParentCategory = 9
	if !RecordOrder(cb, tiers, ev, farvardinMid) {
		t.Fatalf("order of eligible category must be recorded")
	}
	if cb.NowTotalOrderAmount != 1000 {
		t.Fatalf("NowTotalOrderAmount = %d, want 1000", cb.NowTotalOrderAmount)
	}
}

func TestRecordOrder_CancelSameMonth(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 10, MinAmount: 0, MaxAmount: 100000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(5000, farvardinMid), farvardinMid)
	RecordOrder(cb, tiers, cancelEvent(2000, farvardinMid), farvardinMid)

	if cb.NowTotalOrderAmount != 3000 {
		t.Fatalf("NowTotalOrderAmount = %d, want 3000", cb.NowTotalOrderAmount)
	}
	if cb.NowCashback != 300 {
		t.Fatalf("NowCashback = %d, want 300", cb.NowCashback)
	}
}

func TestRecordOrder_TooOldIsNoop(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 10, MinAmount: 0, MaxAmount: 100000}}
	cb := newRecord()

	old := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	if RecordOrder(cb, tiers, cancelEvent(2000, old), ordibeheshtD6) {
		t.Fatalf("order older than previous month must be ignored")
	}
}

func TestClosePeriod(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 8, MinAmount: 0, MaxAmount: 50000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)

	if !ClosePeriod(cb, tiers, ordibeheshtD1) {
		t.Fatalf("expected period shift")
	}

	entry, ok := cb.History["1403-01"]
	if !ok {
		t.Fatalf("history entry for 1403-01 not created")
	}

	want := model.CashBackHistory{
		Year:             1403,
		Month:            1,
		Cashback:         800,
		TotalOrderAmount: 10000,
		Percent:          8,
		Confirm:          false,
	}
	if !reflect.DeepEqual(entry, want) {
		t.Fatalf("history entry = %+v, want %+v", entry, want)
	}

	if cb.TmpTotalOrderAmount != 10000 || cb.TmpCashback != 800 {
		t.Fatalf("tmp window = %d/%d, want 10000/800", cb.TmpTotalOrderAmount, cb.TmpCashback)
	}
	if cb.NowTotalOrderAmount != 0 || cb.NowCashback != 0 {
		t.Fatalf("now window = %d/%d, want zeroed", cb.NowTotalOrderAmount, cb.NowCashback)
	}
	if cb.LastConfirm {
		t.Fatalf("LastConfirm must be reset on close")
	}
}

func TestClosePeriod_SecondCallIsNoop(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 8, MinAmount: 0, MaxAmount: 50000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)

	ClosePeriod(cb, tiers, ordibeheshtD1)
	first := cb.History["1403-01"]

	// повторное срабатывание триггера в тот же день не должно сдвигать окна второй раз
	if ClosePeriod(cb, tiers, ordibeheshtD1) {
		t.Fatalf("second close within the same period must be a no-op")
	}

	if !reflect.DeepEqual(cb.History["1403-01"], first) {
		t.Fatalf("history entry changed on repeated close: %+v", cb.History["1403-01"])
	}
	if cb.TmpTotalOrderAmount != 10000 || cb.TmpCashback != 800 {
		t.Fatalf("tmp window overwritten on repeated close: %d/%d", cb.TmpTotalOrderAmount, cb.TmpCashback)
	}
}

func TestRecordOrder_CancelPreviousMonthRefreshesHistory(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 8, MinAmount: 0, MaxAmount: 50000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)
	ClosePeriod(cb, tiers, ordibeheshtD1)

	// отмена заказа, оформленного в уже закрытом прошлом месяце
	if !RecordOrder(cb, tiers, cancelEvent(4000, farvardinMid), ordibeheshtD6) {
		t.Fatalf("cancellation of previous-month order must be applied")
	}

	if cb.TmpTotalOrderAmount != 6000 {
		t.Fatalf("TmpTotalOrderAmount = %d, want 6000", cb.TmpTotalOrderAmount)
	}
	if cb.TmpCashback != 480 {
		t.Fatalf("TmpCashback = %d, want 480", cb.TmpCashback)
	}

	if len(cb.History) != 1 {
		t.Fatalf("history keys = %d, want 1 (refresh in place, no new period)", len(cb.History))
	}

	entry := cb.History["1403-01"]
	if entry.TotalOrderAmount != 6000 || entry.Cashback != 480 || entry.Confirm {
		t.Fatalf("refreshed entry = %+v", entry)
	}
}

func TestConfirm(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 8, MinAmount: 0, MaxAmount: 50000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)
	ClosePeriod(cb, tiers, ordibeheshtD1)

	dep, paid, err := Confirm(cb, tiers, ordibeheshtD6, 55)
	if err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if paid != 800 {
		t.Fatalf("paid = %d, want 800", paid)
	}

	if dep == nil {
		t.Fatalf("expected deposit on first confirmation")
	}
	if dep.TotalPrice != 800 || !dep.Income {
		t.Fatalf("deposit = %+v", dep)
	}
	if dep.ConfirmStatus != model.ConfirmStatusAuto {
		t.Fatalf("deposit status = %s, want AUTO", dep.ConfirmStatus)
	}
	if dep.DepositType != model.DepositTypeCashback {
		t.Fatalf("deposit type = %s, want CASHBACK", dep.DepositType)
	}
	if dep.SubmitBy == nil || *dep.SubmitBy != 55 {
		t.Fatalf("deposit submit_by = %v, want 55", dep.SubmitBy)
	}

	entry := cb.History["1403-01"]
	if !entry.Confirm {
		t.Fatalf("history entry must be confirmed")
	}
	if !cb.LastConfirm {
		t.Fatalf("LastConfirm must be set")
	}
	if cb.TmpCashback != 0 || cb.TmpTotalOrderAmount != 0 {
		t.Fatalf("tmp window must be zeroed after confirmation")
	}
}

func TestConfirm_SecondCallIsIdempotent(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 8, MinAmount: 0, MaxAmount: 50000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)
	ClosePeriod(cb, tiers, ordibeheshtD1)

	_, _, err := Confirm(cb, tiers, ordibeheshtD6, 55)
	if err != nil {
		t.Fatalf("first Confirm error: %v", err)
	}

	cb.LastConfirm = false

	dep, paid, err := Confirm(cb, tiers, ordibeheshtD6, 55)
	if err != nil {
		t.Fatalf("second Confirm error: %v", err)
	}
	if dep != nil {
		t.Fatalf("second confirmation must not create a deposit")
	}
	if paid != 0 {
		t.Fatalf("second confirmation paid = %d, want 0", paid)
	}
	if !cb.LastConfirm {
		t.Fatalf("idempotent retry must still set LastConfirm")
	}
}

func TestConfirm_Inactive(t *testing.T) {
	cb := newRecord()
	cb.IsActive = false

	_, _, err := Confirm(cb, nil, ordibeheshtD6, 55)
	if !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestConfirm_PeriodNotClosed(t *testing.T) {
	cb := newRecord()

	_, _, err := Confirm(cb, nil, ordibeheshtD6, 55)
	if !errors.Is(err, ErrPeriodNotClosed) {
		t.Fatalf("expected ErrPeriodNotClosed, got %v", err)
	}
}

// Сквозной сценарий: заказ — месячное закрытие — подтверждение сотрудником.
func TestAccrualLifecycle(t *testing.T) {
	tiers := []model.CashBackPercent{{Percent: 8, MinAmount: 0, MaxAmount: 50000}}
	cb := newRecord()

	RecordOrder(cb, tiers, submitEvent(10000, farvardinMid), farvardinMid)
	if cb.NowTotalOrderAmount != 10000 || cb.NowCashback != 800 {
		t.Fatalf("after order: now = %d/%d", cb.NowTotalOrderAmount, cb.NowCashback)
	}

	ClosePeriod(cb, tiers, ordibeheshtD1)
	entry := cb.History["1403-01"]
	if entry.Cashback != 800 || entry.TotalOrderAmount != 10000 || entry.Percent != 8 || entry.Confirm {
		t.Fatalf("after close: entry = %+v", entry)
	}
	if cb.TmpCashback != 800 || cb.NowCashback != 0 {
		t.Fatalf("after close: tmp=%d now=%d", cb.TmpCashback, cb.NowCashback)
	}

	dep, paid, err := Confirm(cb, tiers, ordibeheshtD1, 1)
	if err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if paid != 800 || dep == nil || dep.TotalPrice != 800 {
		t.Fatalf("after confirm: paid=%d dep=%+v", paid, dep)
	}
	if !cb.History["1403-01"].Confirm {
		t.Fatalf("after confirm: history entry not confirmed")
	}
}
