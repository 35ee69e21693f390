// Package model содержит доменные сущности бэк-офиса типографии.
package model

import "time"

// ConfirmStatus описывает статус подтверждения депозита.
type ConfirmStatus string

const (
	ConfirmStatusPending   ConfirmStatus = "PENDING"
	ConfirmStatusConfirmed ConfirmStatus = "CONFIRMED"
	ConfirmStatusRejected  ConfirmStatus = "REJECTED"
	// ConfirmStatusAuto присваивается депозитам, созданным системой:
	// они минуют ручную проверку и применяются к балансу сразу при создании.
	ConfirmStatusAuto ConfirmStatus = "AUTO"
)

// DepositType описывает происхождение депозита.
type DepositType string

const (
	DepositTypeManual   DepositType = "MANUAL"
	DepositTypeCashback DepositType = "CASHBACK"
	DepositTypeGateway  DepositType = "GATEWAY"
)

// TransactionType описывает категорию транзакции депозита.
// Категория носит справочный характер и не влияет на расчёт баланса.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeOrder  TransactionType = "ORDER"
	TransactionTypeRefund TransactionType = "REFUND"
)

// AmountType задаёт способ интерпретации суммы опции или скидки.
type AmountType string

const (
	AmountTypePercent AmountType = "PERCENT"
	AmountTypeFix     AmountType = "FIX"
)

// OrderStatusRole описывает роль статуса заказа, существенную для кэшбэка.
type OrderStatusRole string

const (
	OrderRoleSubmit OrderStatusRole = "SUBMIT"
	OrderRoleCancel OrderStatusRole = "CANCEL"
)

// ConfirmStatusLabel возвращает отображаемую подпись статуса подтверждения.
// Подписи вынесены из доменных значений и не участвуют в логике.
func ConfirmStatusLabel(s ConfirmStatus) string {
	switch s {
	case ConfirmStatusPending:
		return "در انتظار بررسی"
	case ConfirmStatusConfirmed:
		return "تایید شده"
	case ConfirmStatusRejected:
		return "رد شده"
	case ConfirmStatusAuto:
		return "خودکار"
	}
	return string(s)
}

// Credit представляет кредитный счёт пользователя.
// TotalAmount — авторитетный баланс в целых денежных единицах (риалах),
// равный знаковой сумме подтверждённых депозитов.
type Credit struct {
	ID          int64
	OwnerID     int64
	TotalAmount int64
	CreatedAt   time.Time
}

// Deposit представляет запись в книге депозитов кредитного счёта.
// После подтверждения запись неизменяема.
type Deposit struct {
	ID              int64
	CreditID        int64
	TotalPrice      int64
	Income          bool
	ConfirmStatus   ConfirmStatus
	DepositType     DepositType
	TransactionType TransactionType
	SubmitBy        *int64
	Description     string
	TrackingCode    string
	SubmitDate      time.Time
	DepositDate     time.Time
}

// DisplayPrice возвращает знаковый вклад депозита в баланс счёта.
func (d Deposit) DisplayPrice() int64 {
	if d.Income {
		return d.TotalPrice
	}
	return -d.TotalPrice
}

// CashBackPercent описывает строку таблицы процентных уровней кэшбэка.
// Диапазон сумм полуоткрытый: [MinAmount, MaxAmount).
type CashBackPercent struct {
	ID        int64
	Percent   float64
	MinAmount int64
	MaxAmount int64
}

// Contains сообщает, попадает ли сумма в диапазон уровня.
func (p CashBackPercent) Contains(amount int64) bool {
	return amount >= p.MinAmount && amount < p.MaxAmount
}

// CashBackHistory — закрытый месячный период кэшбэка в истории записи.
type CashBackHistory struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	Cashback         int64   `json:"cashback"`
	TotalOrderAmount int64   `json:"total_order_amount"`
	Percent          float64 `json:"percent"`
	Confirm          bool    `json:"confirm"`
}

// CashBack представляет запись накопления кэшбэка кредитного счёта.
// Now* — открытое окно текущего месяца по солнечной хиджре,
// Tmp* — последний закрытый месяц, ожидающий подтверждения сотрудником.
// History хранит закрытые периоды по ключу "ГГГГ-ММ" (джалали).
type CashBack struct {
	CreditID            int64
	NowTotalOrderAmount int64
	NowCashback         int64
	TmpTotalOrderAmount int64
	TmpCashback         int64
	// ManualPercent — ручной процент; 0 означает поиск по таблице уровней.
	ManualPercent float64
	// ValidCategories — категории товаров, участвующие в накоплении.
	// Пустой список означает все категории.
	ValidCategories []int64
	History         map[string]CashBackHistory
	IsActive        bool
	LastConfirm     bool
	// LastClosedPeriod — ключ последнего периода, закрытого сдвигом now→tmp.
	// Защищает от повторного сдвига при дублирующем срабатывании триггера.
	LastClosedPeriod string
}

// CategoryEligible сообщает, участвует ли категория товара в накоплении кэшбэка.
func (c *CashBack) CategoryEligible(category int64) bool {
	if len(c.ValidCategories) == 0 {
		return true
	}
	for _, id := range c.ValidCategories {
		if id == category {
			return true
		}
	}
	return false
}

// OrderEvent описывает событие заказа витрины, существенное для кэшбэка.
type OrderEvent struct {
	OrderNumber    string
	OwnerID        int64
	TotalPrice     int64
	SubmitDate     time.Time
	ParentCategory int64
	StatusRole     OrderStatusRole
}

// Sheet описывает лист сырья: размеры, цену закупки и резки за пачку листов.
type Sheet struct {
	ID            int64
	Name          string
	Length        float64
	Width         float64
	PurchasePrice float64
	CuttingPrice  float64
	SheetCount    int
}

// CutSize описывает целевой размер реза.
type CutSize struct {
	ID     int64
	Name   string
	Length float64
	Width  float64
}
