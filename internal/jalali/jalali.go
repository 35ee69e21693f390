// Package jalali содержит календарные операции для месячных периодов кэшбэка.
// Все границы месяцев считаются по солнечной хиджре (джалали), не по григорианскому календарю.
package jalali

import (
	"fmt"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Period идентифицирует один месяц джалали.
type Period struct {
	Year  int
	Month int
}

// Key возвращает строковый ключ периода в формате "ГГГГ-ММ".
// Этот формат фиксирован: по нему хранятся и читаются записи истории кэшбэка.
func (p Period) Key() string {
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// PeriodOf возвращает период джалали, содержащий указанный момент времени.
func PeriodOf(t time.Time) Period {
	pt := ptime.New(t)
	return Period{Year: pt.Year(), Month: int(pt.Month())}
}

// PreviousOf возвращает период, предшествующий месяцу указанного момента:
// первый день текущего месяца джалали минус один день.
func PreviousOf(t time.Time) Period {
	p := PeriodOf(t)
	p.Month--
	if p.Month == 0 {
		p.Month = 12
		p.Year--
	}
	return p
}

// DayOfMonth возвращает день месяца джалали для указанного момента.
func DayOfMonth(t time.Time) int {
	return ptime.New(t).Day()
}
