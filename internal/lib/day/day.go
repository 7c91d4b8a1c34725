// Package day содержит функции для работы с календарными датами в формате ISO (YYYY-MM-DD),
// в котором хранятся дневные заработки.
package day

import (
	"fmt"
	"time"
)

// Layout — формат календарной даты.
const Layout = "2006-01-02"

// Parse разбирает дату в формате YYYY-MM-DD. Дата должна существовать в календаре
// и быть записана ровно в этом формате, без времени и часового пояса.
func Parse(s string) (time.Time, error) {
	const op = "day.Parse"
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	// отсекаем записи, которые time.Parse принимает, но которые отличаются от канонической формы
	if t.Format(Layout) != s {
		return time.Time{}, fmt.Errorf("%s: %q is not in %s format", op, s, Layout)
	}
	return t, nil
}

// Valid сообщает, является ли строка корректной датой.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Format возвращает календарную дату момента t в его часовом поясе.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today возвращает сегодняшнюю дату для момента now в UTC, как это делает исходное приложение.
func Today(now time.Time) string {
	return Format(now.UTC())
}

// Before сообщает, идёт ли дата a раньше даты b. Обе даты должны быть корректными;
// для строк формата YYYY-MM-DD лексикографический порядок совпадает с календарным.
func Before(a, b string) bool {
	return a < b
}
