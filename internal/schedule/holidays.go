package schedule

import "time"

type monthDay struct {
	month time.Month
	day   int
}

// Фиксированные нерабочие дни (Азербайджан). Плавающие религиозные
// праздники не учитываются, их даты меняются каждый год.
var holidays = map[monthDay]bool{
	{time.January, 1}:   true,
	{time.January, 2}:   true,
	{time.January, 20}:  true, // День всенародной скорби
	{time.March, 8}:     true,
	{time.March, 20}:    true, // Новруз
	{time.March, 21}:    true,
	{time.March, 22}:    true,
	{time.March, 23}:    true,
	{time.March, 24}:    true,
	{time.May, 9}:       true,
	{time.May, 28}:      true, // День независимости
	{time.June, 15}:     true,
	{time.June, 26}:     true,
	{time.November, 8}:  true, // День Победы
	{time.November, 9}:  true,
	{time.December, 31}: true,
}

// IsHoliday — попадает ли дата в таблицу праздников (по месяцу и числу).
func IsHoliday(d time.Time) bool {
	return holidays[monthDay{d.Month(), d.Day()}]
}
