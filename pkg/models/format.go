package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatVolume форматирует объем в миллионах как "$X.YM"
func FormatVolume(millions float64) string {
	return "$" + decimal.NewFromFloat(millions).StringFixed(1) + "M"
}

// FormatNextFunding форматирует время до следующего фандинга как "Hh Mm"
func FormatNextFunding(hours, minutes int) string {
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatRate переводит долю в проценты с заданной точностью: 0.0012 -> "0.1200%"
func FormatRate(fraction float64, places int32) string {
	return decimal.NewFromFloat(fraction).Shift(2).StringFixed(places) + "%"
}

// FormatPercent форматирует значение, уже выраженное в процентах
func FormatPercent(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places) + "%"
}

// FormatSignedPercent как FormatPercent, но с явным "+" для неотрицательных значений
func FormatSignedPercent(value float64, places int32) string {
	s := FormatPercent(value, places)
	if !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}
