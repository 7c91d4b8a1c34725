package salary

import (
	"math"
	"strconv"
	"strings"
)

const currencySymbol = "₺"

// FormatCurrency форматирует сумму в турецких лирах для отображения: "₺1.234,56".
// Округление до копеек выполняется только здесь.
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole, frac := cents/100, cents%100
	if whole == 0 && frac == 0 {
		sign = ""
	}
	return sign + currencySymbol + group(whole) + "," + leftPad2(frac)
}

// FormatNumber форматирует целое число с разделителем тысяч ".".
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + group(int64(-n))
	}
	return group(int64(n))
}

func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func leftPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
