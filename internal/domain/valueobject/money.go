package valueobject

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Money сумма в долларах. Заявки принимают стоимость только в USD.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func NewMoney(amount float64) Money {
	return Money{Amount: amount, Currency: "USD"}
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseCost разбирает свободно введённую стоимость: убирает "$" и ",",
// берёт самый длинный числовой префикс. Всё, что не разобралось, считается нулём.
func ParseCost(raw string) Money {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(raw)
	cleaned = strings.TrimLeft(cleaned, " \t\n\r\v\f")

	prefix := numericPrefix.FindString(cleaned)
	if prefix == "" {
		return NewMoney(0)
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return NewMoney(0)
	}
	return NewMoney(v)
}

// TotalBudget суммирует строки стоимости с политикой "неразобранное = 0".
func TotalBudget(costs []string) Money {
	var total float64
	for _, c := range costs {
		total += ParseCost(c).Amount
	}
	return NewMoney(total)
}

func (m Money) Add(other Money) Money {
	return NewMoney(m.Amount + other.Amount)
}

// String форматирует как "$1,234.5": группы разрядов, не более трёх знаков после точки.
// Знак ставится перед "$": "-$20".
func (m Money) String() string {
	s := FormatAmount(m.Amount)
	if digits, neg := strings.CutPrefix(s, "-"); neg {
		return "-$" + digits
	}
	return "$" + s
}

// FormatAmount форматирует число с разделителями тысяч.
func FormatAmount(v float64) string {
	v = math.Round(v*1000) / 1000
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
