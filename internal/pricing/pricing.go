// Package pricing 订单金额计算：小计、运费、税费与总额。
package pricing

import "github.com/shopspring/decimal"

// Line 参与计价的行
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Options 计价参数
type Options struct {
	FreeShippingThreshold decimal.Decimal // 小计严格大于该值时免运费
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal // 仅对小计计税
}

// DefaultOptions 默认计价参数：满 999 免运费，运费 99，税率 18%
func DefaultOptions() Options {
	return Options{
		FreeShippingThreshold: decimal.NewFromInt(999),
		FlatShippingFee:       decimal.NewFromInt(99),
		TaxRate:               decimal.RequireFromString("0.18"),
	}
}

// Totals 计价结果（全精度，展示时再取整）
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal 按快照单价累加
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		sum = sum.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

// ComputeTotals 计算订单金额，Total 恒等于 Subtotal+Shipping+Tax
func ComputeTotals(lines []Line, opts Options) Totals {
	subtotal := Subtotal(lines)
	shipping := decimal.Zero
	if subtotal.IsPositive() && !subtotal.GreaterThan(opts.FreeShippingThreshold) {
		shipping = opts.FlatShippingFee
	}
	tax := subtotal.Mul(opts.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Rounded 返回保留 2 位小数的展示值
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Shipping: t.Shipping.Round(2),
		Tax:      t.Tax.Round(2),
		Total:    t.Total.Round(2),
	}
}
