package notify

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-system/internal/models"
)

// DefaultCheckoutTemplate — шаблон сообщения заказа, используется когда
// админ не задал собственный в настройках.
const DefaultCheckoutTemplate = "Halo, saya ingin memesan:\n\n" +
	"*Produk:* {product_name}\n" +
	"*Kategori:* {category_name}\n" +
	"*Paket:* {package_name}\n" +
	"*Harga:* {price}\n\n" +
	"{user_data}\n" +
	"*Waktu:* {order_time}\n\n" +
	"Bukti pembayaran: {payment_proof}"

// CheckoutContext — значения для подстановки в шаблон сообщения.
type CheckoutContext struct {
	ProductName  string
	CategoryName string
	PackageName  string
	Price        decimal.Decimal
	UserData     map[string]string
	PaymentProof string
	OrderTime    time.Time
}

// RenderCheckoutMessage подставляет значения заказа в шаблон. Каждый
// плейсхолдер заменяется во всех местах, где встречается; неизвестные
// плейсхолдеры остаются как есть.
func RenderCheckoutMessage(tmpl string, ctx CheckoutContext) string {
	proof := ctx.PaymentProof
	if proof == "" {
		proof = "-"
	}
	replacer := strings.NewReplacer(
		"{product_name}", ctx.ProductName,
		"{category_name}", ctx.CategoryName,
		"{package_name}", ctx.PackageName,
		"{price}", FormatRupiah(ctx.Price),
		"{user_data}", FormatUserData(ctx.UserData),
		"{payment_proof}", proof,
		"{order_time}", ctx.OrderTime.Format("02/01/2006 15:04"),
	)
	return replacer.Replace(tmpl)
}

// CheckoutContextFromOrder собирает контекст шаблона из заказа.
func CheckoutContextFromOrder(order *models.Order) CheckoutContext {
	ctx := CheckoutContext{
		ProductName:  order.ProductName,
		CategoryName: order.CategoryName,
		PackageName:  order.PackageName,
		Price:        order.Price,
		UserData:     order.UserData,
		OrderTime:    order.CreatedAt,
	}
	if order.PaymentProof != nil {
		ctx.PaymentProof = *order.PaymentProof
	}
	return ctx
}

// FormatRupiah форматирует сумму в индонезийском формате: Rp 100.000.
func FormatRupiah(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	abs := amount.Abs()

	intPart := abs.Truncate(0)
	frac := abs.Sub(intPart)

	digits := intPart.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "Rp " + grouped.String()
	if neg {
		out = "Rp -" + grouped.String()
	}
	if !frac.IsZero() {
		cents := frac.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		out += "," + padCents(cents)
	}
	return out
}

func padCents(cents int64) string {
	if cents < 10 {
		return "0" + decimal.NewFromInt(cents).String()
	}
	return decimal.NewFromInt(cents).String()
}

// FormatUserData превращает данные покупателя в строки вида "*Поле:* значение".
// Ключи сортируются для детерминированного вывода.
func FormatUserData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "*"+k+":* "+data[k])
	}
	return strings.Join(lines, "\n")
}
