package notify

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"storefront-system/internal/models"
)

var adminOrderTmpl = template.Must(template.New("admin_order").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Pesanan Baru #{{.Order.ID}}</h2>
  <table style="width:100%;border-collapse:collapse">
    <tr><td style="padding:6px 0"><b>Produk</b></td><td>{{.Order.ProductName}}</td></tr>
    <tr><td style="padding:6px 0"><b>Kategori</b></td><td>{{.Order.CategoryName}}</td></tr>
    <tr><td style="padding:6px 0"><b>Paket</b></td><td>{{.Order.PackageName}}</td></tr>
    {{if .OriginalPrice}}<tr><td style="padding:6px 0"><b>Harga Asli</b></td><td>{{.OriginalPrice}}</td></tr>{{end}}
    {{if .Discount}}<tr><td style="padding:6px 0"><b>Diskon ({{.PromoCode}})</b></td><td>-{{.Discount}}</td></tr>{{end}}
    <tr><td style="padding:6px 0"><b>Total</b></td><td><b>{{.Price}}</b></td></tr>
    <tr><td style="padding:6px 0"><b>Waktu</b></td><td>{{.OrderTime}}</td></tr>
  </table>
  {{if .UserData}}
  <h3>Data Pembeli</h3>
  <table style="width:100%;border-collapse:collapse">
    {{range .UserData}}<tr><td style="padding:4px 0"><b>{{.Key}}</b></td><td>{{.Value}}</td></tr>{{end}}
  </table>
  {{end}}
  {{if .PaymentProof}}
  <h3>Bukti Pembayaran</h3>
  <p><a href="{{.PaymentProof}}">{{.PaymentProof}}</a></p>
  {{end}}
</div>
`))

var deliveryTmpl = template.Must(template.New("delivery").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2>Pesanan Anda Selesai</h2>
  <p>Terima kasih telah berbelanja di {{.SiteName}}.</p>
  <table style="width:100%;border-collapse:collapse">
    <tr><td style="padding:6px 0"><b>Pesanan</b></td><td>#{{.OrderID}}</td></tr>
    <tr><td style="padding:6px 0"><b>Produk</b></td><td>{{.ProductName}}</td></tr>
    <tr><td style="padding:6px 0"><b>Paket</b></td><td>{{.PackageName}}</td></tr>
  </table>
  <p style="margin-top:20px">
    <a href="{{.DownloadURL}}" style="background:#2563eb;color:#fff;padding:12px 24px;text-decoration:none;border-radius:6px">Unduh File</a>
  </p>
  <p style="color:#666;font-size:12px">Jika tombol tidak bekerja, salin tautan berikut: {{.DownloadURL}}</p>
</div>
`))

type userDataRow struct {
	Key   string
	Value string
}

type adminOrderData struct {
	Order         *models.Order
	Price         string
	OriginalPrice string
	Discount      string
	PromoCode     string
	OrderTime     string
	UserData      []userDataRow
	PaymentProof  string
}

type deliveryData struct {
	SiteName    string
	OrderID     int64
	ProductName string
	PackageName string
	DownloadURL string
}

// RenderAdminOrderEmail строит HTML-уведомление админу о новом заказе.
func RenderAdminOrderEmail(order *models.Order) (subject, body string, err error) {
	data := adminOrderData{
		Order:     order,
		Price:     FormatRupiah(order.Price),
		OrderTime: order.CreatedAt.Format("02/01/2006 15:04"),
		UserData:  sortedUserData(order.UserData),
	}
	if order.OriginalPrice != nil {
		data.OriginalPrice = FormatRupiah(*order.OriginalPrice)
	}
	if order.DiscountAmount != nil && !order.DiscountAmount.IsZero() {
		data.Discount = FormatRupiah(*order.DiscountAmount)
	}
	if order.PromoCode != nil {
		data.PromoCode = *order.PromoCode
	}
	if order.PaymentProof != nil {
		data.PaymentProof = *order.PaymentProof
	}

	var buf strings.Builder
	if err := adminOrderTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render admin order email: %w", err)
	}
	return fmt.Sprintf("Pesanan Baru #%d - %s", order.ID, order.ProductName), buf.String(), nil
}

// RenderDeliveryEmail строит HTML-письмо со ссылкой на скачивание.
func RenderDeliveryEmail(siteName string, order *models.Order, downloadURL string) (subject, body string, err error) {
	data := deliveryData{
		SiteName:    siteName,
		OrderID:     order.ID,
		ProductName: order.ProductName,
		PackageName: order.PackageName,
		DownloadURL: downloadURL,
	}
	var buf strings.Builder
	if err := deliveryTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render delivery email: %w", err)
	}
	return fmt.Sprintf("Pesanan #%d Selesai - %s", order.ID, siteName), buf.String(), nil
}

func sortedUserData(data map[string]string) []userDataRow {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]userDataRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, userDataRow{Key: k, Value: data[k]})
	}
	return rows
}
