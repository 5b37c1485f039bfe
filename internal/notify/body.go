package notify

import (
	"fmt"
	"strings"

	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// itemsText flattens the order lines into one row per item, e.g.
// "- Trà Đào (Trà Trái Cây) x2 = 50.000 đ".
func itemsText(items []order.Line) string {
	rows := make([]string, len(items))
	for i, item := range items {
		rows[i] = fmt.Sprintf("- %s (%s) x%d = %s đ",
			item.Name, item.Category, item.Quantity, order.FormatPrice(item.Subtotal()))
	}
	return strings.Join(rows, "\n")
}

// plainBody builds the plain-text notification body sent to the merchant's
// inbox (webhook and SMTP sinks share it).
func plainBody(rec *order.Record) string {
	name := rec.CustomerName
	if name == "" {
		name = "Khách hàng"
	}

	payment := "Chuyển khoản"
	if rec.PaymentMethod == order.PaymentCash {
		payment = "Tiền mặt"
	}

	items := itemsText(rec.Items)
	if items == "" {
		items = "(Không có mặt hàng)"
	}

	lines := []string{
		fmt.Sprintf("Đơn hàng mới từ %s", name),
		fmt.Sprintf("SĐT: %s", rec.Phone),
		fmt.Sprintf("Địa chỉ: %s", rec.Address),
	}
	if rec.Note != "" {
		lines = append(lines, fmt.Sprintf("Ghi chú: %s", rec.Note))
	}
	lines = append(lines,
		fmt.Sprintf("Hình thức thanh toán: %s", payment),
		"",
		"Chi tiết:",
		items,
		"",
		fmt.Sprintf("Tổng tiền: %s đ", order.FormatPrice(rec.Total)),
	)
	if rec.PaymentProofPath != "" {
		lines = append(lines, fmt.Sprintf("Chứng từ lưu tại: %s", rec.PaymentProofPath))
	}
	lines = append(lines, "", "Email tự động từ hệ thống Lolibub.")

	return strings.Join(lines, "\n")
}
