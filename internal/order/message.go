package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ComposeMessage renders the canonical human-readable order summary that is
// sent to every notification sink. Pure and deterministic: the acceptance
// timestamp is not part of the message, so the same record always yields the
// same string.
func ComposeMessage(rec *Record) string {
	var sb strings.Builder

	sb.WriteString("🍹 *ĐƠN HÀNG LOLI BUB*\n\n")
	sb.WriteString(fmt.Sprintf("👤 *Khách hàng:* %s\n", rec.CustomerName))
	sb.WriteString(fmt.Sprintf("📞 *SĐT:* %s\n", rec.Phone))
	sb.WriteString(fmt.Sprintf("📍 *Địa chỉ:* %s\n\n", rec.Address))

	if rec.Note != "" {
		sb.WriteString(fmt.Sprintf("📝 *Ghi chú:* %s\n\n", rec.Note))
	}

	paymentLabel := "Chuyển khoản"
	if rec.PaymentMethod == PaymentCash {
		paymentLabel = "Tiền mặt khi nhận hàng"
	}
	sb.WriteString(fmt.Sprintf("💳 *Thanh toán:* %s\n", paymentLabel))

	sb.WriteString("📋 *Chi tiết đơn hàng:*\n")
	for i, item := range rec.Items {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, item.Name, item.Category))
		sb.WriteString(fmt.Sprintf("   Số lượng: %d x %s đ = %s đ\n",
			item.Quantity, FormatPrice(item.Price), FormatPrice(item.Subtotal())))
	}

	sb.WriteString(fmt.Sprintf("\n💰 *Tổng tiền:* %s đ\n\n", FormatPrice(rec.Total)))

	if rec.PaymentMethod == PaymentBankTransfer && rec.PaymentProof != "" {
		sb.WriteString("✅ *Đã nhận chứng từ chuyển khoản*\n")
		sb.WriteString(fmt.Sprintf("📎 File: %s\n\n", rec.PaymentProof))
	}

	if rec.PaymentMethod == PaymentCash {
		sb.WriteString("💵 *Thu tiền mặt khi giao hàng*\n\n")
	}

	sb.WriteString("_Đơn hàng được đặt qua website_")

	return sb.String()
}

// FormatPrice formats an amount as a grouped integer the way vi-VN renders
// currency: dot thousands separators, no decimals (25000 → "25.000").
// Every price shown to the customer or the merchant goes through here.
func FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(0)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
		if len(s) > lead {
			sb.WriteByte('.')
		}
	}
	for i := lead; i < len(s); i += 3 {
		sb.WriteString(s[i : i+3])
		if i+3 < len(s) {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
