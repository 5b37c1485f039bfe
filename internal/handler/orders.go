package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/thetechguyfromvietnam/lolibub/internal/notify"
	"github.com/thetechguyfromvietnam/lolibub/internal/order"
	"github.com/thetechguyfromvietnam/lolibub/internal/storage"
)

// User-facing messages, matching the storefront's language.
const (
	msgInvalidForm    = "Dữ liệu gửi lên không hợp lệ"
	msgInvalidItems   = "Danh sách món không hợp lệ"
	msgEmptyCart      = "Giỏ hàng trống, vui lòng chọn ít nhất một món"
	msgMissingInfo    = "Thông tin đơn hàng không đầy đủ"
	msgProofRequired  = "Vui lòng upload ảnh chứng từ chuyển khoản!"
	msgFileTooLarge   = "Ảnh chứng từ vượt quá dung lượng cho phép (5MB)"
	msgFileType       = "Chỉ chấp nhận file ảnh (JPG, PNG, GIF)"
	msgDeliveryFailed = "Không thể gửi đơn hàng về email nhận thông báo. Vui lòng thử lại sau."
	msgUnexpected     = "Có lỗi xảy ra khi xử lý đơn hàng"
	msgOrderAccepted  = "Đơn hàng đã được gửi thành công! Bếp sẽ xác nhận sau khi kiểm tra chứng từ."
)

// multipart form parsing keeps up to this much in memory before spooling
const multipartMemory = 5 << 20

// Notifier dispatches an accepted order to the configured sinks.
// Satisfied by *notify.Fanout; narrow interface for testability.
type Notifier interface {
	Dispatch(ctx context.Context, rec *order.Record, message string) (notify.Result, error)
}

// ProofStore stores and removes uploaded payment proofs.
// Satisfied by *storage.UploadStore.
type ProofStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, string, error)
	Remove(path string) error
}

// OrderLogger persists accepted orders, best effort.
// Satisfied by *storage.OrderLog.
type OrderLogger interface {
	Write(rec *order.Record) error
}

// OrderHandler handles order submission.
type OrderHandler struct {
	notifier Notifier
	proofs   ProofStore
	orders   OrderLogger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(notifier Notifier, proofs ProofStore, orders OrderLogger) *OrderHandler {
	return &OrderHandler{notifier: notifier, proofs: proofs, orders: orders}
}

// RegisterRoutes registers the order endpoint on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

type orderResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	OrderMessage string `json:"orderMessage"`
	ZaloLink     string `json:"zaloLink,omitempty"`
}

// Create runs the submission pipeline: receive the upload, validate and
// normalize the multipart fields into a typed request, compose the order
// summary, fan out to the notification sinks, log the record, respond.
// An uploaded proof belongs to this request: it survives only a delivered
// order, any later failure removes it.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Field payload on top of the 5MB file cap
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidForm})
		return
	}

	// Receive the payment proof, if any. Size and type are validated
	// before the file is stored.
	var proofName, proofPath string
	file, header, err := r.FormFile("paymentProof")
	switch {
	case err == nil:
		defer file.Close()
		proofName, proofPath, err = h.proofs.Save(file, header)
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgFileTooLarge})
			return
		case errors.Is(err, storage.ErrUnsupportedType):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgFileType})
			return
		case err != nil:
			log.Printf("ERROR: store payment proof: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgUnexpected})
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		// proof is optional at this stage; validation decides below
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidForm})
		return
	}

	// From here on the stored proof must not outlive a failed request.
	fail := func(status int, body interface{}) {
		if proofPath != "" {
			if err := h.proofs.Remove(proofPath); err != nil {
				log.Printf("WARN: remove payment proof %s: %v", proofPath, err)
			}
		}
		writeJSON(w, status, body)
	}

	// Normalize multipart fields into a typed request; nothing downstream
	// sees raw form shapes.
	var items []order.Line
	if err := json.Unmarshal([]byte(r.FormValue("items")), &items); err != nil {
		fail(http.StatusBadRequest, map[string]string{"error": msgInvalidItems})
		return
	}
	if len(items) == 0 {
		fail(http.StatusBadRequest, map[string]string{"error": msgEmptyCart})
		return
	}

	customerName := strings.TrimSpace(r.FormValue("customerName"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	address := strings.TrimSpace(r.FormValue("address"))
	if customerName == "" || phone == "" || address == "" {
		fail(http.StatusBadRequest, map[string]string{"error": msgMissingInfo})
		return
	}

	paymentMethod := order.NormalizePaymentMethod(r.FormValue("paymentMethod"))
	if paymentMethod == order.PaymentBankTransfer && proofPath == "" {
		fail(http.StatusBadRequest, map[string]string{"error": msgProofRequired})
		return
	}

	total, err := parseTotal(r.FormValue("total"), items)
	if err != nil {
		fail(http.StatusBadRequest, map[string]string{"error": msgMissingInfo})
		return
	}

	rec := &order.Record{
		CustomerName:     customerName,
		Phone:            phone,
		Address:          address,
		Note:             strings.TrimSpace(r.FormValue("note")),
		Items:            items,
		Total:            total,
		PaymentMethod:    paymentMethod,
		PaymentProof:     proofName,
		PaymentProofPath: proofPath,
		Timestamp:        time.Now().UTC(),
	}

	message := order.ComposeMessage(rec)

	res, err := h.notifier.Dispatch(r.Context(), rec, message)
	if err != nil {
		log.Printf("ERROR: deliver order notification: %v", err)
		fail(http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   msgDeliveryFailed,
		})
		return
	}

	// Best effort: a failed write never changes the response
	if err := h.orders.Write(rec); err != nil {
		log.Printf("WARN: save order record: %v", err)
	}

	writeJSON(w, http.StatusOK, orderResponse{
		Success:      true,
		Message:      msgOrderAccepted,
		OrderMessage: message,
		ZaloLink:     res.ZaloLink,
	})
}

// parseTotal reads the submitted total, recomputing it from the lines when
// the field is absent.
func parseTotal(raw string, items []order.Line) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.Subtotal())
		}
		return total, nil
	}
	return decimal.NewFromString(raw)
}
