package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	payloadField = "payload"
	proofField   = "proof"
)

type TransferHandler struct {
	svc          *service.TransferService
	maxFiles     int
	maxFileBytes int64
}

func NewTransferHandler(svc *service.TransferService, maxFiles int, maxFileBytes int64) *TransferHandler {
	return &TransferHandler{svc: svc, maxFiles: maxFiles, maxFileBytes: maxFileBytes}
}

// MaxRequestBytes is the largest creation request the handler accepts.
func (h *TransferHandler) MaxRequestBytes() int64 {
	return int64(h.maxFiles)*h.maxFileBytes + maxJSONBody
}

type transferRequest struct {
	ClientID            string       `json:"client_id"`
	SendCountry         string       `json:"send_country"`
	ReceiveCountry      string       `json:"receive_country"`
	SendAmount          looseDecimal `json:"send_amount"`
	ManualRate          looseDecimal `json:"manual_rate"`
	PaymentMethod       string       `json:"payment_method"`
	ReceiverName        string       `json:"receiver_name"`
	ReceiverContactType string       `json:"receiver_contact_type"`
	ReceiverPhone       string       `json:"receiver_phone"`
	ReceiverBankAccount string       `json:"receiver_bank_account"`
	InternalNote        string       `json:"internal_note"`
}

// input converts the request. An unparseable client id becomes uuid.Nil so
// the pricing engine reports it like a missing selection.
func (req transferRequest) input() service.TransferInput {
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		clientID = uuid.Nil
	}
	return service.TransferInput{
		ClientID:            clientID,
		SendCountry:         req.SendCountry,
		ReceiveCountry:      req.ReceiveCountry,
		SendAmount:          req.SendAmount.value(),
		ManualRate:          req.ManualRate.ptr(),
		PaymentMethod:       req.PaymentMethod,
		ReceiverName:        req.ReceiverName,
		ReceiverContactType: req.ReceiverContactType,
		ReceiverPhone:       req.ReceiverPhone,
		ReceiverBankAccount: req.ReceiverBankAccount,
		InternalNote:        req.InternalNote,
	}
}

type quoteResponse struct {
	SendCountry     string          `json:"send_country"`
	ReceiveCountry  string          `json:"receive_country"`
	SendAmount      decimal.Decimal `json:"send_amount"`
	SendCurrency    string          `json:"send_currency"`
	ReceiveAmount   decimal.Decimal `json:"receive_amount"`
	ReceiveCurrency string          `json:"receive_currency"`
	Rate            decimal.Decimal `json:"rate"`
	RateSource      string          `json:"rate_source"`
	Summary         string          `json:"summary"`
	displayAmounts
}

// displayAmounts are the rounded figures staff see. The raw fields keep full
// precision.
type displayAmounts struct {
	DisplaySendAmount    string `json:"display_send_amount"`
	DisplayReceiveAmount string `json:"display_receive_amount"`
	DisplayRate          string `json:"display_rate"`
}

func newDisplayAmounts(send, receive, rate decimal.Decimal) displayAmounts {
	return displayAmounts{
		DisplaySendAmount:    domain.FormatAmount(send),
		DisplayReceiveAmount: domain.FormatAmount(receive),
		DisplayRate:          domain.FormatRate(rate),
	}
}

type transferView struct {
	*models.Transfer
	ProofPaths []string `json:"proof_paths"`
	displayAmounts
}

func newTransferView(t *models.Transfer) transferView {
	paths := domain.DecodeProofPaths(t.ProofPath)
	if paths == nil {
		paths = []string{}
	}
	return transferView{
		Transfer:       t,
		ProofPaths:     paths,
		displayAmounts: newDisplayAmounts(t.SendAmount, t.ReceiveAmount, t.Rate),
	}
}

// QuoteTransfer prices a draft transfer without saving it.
func (h *TransferHandler) QuoteTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := h.svc.Quote(r.Context(), req.input())
	if err != nil {
		respondServiceError(w, r, "transfer", err)
		return
	}

	send := domain.NewMoney(q.SendAmount, q.SendCurrency)
	receive := domain.NewMoney(q.ReceiveAmount, q.ReceiveCurrency)
	RespondJSON(w, http.StatusOK, quoteResponse{
		SendCountry:     q.SendCountry,
		ReceiveCountry:  q.ReceiveCountry,
		SendAmount:      q.SendAmount,
		SendCurrency:    q.SendCurrency,
		ReceiveAmount:   q.ReceiveAmount,
		ReceiveCurrency: q.ReceiveCurrency,
		Rate:            q.Rate,
		RateSource:      string(q.RateSource),
		Summary:         fmt.Sprintf("%s = %s @ %s", send, receive, domain.FormatRate(q.Rate)),
		displayAmounts:  newDisplayAmounts(q.SendAmount, q.ReceiveAmount, q.Rate),
	})
}

// CreateTransfer accepts either a JSON body or a multipart form holding a
// JSON "payload" field and repeated "proof" files.
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	req, files, ok := h.parseCreate(w, r)
	if !ok {
		return
	}

	transfer, err := h.svc.Create(r.Context(), req.input(), files)
	if err != nil {
		if transfer == nil {
			respondServiceError(w, r, "transfer", err)
			return
		}
		zap.L().Warn("transfer saved without proofs",
			zap.Error(err),
			zap.String("order_ref", transfer.OrderRef),
			zap.String("transfer_id", transfer.ID.String()),
		)
		var uerr *domain.UploadError
		detail := fmt.Sprintf("transfer %s was saved without proofs: %v", transfer.OrderRef, err)
		if errors.As(err, &uerr) {
			RespondError(w, r, http.StatusBadGateway, "transfer/proof-upload-failed", detail)
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "store/failure", detail)
		return
	}

	RespondJSON(w, http.StatusCreated, newTransferView(transfer))
}

func (h *TransferHandler) parseCreate(w http.ResponseWriter, r *http.Request) (transferRequest, []service.ProofFile, bool) {
	var req transferRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return req, nil, decodeJSON(w, r, &req)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxRequestBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-multipart", fmt.Sprintf("Invalid multipart form: %v", err))
		return req, nil, false
	}
	defer r.MultipartForm.RemoveAll()

	payload := r.MultipartForm.Value[payloadField]
	if len(payload) != 1 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-multipart", "exactly one payload field is required")
		return req, nil, false
	}
	if err := decodeStrict(payload[0], &req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", fmt.Sprintf("Invalid payload: %v", err))
		return req, nil, false
	}

	headers := r.MultipartForm.File[proofField]
	if len(headers) > h.maxFiles {
		RespondError(w, r, http.StatusBadRequest, "transfer/too-many-proofs", fmt.Sprintf("at most %d proof files are allowed", h.maxFiles))
		return req, nil, false
	}

	files := make([]service.ProofFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxFileBytes {
			RespondError(w, r, http.StatusRequestEntityTooLarge, "transfer/proof-too-large", fmt.Sprintf("%s exceeds %d bytes", fh.Filename, h.maxFileBytes))
			return req, nil, false
		}
		f, err := fh.Open()
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-multipart", fmt.Sprintf("cannot read %s", fh.Filename))
			return req, nil, false
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-multipart", fmt.Sprintf("cannot read %s", fh.Filename))
			return req, nil, false
		}
		contentType, ok := sniffProofType(data)
		if !ok {
			RespondError(w, r, http.StatusUnprocessableEntity, "transfer/proof-unsupported-type", fmt.Sprintf("%s is %s; proofs must be images or PDF", fh.Filename, contentType))
			return req, nil, false
		}
		files = append(files, service.ProofFile{Filename: fh.Filename, ContentType: contentType, Data: data})
	}
	return req, files, true
}

func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	transfer, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "transfer", err)
		return
	}
	RespondJSON(w, http.StatusOK, newTransferView(transfer))
}

func (h *TransferHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	filter := models.TransferFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  intQuery(r, "limit"),
		Offset: intQuery(r, "offset"),
	}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-client_id", "Invalid client_id")
			return
		}
		filter.ClientID = &clientID
	}

	rows, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, "transfer", err)
		return
	}
	views := make([]transferView, 0, len(rows))
	for i := range rows {
		views = append(views, newTransferView(&rows[i]))
	}
	RespondJSON(w, http.StatusOK, map[string]any{"transfers": views})
}

// ListProofs returns numbered, signed links to a transfer's proofs.
func (h *TransferHandler) ListProofs(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	links, err := h.svc.ProofLinks(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "transfer", err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"proofs": links})
}

func (h *TransferHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	transfer, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, r, "transfer", err)
		return
	}
	RespondJSON(w, http.StatusOK, newTransferView(transfer))
}
