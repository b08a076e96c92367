package handler

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/nileops/remit-console/internal/blob"
	"go.uber.org/zap"
)

// proofTypes are the sniffed content types a proof may be stored as. Anything
// else is served as a download.
var proofTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"application/pdf": true,
}

// sniffProofType detects the type of data from its content, ignoring
// whatever the uploader declared.
func sniffProofType(data []byte) (string, bool) {
	contentType := http.DetectContentType(data)
	return contentType, proofTypes[contentType]
}

// ObjectReader loads stored proof objects.
type ObjectReader interface {
	Get(ctx context.Context, path string) (*blob.Object, error)
}

// ProofHandler serves proof content behind signed links. It needs no staff
// token: the link's own signature is the credential.
type ProofHandler struct {
	signer  *blob.Signer
	objects ObjectReader
}

func NewProofHandler(signer *blob.Signer, objects ObjectReader) *ProofHandler {
	return &ProofHandler{signer: signer, objects: objects}
}

func (h *ProofHandler) Content(w http.ResponseWriter, r *http.Request) {
	objectPath, err := h.signer.Verify(r.URL.Query().Get("token"))
	if err != nil {
		RespondError(w, r, http.StatusForbidden, "proof/invalid-link", "link is invalid or has expired")
		return
	}

	obj, err := h.objects.Get(r.Context(), objectPath)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			RespondError(w, r, http.StatusNotFound, "proof/not-found", "proof not found")
			return
		}
		zap.L().Error("read proof failed", zap.Error(err), zap.String("path", objectPath))
		RespondError(w, r, http.StatusInternalServerError, "store/failure", "could not read proof")
		return
	}

	contentType, disposition := "application/octet-stream", "attachment"
	if mediaType, _, err := mime.ParseMediaType(obj.ContentType); err == nil && proofTypes[mediaType] {
		contentType, disposition = mediaType, "inline"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, path.Base(obj.Path)))
	w.Header().Set("Cache-Control", "private, max-age=0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
