package service

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/observability"
	"go.uber.org/zap"
)

const defaultProofExt = "png"

// ProofFile is one payment-proof upload as selected by the user.
type ProofFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProofPipeline uploads proof files under their owning transfer.
type ProofPipeline struct {
	blobs  BlobStore
	logger *zap.Logger
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewProofPipeline(blobs BlobStore, logger *zap.Logger) *ProofPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProofPipeline{
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the time source used in object paths.
func (p *ProofPipeline) WithClock(now func() time.Time) *ProofPipeline {
	p.now = now
	return p
}

// WithRandSource replaces the source of the random path suffix.
func (p *ProofPipeline) WithRandSource(src rand.Source) *ProofPipeline {
	p.mu.Lock()
	p.rng = rand.New(src)
	p.mu.Unlock()
	return p
}

// Attach uploads files one at a time in the given order and returns their
// paths in that order. The first failure stops the batch with an
// *domain.UploadError.
func (p *ProofPipeline) Attach(ctx context.Context, ownerID uuid.UUID, files []ProofFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for i, f := range files {
		objectPath := p.objectPath(ownerID, f.Filename)
		if err := p.blobs.Upload(ctx, objectPath, f.ContentType, f.Data); err != nil {
			observability.IncrementProofUpload("failed")
			p.logger.Warn("proof upload failed",
				zap.Error(err),
				zap.String("transfer_id", ownerID.String()),
				zap.Int("index", i),
				zap.String("filename", f.Filename),
			)
			return paths, &domain.UploadError{
				Index:    i,
				Filename: f.Filename,
				Uploaded: append([]string(nil), paths...),
				Err:      err,
			}
		}
		observability.IncrementProofUpload("stored")
		paths = append(paths, objectPath)
	}
	return paths, nil
}

func (p *ProofPipeline) objectPath(ownerID uuid.UUID, filename string) string {
	p.mu.Lock()
	suffix := p.rng.Intn(100000)
	p.mu.Unlock()
	return fmt.Sprintf("%s/%d-%d.%s", ownerID, p.now().UnixMilli(), suffix, proofExt(filename))
}

func proofExt(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return defaultProofExt
	}
	return ext
}
