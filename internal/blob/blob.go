// Package blob stores payment-proof objects and issues time-limited links to them.
package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrObjectExists   = errors.New("blob: object already exists")
	ErrObjectNotFound = errors.New("blob: object not found")
	ErrInvalidPath    = errors.New("blob: invalid object path")
)

// Object is a stored proof file.
type Object struct {
	Path        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps objects in the proof_objects table. The path is the
// primary key, so a second upload to the same path fails.
type PostgresStore struct {
	db      dbtx
	signer  *Signer
	baseURL string
}

func NewPostgresStore(db dbtx, signer *Signer, baseURL string) *PostgresStore {
	return &PostgresStore{db: db, signer: signer, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *PostgresStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	tag, err := s.db.Exec(ctx,
		`INSERT INTO proof_objects (path, content_type, size_bytes, data, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (path) DO NOTHING`,
		path, contentType, int64(len(data)), data)
	if err != nil {
		return fmt.Errorf("store object %s: %w", path, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrObjectExists, path)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, path string) (*Object, error) {
	var obj Object
	err := s.db.QueryRow(ctx,
		`SELECT path, content_type, data, created_at FROM proof_objects WHERE path = $1`, path,
	).Scan(&obj.Path, &obj.ContentType, &obj.Data, &obj.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return &obj, nil
}

// SignedURL returns a link to the content endpoint that stays valid for ttl.
func (s *PostgresStore) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return SignedContentURL(s.signer, s.baseURL, path, ttl)
}

// SignedContentURL builds the public content link for path.
func SignedContentURL(signer *Signer, baseURL, path string, ttl time.Duration) (string, error) {
	token, err := signer.Sign(path, ttl)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s?token=%s", strings.TrimRight(baseURL, "/"), ContentRoute, url.QueryEscape(token)), nil
}

// ContentRoute is where signed links point.
const ContentRoute = "/v1/proofs/content"

// ValidatePath rejects paths that are empty, absolute or escape their owner
// directory.
func ValidatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "..") || strings.Contains(path, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
