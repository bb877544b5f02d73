// Package remote mirrors the engine snapshot to an S3-compatible document
// store for cross-device sync. The mirror is a thin last-write-wins layer:
// it reads and replaces one JSON document per installation and never
// merges. All failures are soft — a broken mirror degrades to local-only
// operation.
package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/rowanvale/questlog/internal/model"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds S3-compatible storage configuration. A config missing the
// bucket or credentials disables the mirror.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// document is the wire shape: the snapshot plus a lastUpdated metadata
// field the mirror attaches on write. Readers decode straight into
// model.Snapshot, so the metadata never leaks into engine state.
type document struct {
	model.Snapshot
	LastUpdated time.Time `json:"lastUpdated"`
}

// Mirror loads and saves one installation's snapshot document.
type Mirror struct {
	cfg       Config
	installID string
	client    s3Client
	logger    *slog.Logger

	mu       sync.Mutex
	lastHash [sha256.Size]byte
}

// New creates a mirror for the given installation. The returned mirror is
// disabled (every call a soft no-op) when cfg is incomplete.
func New(cfg Config, installID string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mirror{cfg: cfg, installID: installID, logger: logger}
	if cfg.enabled() {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the mirror is configured.
func (m *Mirror) Enabled() bool { return m.client != nil }

func (m *Mirror) key() string {
	return "snapshots/" + m.installID + ".json"
}

// Load fetches the remote snapshot. It returns nil on any error or when no
// document exists yet; callers fall back to local state or defaults.
func (m *Mirror) Load(ctx context.Context) *model.Snapshot {
	if m.client == nil {
		return nil
	}

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(m.key()),
	})
	if err != nil {
		m.logger.Debug("remote load failed", "error", err)
		return nil
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		m.logger.Warn("remote read failed", "error", err)
		return nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		m.logger.Warn("remote document malformed", "error", err)
		return nil
	}
	snap.Normalize()

	m.mu.Lock()
	m.lastHash = sha256.Sum256(stripped(body))
	m.mu.Unlock()
	return &snap
}

// Save uploads the snapshot with a fresh lastUpdated stamp, retrying
// transient failures with fibonacci backoff. Errors are returned so the
// caller can log them; the engine itself never sees them.
func (m *Mirror) Save(ctx context.Context, snap *model.Snapshot) error {
	if m.client == nil {
		return nil
	}

	body, err := json.Marshal(document{Snapshot: *snap, LastUpdated: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.cfg.Bucket),
			Key:         aws.String(m.key()),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}

	// Remember what we wrote so Watch does not echo our own save back.
	plain, err := json.Marshal(snap)
	if err == nil {
		m.mu.Lock()
		m.lastHash = sha256.Sum256(stripped(plain))
		m.mu.Unlock()
	}
	return nil
}

// Watch polls the remote document and invokes callback with each snapshot
// whose content differs from the last one seen or written. It blocks until
// ctx is cancelled.
func (m *Mirror) Watch(ctx context.Context, interval time.Duration, callback func(*model.Snapshot)) {
	if m.client == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if snap := m.poll(ctx); snap != nil {
				callback(snap)
			}
		}
	}
}

// poll fetches the document and returns it only when its content hash
// changed since the last load, save, or poll.
func (m *Mirror) poll(ctx context.Context) *model.Snapshot {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(m.key()),
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.logger.Debug("remote poll failed", "error", err)
		}
		return nil
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil
	}

	hash := sha256.Sum256(stripped(body))
	m.mu.Lock()
	changed := hash != m.lastHash
	if changed {
		m.lastHash = hash
	}
	m.mu.Unlock()
	if !changed {
		return nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		m.logger.Warn("remote document malformed", "error", err)
		return nil
	}
	snap.Normalize()
	return &snap
}

// stripped removes the lastUpdated metadata field before hashing, so a
// rewrite of identical content does not look like a change.
func stripped(body []byte) []byte {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return body
	}
	delete(raw, "lastUpdated")
	out, err := json.Marshal(raw)
	if err != nil {
		return body
	}
	return out
}
