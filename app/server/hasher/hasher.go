// Package hasher turns plaintext passwords into self-contained, salted hashes
// and checks plaintexts against them.
package hasher

import (
	"catalog-service/app/server/config"
	"context"
	"errors"
	"fmt"
	"github.com/alexedwards/argon2id"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
	"runtime"
	"strings"
)

var ErrInvalidInput = errors.New("password is required")

type Options struct {
	Algorithm   string // config.HashArgon2id 或 config.HashBcrypt
	Cost        int    // bcrypt cost / argon2id iterations, 0 使用默认值
	Concurrency int    // 同时进行的哈希计算数量, 0 使用 CPU 数量
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Algorithm:   cfg.HashAlgorithm,
		Cost:        cfg.HashCost,
		Concurrency: cfg.HashConcurrency,
	}
}

type Hasher struct {
	l         *zap.Logger
	algorithm string
	bcost     int
	params    argon2id.Params
	sem       *semaphore.Weighted // argon2id 每次计算占用 64 MiB 内存，需要限制并发
}

func New(l *zap.Logger, opts Options) (*Hasher, error) {
	h := &Hasher{
		l:         l,
		algorithm: opts.Algorithm,
		bcost:     bcrypt.DefaultCost,
		params:    *argon2id.DefaultParams,
	}

	switch opts.Algorithm {
	case config.HashArgon2id:
		if opts.Cost > 0 {
			h.params.Iterations = uint32(opts.Cost)
		}
	case config.HashBcrypt:
		if opts.Cost > 0 {
			if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
				return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
			}
			h.bcost = opts.Cost
		}
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", opts.Algorithm)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	h.sem = semaphore.NewWeighted(int64(concurrency))

	return h, nil
}

// Hash returns a salted hash of plaintext. Two calls with the same input
// yield different strings.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrInvalidInput
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	switch h.algorithm {
	case config.HashBcrypt:
		hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcost)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(hashed), nil
	default:
		hashed, err := argon2id.CreateHash(plaintext, &h.params)
		if err != nil {
			return "", fmt.Errorf("argon2id hash: %w", err)
		}
		return hashed, nil
	}
}

// Verify reports whether plaintext matches hashed. It never fails: empty
// input, unknown formats and internal errors all yield false.
//
// Both argon2id and bcrypt hashes are accepted regardless of the configured
// algorithm, so accounts created under another setting keep working.
func (h *Hasher) Verify(ctx context.Context, plaintext string, hashed string) bool {
	if plaintext == "" || hashed == "" {
		return false
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		h.l.Warn("verify password aborted", zap.Error(err))
		return false
	}
	defer h.sem.Release(1)

	switch {
	case strings.HasPrefix(hashed, "$argon2id$"):
		match, _, err := argon2id.CheckHash(plaintext, hashed)
		if err != nil {
			h.l.Error("failed to check argon2id hash", zap.Error(err))
			return false
		}
		return match
	case isBcrypt(hashed):
		err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
		if err == nil {
			return true
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.l.Error("failed to check bcrypt hash", zap.Error(err))
		}
		return false
	default:
		h.l.Error("unrecognized password hash format")
		return false
	}
}

func isBcrypt(hashed string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hashed, prefix) {
			return true
		}
	}
	return false
}
