package service

import (
	"context"
	"sync"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/codec"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"go.uber.org/zap"
)

// seal encrypts the vault-tagged fields of ptr. A nil session stores values
// as given.
func seal(ctx context.Context, ptr any, sess *crypto.Session) error {
	if sess == nil {
		return nil
	}
	return codec.EncryptStruct(ctx, ptr, sess)
}

// open decrypts the vault-tagged fields of ptr in place. Fields that cannot
// be opened come back as null; the failure is only logged.
func open(ctx context.Context, ptr any, sess *crypto.Session, log *zap.Logger, id string) {
	if sess == nil {
		return
	}
	if err := codec.DecryptStruct(ctx, ptr, sess); err != nil {
		log.Debug("fields could not be decrypted",
			zap.String("id", id),
			zap.Strings("fields", codec.FailedFields(err)),
			zap.Error(err))
	}
}

// openEach decrypts every element concurrently. Key derivation is still
// bounded by the session's pool.
func openEach[T any](ctx context.Context, items []T, sess *crypto.Session, log *zap.Logger, id func(*T) string) {
	if sess == nil {
		return
	}
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			open(ctx, &items[i], sess, log, id(&items[i]))
		}()
	}
	wg.Wait()
}
