package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"insight/internal/database/dbtest"
	"insight/internal/model"
	"insight/internal/repository"
	"insight/pkg/jwt"
)

const testShareSecret = "0123456789abcdef0123456789abcdef"

func newShareFixture(t *testing.T, expire time.Duration, store ShareRevocationStore) (*ShareService, *ConversationService, *recordingNotifier) {
	t.Helper()
	db := dbtest.Open(t)
	convRepo := repository.NewConversationRepository(db)
	conversations := NewConversationService(convRepo, repository.NewMessageRepository(db), &fakeReader{}, &fakeAnalyzer{})

	notifier := &recordingNotifier{}
	shares := NewShareService(convRepo, jwt.NewShareTokenService(testShareSecret, expire), store)
	shares.SetNotifier(notifier)
	return shares, conversations, notifier
}

func createConversation(t *testing.T, svc *ConversationService) uuid.UUID {
	t.Helper()
	resp, err := svc.Analyze(context.Background(), &AnalyzeRequest{URL: "https://example.com", InitialThought: "hmm"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return resp.ConversationID
}

func TestShare_ResolveAndRevoke(t *testing.T) {
	store := newMemoryRevocations()
	shares, conversations, notifier := newShareFixture(t, time.Hour, store)
	ctx := context.Background()
	id := createConversation(t, conversations)

	share, err := shares.Share(ctx, id)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if share.ShareURL != "/share/"+share.Token || !strings.HasPrefix(share.ShareURL, SharePathPrefix) {
		t.Fatalf("share url = %q", share.ShareURL)
	}
	if notifier.types()[0] != model.EventConversationShared {
		t.Fatalf("events = %v", notifier.types())
	}

	detail, err := shares.Resolve(ctx, share.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if detail.Conversation.ID != id || len(detail.Messages) != 2 {
		t.Fatalf("detail = %+v", detail)
	}

	if err := shares.Revoke(ctx, share.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := shares.Resolve(ctx, share.Token); !errors.Is(err, ErrShareRevoked) {
		t.Fatalf("after revoke: err = %v", err)
	}
	for _, exp := range store.revoked {
		if !exp.Equal(share.ExpiresAt) {
			t.Fatalf("revocation kept until %v, want %v", exp, share.ExpiresAt)
		}
	}
}

func TestShare_Errors(t *testing.T) {
	shares, conversations, _ := newShareFixture(t, time.Hour, nil)
	ctx := context.Background()

	if _, err := shares.Share(ctx, uuid.New()); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("missing conversation: err = %v", err)
	}
	if _, err := shares.Resolve(ctx, "garbage"); !errors.Is(err, ErrShareInvalid) {
		t.Fatalf("garbage token: err = %v", err)
	}

	share, _ := shares.Share(ctx, createConversation(t, conversations))
	if err := shares.Revoke(ctx, share.Token); !errors.Is(err, ErrRevocationUnavailable) {
		t.Fatalf("revoke without store: err = %v", err)
	}
	// 没有撤销列表时仍然可以打开
	if _, err := shares.Resolve(ctx, share.Token); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestShare_Expired(t *testing.T) {
	shares, conversations, _ := newShareFixture(t, -time.Minute, newMemoryRevocations())
	share, err := shares.Share(context.Background(), createConversation(t, conversations))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := shares.Resolve(context.Background(), share.Token); !errors.Is(err, ErrShareExpired) {
		t.Fatalf("err = %v, want ErrShareExpired", err)
	}
}

func TestShare_RevocationStoreErrorFailsClosed(t *testing.T) {
	store := newMemoryRevocations()
	shares, conversations, _ := newShareFixture(t, time.Hour, store)
	share, _ := shares.Share(context.Background(), createConversation(t, conversations))

	store.err = errBoom
	if _, err := shares.Resolve(context.Background(), share.Token); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}
}
