package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"insight/internal/database/dbtest"
	"insight/internal/model"
	"insight/internal/repository"
)

func strPtr(s string) *string { return &s }

func newConversation() *model.Conversation {
	return &model.Conversation{
		URL:         "https://example.com/post",
		MediaType:   model.MediaTypeWebpage,
		UserInsight: strPtr("this seems off"),
		AIAnalysis:  strPtr("here is why"),
		WorldModel: datatypes.NewJSONType(model.WorldModel{
			Context:   map[string]string{"claim": "unverified"},
			Topics:    []string{"media"},
			Questions: []string{"who wrote it?"},
			Summary:   "a post",
		}),
	}
}

func TestMessageCreate_UnknownConversationFails(t *testing.T) {
	db := dbtest.Open(t)
	messages := repository.NewMessageRepository(db)

	err := messages.Create(context.Background(), &model.Message{
		ConversationID: uuid.New(),
		Role:           model.MessageRoleUser,
		Content:        "orphan",
	})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}

	var count int64
	db.Model(&model.Message{}).Count(&count)
	if count != 0 {
		t.Fatalf("orphan message stored: count=%d", count)
	}
}

func TestConversationCreate_RoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewConversationRepository(db)
	ctx := context.Background()

	conv := newConversation()
	if err := repo.Create(ctx, conv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.ID == uuid.Nil {
		t.Fatal("id not assigned")
	}

	got, err := repo.GetByID(ctx, conv.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v, %v", got, err)
	}
	if got.URL != conv.URL || got.MediaType != conv.MediaType {
		t.Fatalf("url/media mismatch: %+v", got)
	}
	if *got.UserInsight != *conv.UserInsight || *got.AIAnalysis != *conv.AIAnalysis {
		t.Fatalf("insight/analysis mismatch: %+v", got)
	}
	wm := got.WorldModel.Data()
	if wm.Summary != "a post" || wm.Context["claim"] != "unverified" || len(wm.Topics) != 1 || wm.Questions[0] != "who wrote it?" {
		t.Fatalf("world model mismatch: %+v", wm)
	}
}

func TestConversationGetByID_NotFound(t *testing.T) {
	repo := repository.NewConversationRepository(dbtest.Open(t))

	got, err := repo.GetByID(context.Background(), uuid.New())
	if err != nil || got != nil {
		t.Fatalf("GetByID(unknown) = %v, %v; want nil, nil", got, err)
	}
	ok, err := repo.Exists(context.Background(), uuid.New())
	if err != nil || ok {
		t.Fatalf("Exists(unknown) = %v, %v", ok, err)
	}
}

func TestMessages_InsertionOrder(t *testing.T) {
	db := dbtest.Open(t)
	convs := repository.NewConversationRepository(db)
	msgs := repository.NewMessageRepository(db)
	ctx := context.Background()

	conv := newConversation()
	if err := convs.Create(ctx, conv); err != nil {
		t.Fatal(err)
	}

	// 同一批写入，时间戳可能落在同一时刻
	batch := []model.Message{
		{Role: model.MessageRoleUser, Content: "first"},
		{Role: model.MessageRoleAssistant, Content: "second"},
	}
	if err := msgs.CreateBatch(ctx, conv.ID, batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := msgs.Create(ctx, &model.Message{ConversationID: conv.ID, Role: model.MessageRoleUser, Content: "third"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := msgs.GetByConversationID(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Content != w {
			t.Fatalf("message %d = %q, want %q", i, got[i].Content, w)
		}
	}

	withMsgs, err := convs.GetByIDWithMessages(ctx, conv.ID)
	if err != nil || withMsgs == nil {
		t.Fatalf("GetByIDWithMessages: %v", err)
	}
	if len(withMsgs.Messages) != 3 || withMsgs.Messages[0].Content != "first" || withMsgs.Messages[2].Content != "third" {
		t.Fatalf("preloaded order wrong: %+v", withMsgs.Messages)
	}
	if n, _ := msgs.CountByConversationID(ctx, conv.ID); n != 3 {
		t.Fatalf("count = %d", n)
	}
}

func TestCreateWithMessages_RollsBackOnFailure(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewConversationRepository(db)
	ctx := context.Background()

	existing := newConversation()
	if err := repo.Create(ctx, existing); err != nil {
		t.Fatal(err)
	}

	// 复用已存在的主键让会话插入失败
	dup := newConversation()
	dup.ID = existing.ID
	err := repo.CreateWithMessages(ctx, dup, []model.Message{{Role: model.MessageRoleUser, Content: "x"}})
	if err == nil {
		t.Fatal("expected duplicate key error")
	}

	var count int64
	db.Model(&model.Message{}).Count(&count)
	if count != 0 {
		t.Fatalf("messages written despite rollback: %d", count)
	}
}

func TestAppendTurn(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewConversationRepository(db)
	ctx := context.Background()

	conv := newConversation()
	if err := repo.CreateWithMessages(ctx, conv, []model.Message{
		{Role: model.MessageRoleUser, Content: "q1"},
		{Role: model.MessageRoleAssistant, Content: "a1"},
	}); err != nil {
		t.Fatal(err)
	}

	updated := model.WorldModel{Summary: "refined", Topics: []string{"media", "sources"}}
	if err := repo.AppendTurn(ctx, conv.ID, updated, []model.Message{
		{Role: model.MessageRoleUser, Content: "q2"},
		{Role: model.MessageRoleAssistant, Content: "a2"},
	}); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	got, err := repo.GetByIDWithMessages(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.WorldModel.Data().Summary != "refined" {
		t.Fatalf("world model not updated: %+v", got.WorldModel.Data())
	}
	if got.WorldModel.Data().Context == nil {
		t.Fatal("world model context should be normalized to an empty map")
	}
	var contents []string
	for _, m := range got.Messages {
		contents = append(contents, m.Content)
	}
	if len(contents) != 4 || contents[0] != "q1" || contents[3] != "a2" {
		t.Fatalf("messages = %v", contents)
	}

	err = repo.AppendTurn(ctx, uuid.New(), updated, []model.Message{{Role: model.MessageRoleUser, Content: "lost"}})
	if err != repository.ErrConversationMissing {
		t.Fatalf("AppendTurn(unknown) = %v, want ErrConversationMissing", err)
	}
}

func TestWebhookRepository_ListByEvent(t *testing.T) {
	repo := repository.NewWebhookRepository(dbtest.Open(t))
	ctx := context.Background()

	a := &model.Webhook{URL: "https://a.test/hook", Secret: "s1", Events: datatypes.JSONSlice[string]{model.EventMessageCreated}}
	b := &model.Webhook{URL: "https://b.test/hook", Secret: "s2", Events: datatypes.JSONSlice[string]{model.EventConversationCreated, model.EventMessageCreated}}
	for _, w := range []*model.Webhook{a, b} {
		if err := repo.Create(ctx, w); err != nil {
			t.Fatal(err)
		}
	}

	created, err := repo.ListByEvent(ctx, model.EventConversationCreated)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 || created[0].ID != b.ID {
		t.Fatalf("ListByEvent(conversation.created) = %+v", created)
	}

	all, _ := repo.ListByEvent(ctx, model.EventMessageCreated)
	if len(all) != 2 {
		t.Fatalf("ListByEvent(message.created) returned %d", len(all))
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil || got == nil || got.Secret != "s1" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
}
