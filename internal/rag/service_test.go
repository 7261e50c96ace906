package rag

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/docuscan/internal/ai"
	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

type fakeRAGStore struct {
	docs          []models.RAGDocument
	conversations map[uuid.UUID]*models.Conversation
	messages      []models.Message
}

func newFakeRAGStore() *fakeRAGStore {
	return &fakeRAGStore{conversations: make(map[uuid.UUID]*models.Conversation)}
}

func (f *fakeRAGStore) InsertDocument(_ context.Context, doc *models.RAGDocument) error {
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeRAGStore) ListDocuments(_ context.Context, userID uuid.UUID, _, _ int) ([]models.RAGDocument, error) {
	return f.userDocs(userID), nil
}

func (f *fakeRAGStore) RecentDocuments(_ context.Context, userID uuid.UUID, limit int) ([]models.RAGDocument, error) {
	docs := f.userDocs(userID)
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (f *fakeRAGStore) userDocs(userID uuid.UUID) []models.RAGDocument {
	var out []models.RAGDocument
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeRAGStore) DeleteDocument(_ context.Context, id, userID uuid.UUID) error {
	for i, d := range f.docs {
		if d.ID == id && d.UserID == userID {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRAGStore) CreateConversation(_ context.Context, c *models.Conversation) error {
	cp := *c
	f.conversations[c.ID] = &cp
	return nil
}

func (f *fakeRAGStore) GetConversation(_ context.Context, id, userID uuid.UUID) (*models.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRAGStore) ListConversations(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRAGStore) AppendMessage(_ context.Context, m *models.Message) error {
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeRAGStore) ListMessages(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeGateway struct {
	chatCalls  int
	embedCalls int
	embedErr   error
	answer     string
}

func (f *fakeGateway) Chat(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	f.chatCalls++
	return &ai.ChatResponse{Content: f.answer}, nil
}

func (f *fakeGateway) Vision(context.Context, ai.VisionRequest) (*ai.ChatResponse, error) {
	return nil, ai.ErrUnsupported
}

func (f *fakeGateway) Embed(_ context.Context, input []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(input))
	for i := range input {
		out[i] = []float32{0.5, 0.5}
	}
	return out, nil
}

func proUser() *models.User {
	return &models.User{ID: uuid.New(), Tier: models.TierProfessional, Credits: 500}
}

func seedDoc(store *fakeRAGStore, userID uuid.UUID, name, content string, age time.Duration) uuid.UUID {
	id := uuid.New()
	store.docs = append(store.docs, models.RAGDocument{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: time.Now().Add(-age),
	})
	return id
}

func TestQueryGateRunsBeforeAnyModelCall(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{answer: "x"}
	svc := NewService(store, gw, "chat-model")

	starter := &models.User{ID: uuid.New(), Tier: models.TierStarter, Credits: 100}
	_, err := svc.Query(context.Background(), starter, "what is the total?", nil, 0)
	require.Error(t, err)
	require.Equal(t, 403, apierror.From(err).Status)
	require.Equal(t, 0, gw.chatCalls)
	require.Equal(t, 0, gw.embedCalls)
}

func TestQueryRanksAndKeepsTopThree(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{answer: "the total is 42"}
	svc := NewService(store, gw, "chat-model")
	u := proUser()

	best := seedDoc(store, u.ID, "invoice", "invoice total amount due", 0)
	seedDoc(store, u.ID, "contract", "contract terms and conditions", time.Hour)
	seedDoc(store, u.ID, "memo", "unrelated memo about lunch", 2*time.Hour)
	seedDoc(store, u.ID, "notes", "random notes entirely off topic", 3*time.Hour)

	res, err := svc.Query(context.Background(), u, "invoice total amount", nil, 0)
	require.NoError(t, err)
	require.Equal(t, "the total is 42", res.Answer)
	require.Len(t, res.Sources, 3)
	require.Equal(t, best, res.Sources[0].ID, "highest-overlap document ranks first")
	require.Greater(t, res.Sources[0].Score, res.Sources[1].Score)
	require.Equal(t, 1, gw.chatCalls)
}

func TestQueryCreatesConversationTitledFromQuery(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{answer: "answer"}
	svc := NewService(store, gw, "chat-model")
	u := proUser()
	seedDoc(store, u.ID, "doc", "some content", 0)

	longQuery := strings.Repeat("q", 150)
	res, err := svc.Query(context.Background(), u, longQuery, nil, 0)
	require.NoError(t, err)

	conv, ok := store.conversations[res.ConversationID]
	require.True(t, ok)
	require.Len(t, conv.Title, 100)

	msgs, err := store.ListMessages(context.Background(), res.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, models.MessageRoleUser, msgs[0].Role)
	require.Equal(t, models.MessageRoleAssistant, msgs[1].Role)
	require.NotEmpty(t, msgs[1].SourceIDs)
}

func TestQueryArabicTitleStaysValidUTF8(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{answer: "answer"}
	svc := NewService(store, gw, "chat-model")
	u := proUser()
	seedDoc(store, u.ID, "doc", "some content", 0)

	// 61 runes but 121 bytes; a byte-indexed cut at 100 would split a rune.
	question := "a" + strings.Repeat("س", 60)
	res, err := svc.Query(context.Background(), u, question, nil, 0)
	require.NoError(t, err)

	conv := store.conversations[res.ConversationID]
	require.True(t, utf8.ValidString(conv.Title))
	require.Equal(t, question, conv.Title, "under the rune limit, the title keeps the whole question")

	// Over the limit the title is cut to whole characters.
	long := strings.Repeat("س", 150)
	res, err = svc.Query(context.Background(), u, long, nil, 0)
	require.NoError(t, err)
	conv = store.conversations[res.ConversationID]
	require.True(t, utf8.ValidString(conv.Title))
	require.Equal(t, 100, utf8.RuneCountInString(conv.Title))
}

func TestQueryAppendsToExistingConversation(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{answer: "answer"}
	svc := NewService(store, gw, "chat-model")
	u := proUser()
	seedDoc(store, u.ID, "doc", "content words", 0)

	first, err := svc.Query(context.Background(), u, "content words?", nil, 0)
	require.NoError(t, err)

	second, err := svc.Query(context.Background(), u, "follow up", &first.ConversationID, 0)
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)

	msgs, err := store.ListMessages(context.Background(), first.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
}

func TestQueryRejectsForeignConversation(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{answer: "answer"}
	svc := NewService(store, gw, "chat-model")
	u := proUser()
	other := proUser()
	seedDoc(store, u.ID, "doc", "content", 0)

	res, err := svc.Query(context.Background(), other, "content", nil, 0)
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), u, "content", &res.ConversationID, 0)
	require.Error(t, err)
	require.Equal(t, 404, apierror.From(err).Status)
}

func TestIndexDocumentFallsBackToDigestEmbedding(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{embedErr: context.DeadlineExceeded}
	svc := NewService(store, gw, "chat-model")

	doc, err := svc.IndexDocument(context.Background(), uuid.New(), "report", "quarterly numbers", nil)
	require.NoError(t, err)
	require.Len(t, doc.Embedding, 32)
	require.Equal(t, digestEmbedding("quarterly numbers"), doc.Embedding)
}

func TestIndexDocumentUsesEmbeddingAPI(t *testing.T) {
	store := newFakeRAGStore()
	gw := &fakeGateway{}
	svc := NewService(store, gw, "chat-model")

	doc, err := svc.IndexDocument(context.Background(), uuid.New(), "report", "quarterly numbers", nil)
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.5}, doc.Embedding)
	require.Equal(t, 1, gw.embedCalls)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	store := newFakeRAGStore()
	svc := NewService(store, &fakeGateway{}, "chat-model")

	err := svc.DeleteDocument(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	require.Equal(t, 404, apierror.From(err).Status)
}
