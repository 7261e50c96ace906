// Package rag stores user documents and answers questions grounded in
// them. Retrieval is a lexical word-overlap heuristic over the caller's
// most recent documents rather than a vector search; it is documented as
// a known limitation.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/ai"
	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/policy"
	"github.com/brainsait/docuscan/internal/repository"
)

const (
	defaultMaxResults = 5
	topSources        = 3
	excerptLimit      = 500
	titleLimit        = 100
	answerMaxTokens   = 1024
)

const groundingPrompt = `You are a helpful assistant that answers questions using only the provided document excerpts. If the excerpts do not contain the answer, say so plainly instead of guessing. Answer in the language of the question.`

// Source describes one document that grounded an answer.
type Source struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
}

// QueryResult is a synthesized answer plus the documents it drew from.
type QueryResult struct {
	Answer         string    `json:"answer"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Sources        []Source  `json:"sources"`
}

type Service struct {
	store     repository.RAGStore
	gateway   ai.Gateway
	chatModel string
}

func NewService(store repository.RAGStore, gw ai.Gateway, chatModel string) *Service {
	return &Service{store: store, gateway: gw, chatModel: chatModel}
}

// IndexDocument embeds and stores a document. When the embedding API is
// unavailable a digest-derived vector is stored instead so indexing never
// fails on a downstream outage.
func (s *Service) IndexDocument(ctx context.Context, userID uuid.UUID, name, content string, metadata json.RawMessage) (*models.RAGDocument, error) {
	if name == "" || content == "" {
		return nil, apierror.Validation("name and content are required")
	}
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	var embedding []float32
	vectors, err := s.gateway.Embed(ctx, []string{content})
	if err == nil && len(vectors) == 1 {
		embedding = vectors[0]
	} else {
		slog.Warn("embedding unavailable, storing digest fallback", "error", err)
		embedding = digestEmbedding(content)
	}

	doc := &models.RAGDocument{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		Embedding: embedding,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// Query answers a question over the caller's documents. The tier gate runs
// before any retrieval or model call.
func (s *Service) Query(ctx context.Context, user *models.User, question string, conversationID *uuid.UUID, maxResults int) (*QueryResult, error) {
	if err := policy.CanQueryRAG(user.Tier); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" {
		return nil, apierror.Validation("query text is required")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	docs, err := s.store.RecentDocuments(ctx, user.ID, maxResults)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	scored := rankDocuments(question, docs)
	if len(scored) > topSources {
		scored = scored[:topSources]
	}

	answer, err := s.synthesize(ctx, question, scored)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	conv, err := s.resolveConversation(ctx, user.ID, conversationID, question)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(scored))
	sourceIDs := make([]uuid.UUID, 0, len(scored))
	for _, sd := range scored {
		sources = append(sources, Source{ID: sd.doc.ID, Name: sd.doc.Name, Score: sd.score})
		sourceIDs = append(sourceIDs, sd.doc.ID)
	}

	now := time.Now().UTC()
	userMsg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Role:           models.MessageRoleUser,
		Content:        question,
		CreatedAt:      now,
	}
	assistantMsg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Role:           models.MessageRoleAssistant,
		Content:        answer,
		SourceIDs:      sourceIDs,
		CreatedAt:      now,
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	return &QueryResult{
		Answer:         answer,
		ConversationID: conv.ID,
		Sources:        sources,
	}, nil
}

func (s *Service) ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RAGDocument, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListDocuments(ctx, userID, limit, offset)
}

func (s *Service) DeleteDocument(ctx context.Context, id, userID uuid.UUID) error {
	err := s.store.DeleteDocument(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("document not found")
	}
	return err
}

func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.store.ListConversations(ctx, userID)
}

// GetConversation returns a conversation with its full message history.
func (s *Service) GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, []models.Message, error) {
	conv, err := s.store.GetConversation(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apierror.NotFound("conversation not found")
		}
		return nil, nil, err
	}
	msgs, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

// truncateRunes cuts s to at most limit runes. Cutting on a byte index
// would split multi-byte characters, which Postgres rejects as invalid
// UTF-8; Arabic documents hit this constantly.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

type scoredDoc struct {
	doc   models.RAGDocument
	score float64
}

func rankDocuments(question string, docs []models.RAGDocument) []scoredDoc {
	scored := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		scored = append(scored, scoredDoc{doc: doc, score: jaccard(question, doc.Content)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

func (s *Service) synthesize(ctx context.Context, question string, scored []scoredDoc) (string, error) {
	var b strings.Builder
	if len(scored) == 0 {
		b.WriteString("No documents are available.\n")
	}
	for i, sd := range scored {
		excerpt := truncateRunes(sd.doc.Content, excerptLimit)
		fmt.Fprintf(&b, "Document %d (%s):\n%s\n\n", i+1, sd.doc.Name, excerpt)
	}
	fmt.Fprintf(&b, "Question: %s", question)

	resp, err := s.gateway.Chat(ctx, ai.ChatRequest{
		Model: s.chatModel,
		Messages: []ai.Message{
			{Role: "system", Content: groundingPrompt},
			{Role: models.MessageRoleUser, Content: b.String()},
		},
		MaxTokens: answerMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *Service) resolveConversation(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID, question string) (*models.Conversation, error) {
	if conversationID != nil {
		conv, err := s.store.GetConversation(ctx, *conversationID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apierror.NotFound("conversation not found")
			}
			return nil, err
		}
		return conv, nil
	}

	conv := &models.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     truncateRunes(question, titleLimit),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}
