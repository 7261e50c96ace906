package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

type RAGRepo struct {
	db PgxPool
}

func NewRAGRepo(db PgxPool) *RAGRepo { return &RAGRepo{db: db} }

func (r *RAGRepo) InsertDocument(ctx context.Context, doc *models.RAGDocument) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rag_documents (id, user_id, name, content, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.UserID, doc.Name, doc.Content, pgvector.NewVector(doc.Embedding),
		doc.Metadata, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rag document: %w", err)
	}
	return nil
}

func (r *RAGRepo) ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RAGDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, content, metadata, created_at
		 FROM rag_documents WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list rag documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *RAGRepo) RecentDocuments(ctx context.Context, userID uuid.UUID, limit int) ([]models.RAGDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, content, metadata, created_at
		 FROM rag_documents WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent rag documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocuments(rows pgx.Rows) ([]models.RAGDocument, error) {
	var docs []models.RAGDocument
	for rows.Next() {
		var d models.RAGDocument
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Content, &d.Metadata, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rag document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *RAGRepo) DeleteDocument(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM rag_documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete rag document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RAGRepo) CreateConversation(ctx context.Context, c *models.Conversation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rag_conversations (id, user_id, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		c.ID, c.UserID, c.Title, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *RAGRepo) GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM rag_conversations WHERE id = $1 AND user_id = $2`, id, userID)
	var c models.Conversation
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

func (r *RAGRepo) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM rag_conversations WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *RAGRepo) AppendMessage(ctx context.Context, m *models.Message) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rag_messages (id, conversation_id, role, content, source_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ConversationID, m.Role, m.Content, m.SourceIDs, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`UPDATE rag_conversations SET updated_at = now() WHERE id = $1`, m.ConversationID)
	return err
}

func (r *RAGRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, conversation_id, role, content, source_ids, created_at
		 FROM rag_messages WHERE conversation_id = $1 ORDER BY created_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.SourceIDs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
