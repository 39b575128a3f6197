package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Transport Tables
// ============================================================

// TransportRequest is a shipping need posted by a buyer, seller or transporter.
type TransportRequest struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"requester_id"`
	DealID        *uuid.UUID     `gorm:"type:uuid;index" json:"deal_id"`
	ProductName   string         `gorm:"size:100;not null" json:"product_name"`
	Origin        string         `gorm:"size:200;not null" json:"origin"`
	Destination   string         `gorm:"size:200;not null" json:"destination"`
	QuantityTons  float64        `gorm:"type:decimal(15,2);not null" json:"quantity_tons"`
	PreferredDate *time.Time     `json:"preferred_date"`
	BudgetZAR     *float64       `gorm:"type:decimal(15,2)" json:"budget_zar"`
	Status        string         `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Requester *User            `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Quotes    []TransportQuote `gorm:"foreignKey:RequestID" json:"quotes,omitempty"`
}

func (TransportRequest) TableName() string {
	return "transport_requests"
}

func (r *TransportRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TransportQuote is a transporter's bid against a request.
type TransportQuote struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	TransporterID uuid.UUID      `gorm:"type:uuid;not null;index" json:"transporter_id"`
	PriceZAR      float64        `gorm:"type:decimal(15,2);not null" json:"price_zar"`
	EstimatedDays int            `gorm:"not null" json:"estimated_days"`
	Message       string         `gorm:"type:text" json:"message,omitempty"`
	Status        string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Transporter *User `gorm:"foreignKey:TransporterID" json:"transporter,omitempty"`
}

func (TransportQuote) TableName() string {
	return "transport_quotes"
}

func (q *TransportQuote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// ============================================================
// Compliance Tables
// ============================================================

// FICA document types
const (
	FicaDocID           = "id_document"
	FicaDocBusiness     = "business_registration"
	FicaDocBank         = "bank_statement"
	FicaDocProofAddress = "proof_of_address"
)

// FicaDocument is an uploaded compliance document, verified independently.
type FicaDocument struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	DocType      string         `gorm:"size:40;not null" json:"doc_type"`
	FileName     string         `gorm:"size:200;not null" json:"file_name"`
	FileURL      string         `gorm:"size:500;not null" json:"file_url"`
	Status       string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectReason string         `gorm:"type:text" json:"reject_reason,omitempty"`
	VerifiedBy   *uuid.UUID     `gorm:"type:uuid" json:"verified_by"`
	VerifiedAt   *time.Time     `json:"verified_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FicaDocument) TableName() string {
	return "fica_documents"
}

func (d *FicaDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// ============================================================
// Notification & Messaging Tables
// ============================================================

// Notification is an in-app notification row, written in the same
// transaction as the state change that triggered it.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string     `gorm:"size:40;not null" json:"type"`
	Title     string     `gorm:"size:150;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	RelatedID *uuid.UUID `gorm:"type:uuid" json:"related_id"`
	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Message is a direct message between two deal parties.
type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DealID      *uuid.UUID `gorm:"type:uuid;index" json:"deal_id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	IsRead      bool       `gorm:"default:false" json:"is_read"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ============================================================
// Outbox Table
// ============================================================

// Outbox statuses
const (
	OutboxPending = "PENDING"
	OutboxSent    = "SENT"
	OutboxFailed  = "FAILED"
)

// OutboxEvent is a side effect recorded transactionally alongside the
// primary state change and delivered at-least-once by the dispatcher.
type OutboxEvent struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Topic         string          `gorm:"size:60;not null;index" json:"topic"`
	Payload       json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	Status        string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Attempts      int             `gorm:"default:0" json:"attempts"`
	NextAttemptAt time.Time       `gorm:"not null;index" json:"next_attempt_at"`
	LastError     string          `gorm:"type:text" json:"last_error,omitempty"`
	SentAt        *time.Time      `json:"sent_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = time.Now()
	}
	return nil
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Master
		&Product{},
		// Marketplace
		&Listing{},
		&Offer{},
		&NegotiationEntry{},
		&Deal{},
		&DealEvent{},
		// Transport
		&TransportRequest{},
		&TransportQuote{},
		// Compliance
		&FicaDocument{},
		// Notifications
		&Notification{},
		&Message{},
		// Outbox
		&OutboxEvent{},
	)
}
