package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList stores a string slice as a JSONB column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for StringList")
}

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Province     string         `gorm:"size:50" json:"province"`
	Role         string         `gorm:"size:20;default:'USER'" json:"role"`
	Roles        StringList     `gorm:"type:jsonb" json:"roles"`
	Capabilities StringList     `gorm:"type:jsonb" json:"capabilities"`
	PlanCode     string         `gorm:"size:20;default:'free'" json:"plan_code"`
	FicaStatus   string         `gorm:"size:20;default:'pending'" json:"fica_status"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	DealsDone    int            `gorm:"default:0" json:"deals_done"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the UUID primary key.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserResponse DTO
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	Province     string     `json:"province,omitempty"`
	Role         string     `json:"role"`
	Roles        StringList `json:"roles"`
	Capabilities StringList `json:"capabilities"`
	PlanCode     string     `json:"plan_code"`
	FicaStatus   string     `json:"fica_status"`
	IsActive     bool       `json:"is_active"`
	IsVerified   bool       `json:"is_verified"`
	DealsDone    int        `json:"deals_done"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		Province:     u.Province,
		Role:         u.Role,
		Roles:        u.Roles,
		Capabilities: u.Capabilities,
		PlanCode:     u.PlanCode,
		FicaStatus:   u.FicaStatus,
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		DealsDone:    u.DealsDone,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Product is the seeded grain/feed catalogue (Master)
type Product struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Category  string         `gorm:"size:50;not null" json:"category"`
	Unit      string         `gorm:"size:20;default:'ton'" json:"unit"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ============================================================
// Main Tables
// ============================================================

// Listing is a seller's advertised quantity of a product at a price.
// AvailableTons is authoritative and only changes inside acceptance
// transactions under a row lock.
type Listing struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	ProductID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Title           string         `gorm:"size:150;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	PricePerTon     float64        `gorm:"type:decimal(15,2);not null" json:"price_per_ton"`
	QuantityTons    float64        `gorm:"type:decimal(15,2);not null" json:"quantity_tons"`
	AvailableTons   float64        `gorm:"type:decimal(15,2);not null" json:"available_tons"`
	Location        string         `gorm:"size:200" json:"location"`
	Province        string         `gorm:"size:50;index" json:"province"`
	DeliveryOptions StringList     `gorm:"type:jsonb" json:"delivery_options"`
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`
	ExpiresAt       *time.Time     `json:"expires_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Seller  *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Offer is a buyer's proposed terms against a listing.
type Offer struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"listing_id"`
	BuyerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	PricePerTon     float64        `gorm:"type:decimal(15,2);not null" json:"price_per_ton"`
	QuantityTons    float64        `gorm:"type:decimal(15,2);not null" json:"quantity_tons"`
	DeliveryTerms   string         `gorm:"size:100" json:"delivery_terms"`
	Message         string         `gorm:"type:text" json:"message"`
	Status          string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CounterPrice    *float64       `gorm:"type:decimal(15,2)" json:"counter_price"`
	CounterQuantity *float64       `gorm:"type:decimal(15,2)" json:"counter_quantity"`
	CounterMessage  string         `gorm:"type:text" json:"counter_message,omitempty"`
	DealID          *uuid.UUID     `gorm:"type:uuid;index" json:"deal_id"`
	ExpiresAt       time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Buyer   *User    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller  *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Offer) TableName() string {
	return "offers"
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// NegotiationEntry is the append-only negotiation log for an offer.
type NegotiationEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OfferID      uuid.UUID `gorm:"type:uuid;not null;index" json:"offer_id"`
	ActorID      uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Action       string    `gorm:"size:20;not null" json:"action"`
	PricePerTon  float64   `gorm:"type:decimal(15,2)" json:"price_per_ton"`
	QuantityTons float64   `gorm:"type:decimal(15,2)" json:"quantity_tons"`
	Message      string    `gorm:"type:text" json:"message,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (NegotiationEntry) TableName() string {
	return "negotiation_entries"
}

// Negotiation actions
const (
	NegotiationOffer   = "offer"
	NegotiationCounter = "counter"
	NegotiationAccept  = "accept"
	NegotiationReject  = "reject"
	NegotiationExpire  = "expire"
)

// Deal is created exactly once per accepted offer and tracks the
// transaction to completion.
type Deal struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OfferID         uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"offer_id"`
	ListingID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"listing_id"`
	BuyerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	FinalPricePerTon float64       `gorm:"type:decimal(15,2);not null" json:"final_price_per_ton"`
	QuantityTons    float64        `gorm:"type:decimal(15,2);not null" json:"quantity_tons"`
	PlatformFee     float64        `gorm:"type:decimal(15,2);not null" json:"platform_fee"`
	TotalAmount     float64        `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DeliveryType    string         `gorm:"size:20" json:"delivery_type"`
	DeliveryAddress string         `gorm:"size:300" json:"delivery_address"`
	DeliveryDate    *time.Time     `json:"delivery_date"`
	PaymentStatus   string         `gorm:"size:20;default:'pending'" json:"payment_status"`
	Status          string         `gorm:"size:30;not null;default:'connected';index" json:"status"`
	CancelReason    string         `gorm:"type:text" json:"cancel_reason,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Offer   *Offer   `gorm:"foreignKey:OfferID" json:"offer,omitempty"`
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Buyer   *User    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller  *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Deal) TableName() string {
	return "deals"
}

func (d *Deal) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DealEvent is the audit trail for deal status changes.
type DealEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DealID      uuid.UUID `gorm:"type:uuid;not null;index" json:"deal_id"`
	FromStatus  string    `gorm:"size:30" json:"from_status"`
	ToStatus    string    `gorm:"size:30;not null" json:"to_status"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	PerformedBy uuid.UUID `gorm:"type:uuid;not null" json:"performed_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Performer *User `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (DealEvent) TableName() string {
	return "deal_events"
}
