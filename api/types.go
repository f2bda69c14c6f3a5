package api

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default paging values applied when a caller leaves them unset.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams selects one page of a list resource.
type PageParams struct {
	Page int
	Size int
}

// Normalize fills unset fields and clamps the page size.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageParams) query() map[string]string {
	p = p.Normalize()
	return map[string]string{
		"page": strconv.Itoa(p.Page),
		"size": strconv.Itoa(p.Size),
	}
}

// Page is one page of a list response.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       int64  `json:"price"`
	SellerID    string `json:"sellerId,omitempty"`
	ImageKey    string `json:"imageKey,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Wished      bool   `json:"wished"`
}

// ProductFilter narrows the product list. Every field takes part in the
// cache key.
type ProductFilter struct {
	Category string
	Sort     string
	Page     int
	Size     int
}

// Normalize fills paging defaults so equivalent filters share a cache key.
func (f ProductFilter) Normalize() ProductFilter {
	p := PageParams{Page: f.Page, Size: f.Size}.Normalize()
	f.Page, f.Size = p.Page, p.Size
	return f
}

const (
	FundingStatusOpen      = "OPEN"
	FundingStatusCompleted = "COMPLETED"
	FundingStatusExpired   = "EXPIRED"
)

// Funding is a shared gifting goal.
type Funding struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"productId"`
	OrganizerID     string    `json:"organizerId"`
	Title           string    `json:"title"`
	TargetAmount    int64     `json:"targetAmount"`
	CollectedAmount int64     `json:"collectedAmount"`
	Status          string    `json:"status"`
	ImageKey        string    `json:"imageKey,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type FundingFilter struct {
	Status string
	Page   int
	Size   int
}

func (f FundingFilter) Normalize() FundingFilter {
	p := PageParams{Page: f.Page, Size: f.Size}.Normalize()
	f.Page, f.Size = p.Page, p.Size
	return f
}

// CartItem is one contribution waiting to be paid.
type CartItem struct {
	ID        string `json:"id"`
	FundingID string `json:"fundingId"`
	Amount    int64  `json:"amount"`
	Selected  bool   `json:"selected"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// Total is the sum of every item amount.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Amount
	}
	return total
}

// SelectedAmount is the sum of the selected item amounts.
func (c Cart) SelectedAmount() int64 {
	var total int64
	for _, item := range c.Items {
		if item.Selected {
			total += item.Amount
		}
	}
	return total
}

// SelectedItemIDs lists the selected items in cart order.
func (c Cart) SelectedItemIDs() []string {
	var ids []string
	for _, item := range c.Items {
		if item.Selected {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// SelectedFundingIDs lists, without duplicates, the fundings referenced by
// selected items.
func (c Cart) SelectedFundingIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, item := range c.Items {
		if !item.Selected || item.FundingID == "" {
			continue
		}
		if _, ok := seen[item.FundingID]; ok {
			continue
		}
		seen[item.FundingID] = struct{}{}
		ids = append(ids, item.FundingID)
	}
	return ids
}

// FundingIDsFor lists, without duplicates, the fundings referenced by the
// items in itemIDs. Unknown ids are skipped.
func (c Cart) FundingIDsFor(itemIDs []string) []string {
	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, item := range c.Items {
		if _, ok := wanted[item.ID]; !ok || item.FundingID == "" {
			continue
		}
		if _, ok := seen[item.FundingID]; ok {
			continue
		}
		seen[item.FundingID] = struct{}{}
		ids = append(ids, item.FundingID)
	}
	return ids
}

type AddCartItemRequest struct {
	FundingID string `json:"fundingId"`
	Amount    int64  `json:"amount"`
}

func (r AddCartItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FundingID, validation.Required),
		validation.Field(&r.Amount, validation.Required, validation.Min(int64(1))),
	)
}

type SelectCartItemRequest struct {
	Selected bool `json:"selected"`
}

// Wallet is the member's balance.
type Wallet struct {
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	TransactionCharge  = "CHARGE"
	TransactionPayment = "PAYMENT"
	TransactionRefund  = "REFUND"
)

type WalletTransaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balanceAfter"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ChargeRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method,omitempty"`
}

func (r ChargeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required, validation.Min(int64(1))),
	)
}

type ChargeResponse struct {
	Wallet      Wallet            `json:"wallet"`
	Transaction WalletTransaction `json:"transaction"`
}

// PaymentRequest pays the given cart items from the wallet.
type PaymentRequest struct {
	CartItemIDs []string `json:"cartItemIds"`
}

func (r PaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CartItemIDs, validation.Required, validation.Each(validation.Required)),
	)
}

type PaymentResponse struct {
	OrderID string `json:"orderId"`
	Paid    int64  `json:"paid"`
	Balance int64  `json:"balance"`
}

type WishlistItem struct {
	ProductID string    `json:"productId"`
	Product   Product   `json:"product"`
	AddedAt   time.Time `json:"addedAt"`
}

type AddWishlistRequest struct {
	ProductID string `json:"productId"`
}

func (r AddWishlistRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
	)
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	FundingID string    `json:"fundingId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderItem struct {
	FundingID string `json:"fundingId"`
	Amount    int64  `json:"amount"`
}

type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Amount    int64       `json:"amount"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Member is the backend view of the signed-in user.
type Member struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	ImageKey string `json:"imageKey,omitempty"`
}

// LoginRequest forwards the identity token to create or refresh the backend
// account record.
type LoginRequest struct {
	IDToken string `json:"idToken"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDToken, validation.Required),
	)
}
