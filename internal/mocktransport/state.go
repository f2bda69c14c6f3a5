//go:build !production

package mocktransport

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-storefront/api"
)

type state struct {
	member        api.Member
	products      []api.Product
	fundings      []api.Funding
	cart          []api.CartItem
	wallet        api.Wallet
	transactions  []api.WalletTransaction
	wishlist      []api.WishlistItem
	notifications []api.Notification
	orders        []api.Order
	seq           int
}

func (st *state) nextID(prefix string) string {
	st.seq++
	return prefix + strconv.Itoa(st.seq)
}

func seed() *state {
	now := time.Now().UTC().Truncate(time.Second)
	st := &state{
		member: api.Member{ID: "m1", Nickname: "Demo", Email: "demo@giftshop.app", Role: "SELLER"},
		products: []api.Product{
			{ID: "p1", Name: "Ceramic Mug", Category: "kitchen", Price: 18000, SellerID: "m1", ImageKey: "products/p1.png"},
			{ID: "p2", Name: "Wool Scarf", Category: "fashion", Price: 54000, SellerID: "m1", ImageKey: "products/p2.png"},
			{ID: "p3", Name: "Desk Lamp", Category: "home", Price: 89000, SellerID: "m2"},
			{ID: "p4", Name: "Tea Sampler", Category: "kitchen", Price: 32000, SellerID: "m2", ImageKey: "products/p4.png"},
		},
		wallet: api.Wallet{Balance: 100000, Currency: "KRW", UpdatedAt: now},
	}
	st.fundings = []api.Funding{
		{ID: "f1", ProductID: "p2", OrganizerID: "m1", Title: "Scarf for Mina", TargetAmount: 54000, CollectedAmount: 12000, Status: api.FundingStatusOpen, ImageKey: "products/p2.png", ExpiresAt: now.Add(7 * 24 * time.Hour)},
		{ID: "f2", ProductID: "p3", OrganizerID: "m3", Title: "Lamp for the office", TargetAmount: 89000, CollectedAmount: 60000, Status: api.FundingStatusOpen, ExpiresAt: now.Add(3 * 24 * time.Hour)},
		{ID: "f3", ProductID: "p1", OrganizerID: "m4", Title: "Mug for Joon", TargetAmount: 18000, CollectedAmount: 18000, Status: api.FundingStatusCompleted, ExpiresAt: now.Add(-24 * time.Hour)},
	}
	st.cart = []api.CartItem{
		{ID: st.nextID("c"), FundingID: "f1", Amount: 10000, Selected: true},
		{ID: st.nextID("c"), FundingID: "f2", Amount: 5000, Selected: false},
	}
	st.transactions = []api.WalletTransaction{
		{ID: st.nextID("t"), Type: api.TransactionCharge, Amount: 100000, BalanceAfter: 100000, Description: "Welcome credit", CreatedAt: now},
	}
	st.notifications = []api.Notification{
		{ID: st.nextID("n"), Type: "FUNDING_COMPLETED", Message: "Mug for Joon reached its goal", FundingID: "f3", CreatedAt: now},
	}
	return st
}

func (st *state) product(id string) (api.Product, bool) {
	for _, p := range st.products {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

func (st *state) fundingIndex(id string) int {
	for i, f := range st.fundings {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (st *state) cartIndex(id string) int {
	for i, item := range st.cart {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (st *state) wished(productID string) bool {
	for _, w := range st.wishlist {
		if w.ProductID == productID {
			return true
		}
	}
	return false
}

func (st *state) decorate(p api.Product) api.Product {
	p.Wished = st.wished(p.ID)
	return p
}

// pay settles the given cart items and returns the new order.
func (st *state) pay(ids []string, now time.Time) (api.Order, error) {
	var total int64
	var items []api.OrderItem
	keep := st.cart[:0:0]
	paid := make(map[string]bool, len(ids))
	for _, id := range ids {
		paid[id] = true
	}
	for _, item := range st.cart {
		if !paid[item.ID] {
			keep = append(keep, item)
			continue
		}
		total += item.Amount
		items = append(items, api.OrderItem{FundingID: item.FundingID, Amount: item.Amount})
		delete(paid, item.ID)
	}
	if len(paid) > 0 {
		return api.Order{}, fmt.Errorf("unknown cart items")
	}
	if total > st.wallet.Balance {
		return api.Order{}, errInsufficient
	}

	st.cart = keep
	st.wallet.Balance -= total
	st.wallet.UpdatedAt = now
	for _, it := range items {
		if i := st.fundingIndex(it.FundingID); i >= 0 {
			f := &st.fundings[i]
			f.CollectedAmount += it.Amount
			if f.CollectedAmount >= f.TargetAmount {
				f.Status = api.FundingStatusCompleted
			}
		}
	}

	order := api.Order{ID: st.nextID("o"), Status: "PAID", Amount: total, Items: items, CreatedAt: now}
	st.orders = append([]api.Order{order}, st.orders...)
	st.transactions = append([]api.WalletTransaction{{
		ID: st.nextID("t"), Type: api.TransactionPayment, Amount: -total,
		BalanceAfter: st.wallet.Balance, Description: "Order " + order.ID, CreatedAt: now,
	}}, st.transactions...)
	return order, nil
}

var errInsufficient = fmt.Errorf("insufficient balance")

func paginate[T any](items []T, p api.PageParams) api.Page[T] {
	p = p.Normalize()
	start := (p.Page - 1) * p.Size
	if start > len(items) {
		start = len(items)
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return api.Page[T]{
		Items:   append([]T{}, items[start:end]...),
		Page:    p.Page,
		Size:    p.Size,
		Total:   len(items),
		HasNext: end < len(items),
	}
}
