package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParams_Normalize(t *testing.T) {
	tests := []struct {
		in, want PageParams
	}{
		{PageParams{}, PageParams{Page: 1, Size: 20}},
		{PageParams{Page: 3, Size: 10}, PageParams{Page: 3, Size: 10}},
		{PageParams{Page: -1, Size: 500}, PageParams{Page: 1, Size: 100}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}

func TestCart_Selection(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: "c1", FundingID: "f1", Amount: 100, Selected: true},
		{ID: "c2", FundingID: "f2", Amount: 200},
		{ID: "c3", FundingID: "f1", Amount: 50, Selected: true},
	}}

	assert.EqualValues(t, 350, cart.Total())
	assert.EqualValues(t, 150, cart.SelectedAmount())
	assert.Equal(t, []string{"c1", "c3"}, cart.SelectedItemIDs())
	assert.Equal(t, []string{"f1"}, cart.SelectedFundingIDs())
	assert.Empty(t, Cart{}.SelectedFundingIDs())

	assert.Equal(t, []string{"f1", "f2"}, cart.FundingIDsFor([]string{"c3", "c2", "c1", "missing"}))
	assert.Empty(t, cart.FundingIDsFor(nil))
}

func TestMessageFromBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"nope"}`, "nope"},
		{"error field", `{"error":"bad"}`, "bad"},
		{"plain text", "  gateway down \n", "gateway down"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messageFromBody([]byte(tt.body)))
		})
	}
}

func TestImageResolver(t *testing.T) {
	r := ImageResolver{BaseURL: "https://cdn.example.com/"}

	assert.Equal(t, "https://cdn.example.com/products/1.png", r.Resolve("/products/1.png"))
	assert.Equal(t, "https://other.example.com/x.png", r.Resolve("https://other.example.com/x.png"))
	assert.Equal(t, PlaceholderImage, r.Resolve(""))
	assert.Equal(t, PlaceholderImage, ImageResolver{}.Resolve("products/1.png"))

	p := r.Product(Product{ID: "p1", ImageKey: "p1.png"})
	assert.Equal(t, "https://cdn.example.com/p1.png", p.ImageURL)
	f := r.Funding(Funding{ID: "f1"})
	assert.Equal(t, PlaceholderImage, f.ImageURL)
}
