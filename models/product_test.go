package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name     string
		mrp      float64
		discount float64
		want     float64
	}{
		{"no discount", 750, 0, 750},
		{"whole discount", 1000, 10, 900},
		{"rounded discount amount", 999, 15, 849}, // 999*0.15 = 149.85 -> 150 off
		{"full discount", 500, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{MRP: tc.mrp, DiscountPercent: tc.discount}
			assert.Equal(t, tc.want, p.EffectivePrice())
		})
	}
}

func TestPrimaryImage(t *testing.T) {
	p := Product{}
	assert.Equal(t, "", p.PrimaryImage())
	p.Images = []string{"first.jpg", "second.jpg"}
	assert.Equal(t, "first.jpg", p.PrimaryImage())
}

func TestNewOrderID(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewOrderID(now)
	assert.Len(t, id, len("ORD-20250314092653-0000"))
	assert.Contains(t, id, "ORD-20250314092653-")
	for _, c := range id[len("ORD-20250314092653-"):] {
		assert.True(t, c >= '0' && c <= '9', "suffix must be numeric, got %q", c)
	}
}
