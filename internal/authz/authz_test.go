package authz_test

import (
	"testing"

	"github.com/dmunozv/crudhub/internal/authz"
	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
)

func ptr(id int64) *int64 {
	return &id
}

func TestCanAccessUser(t *testing.T) {
	admin := user.User{ID: 1, Role: user.RoleAdmin}
	alice := user.User{ID: 2, Role: user.RoleUser}
	bob := user.User{ID: 3, Role: user.RoleUser}

	tests := []struct {
		name    string
		current user.User
		target  user.User
		want    bool
	}{
		{name: "admin reads anyone", current: admin, target: bob, want: true},
		{name: "admin reads self", current: admin, target: admin, want: true},
		{name: "user reads self", current: alice, target: alice, want: true},
		{name: "user denied other user", current: alice, target: bob, want: false},
		{name: "user denied admin record", current: alice, target: admin, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := authz.CanAccessUser(tc.current, tc.target)

			if got != tc.want {
				t.Fatalf("CanAccessUser = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanAccessProduct(t *testing.T) {
	admin := user.User{ID: 1, Role: user.RoleAdmin}
	alice := user.User{ID: 2, Role: user.RoleUser}

	tests := []struct {
		name    string
		current user.User
		p       product.Product
		want    bool
	}{
		{name: "owner allowed", current: alice, p: product.Product{ID: 10, OwnerID: ptr(2)}, want: true},
		{name: "non owner denied", current: alice, p: product.Product{ID: 10, OwnerID: ptr(99)}, want: false},
		{name: "ownerless denied for user", current: alice, p: product.Product{ID: 10}, want: false},
		{name: "ownerless allowed for admin", current: admin, p: product.Product{ID: 10}, want: true},
		{name: "admin bypasses ownership", current: admin, p: product.Product{ID: 10, OwnerID: ptr(2)}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := authz.CanAccessProduct(tc.current, tc.p)

			if got != tc.want {
				t.Fatalf("CanAccessProduct = %v, want %v", got, tc.want)
			}
		})
	}
}
