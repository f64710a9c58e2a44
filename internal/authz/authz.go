// Package authz holds the ownership policy: stateless decisions about
// whether the caller may touch a given record. Callers surface a denial
// as ErrForbidden, which is distinct from the domain not-found errors so
// the transport can map 403 vs 404.
package authz

import (
	"errors"

	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
)

var ErrForbidden = errors.New("access denied")

// CanAccessUser reports whether current may read/update/delete target.
// Admins may touch any user; everyone else only themselves.
func CanAccessUser(current, target user.User) bool {
	if current.IsAdmin() {
		return true
	}

	return current.ID == target.ID
}

// CanAccessProduct reports whether current may read/update/delete p.
// Admins bypass ownership. A product without an owner is admin-only.
func CanAccessProduct(current user.User, p product.Product) bool {
	if current.IsAdmin() {
		return true
	}

	if p.OwnerID == nil {
		return false
	}

	return *p.OwnerID == current.ID
}
