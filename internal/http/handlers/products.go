package handlers

import (
	"context"
	"net/http"

	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ProductsService interface {
	List(ctx context.Context) ([]product.Product, error)
	ListMine(ctx context.Context, current user.User) ([]product.Product, error)
	GetByID(ctx context.Context, current user.User, id int64) (product.Product, error)
	Create(ctx context.Context, req product.CreateProductRequest) (product.Product, error)
	Update(ctx context.Context, current user.User, id int64, req product.UpdateProductRequest) (product.Product, error)
	Delete(ctx context.Context, current user.User, id int64) error
}

type ProductsHandler struct {
	svc      ProductsService
	identity UsersService
}

func NewProductsHandler(svc ProductsService, identity UsersService) *ProductsHandler {
	return &ProductsHandler{svc: svc, identity: identity}
}

// ListProducts is mounted behind the admin role gate.
func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	products, err := h.svc.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": products,
		"count": len(products),
	})
}

func (h *ProductsHandler) ListMyProducts(ctx *gin.Context) {
	current, ok := resolveCurrentUser(ctx, h.identity)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	products, err := h.svc.ListMine(cctx, current)

	if err != nil {
		RespondInternal(ctx, "Could not list products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": products,
		"count": len(products),
	})
}

func (h *ProductsHandler) GetProductById(ctx *gin.Context) {
	// gin cannot mount /products/my-products next to /products/:id, so
	// the alias is dispatched here
	if ctx.Param("id") == "my-products" {
		h.ListMyProducts(ctx)
		return
	}

	id, ok := parseID(ctx)

	if !ok {
		return
	}

	current, ok := resolveCurrentUser(ctx, h.identity)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	p, err := h.svc.GetByID(cctx, current, id)

	if err != nil {
		respondServiceError(ctx, err, "Could not fetch product")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProductsHandler) CreateProduct(ctx *gin.Context) {
	var req product.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	p, err := h.svc.Create(cctx, req)

	if err != nil {
		respondServiceError(ctx, err, "Could not create product")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProductsHandler) UpdateProduct(ctx *gin.Context) {
	id, ok := parseID(ctx)

	if !ok {
		return
	}

	var req product.UpdateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := resolveCurrentUser(ctx, h.identity)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	p, err := h.svc.Update(cctx, current, id, req)

	if err != nil {
		respondServiceError(ctx, err, "Could not update product")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProductsHandler) DeleteProduct(ctx *gin.Context) {
	id, ok := parseID(ctx)

	if !ok {
		return
	}

	current, ok := resolveCurrentUser(ctx, h.identity)

	if !ok {
		return
	}

	cctx, cancel := requestTimeout(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, current, id); err != nil {
		respondServiceError(ctx, err, "Could not delete product")
		return
	}

	ctx.Status(http.StatusNoContent)
}
