package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products *usecase.ProductUsecase
	logger   *slog.Logger
}

func NewProductHandler(products *usecase.ProductUsecase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger.With("component", "product_handler")}
}

// Variants arrive as a structured nested array, not flattened form
// fields — the boundary owns the shape, the usecase never parses paths.
type variantOptionPayload struct {
	VariantTypeID string `json:"variantTypeId" binding:"required"`
	Value         string `json:"value"         binding:"required"`
}

type variantPayload struct {
	PriceAdjustment string                 `json:"priceAdjustment"`
	Stock           int                    `json:"stock"  binding:"min=0"`
	Image           *string                `json:"image"`
	Options         []variantOptionPayload `json:"variantOptions" binding:"required,min=1,dive"`
}

type createProductRequest struct {
	Name        string           `json:"name"        binding:"required,max=200"`
	Description *string          `json:"description"`
	BasePrice   string           `json:"basePrice"   binding:"required"`
	Stock       int              `json:"stock"       binding:"min=0"`
	Images      []string         `json:"productImages"`
	Variants    []variantPayload `json:"variants"    binding:"omitempty,dive"`
}

type productResponse struct {
	ID          string            `json:"id"`
	StoreID     string            `json:"storeId"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	BasePrice   string            `json:"basePrice"`
	Stock       int               `json:"stock"`
	HasVariants bool              `json:"hasVariants"`
	Images      []string          `json:"productImages,omitempty"`
	Variants    []variantResponse `json:"variants,omitempty"`
}

type variantResponse struct {
	ID              string                  `json:"id"`
	PriceAdjustment string                  `json:"priceAdjustment"`
	Stock           int                     `json:"stock"`
	Image           *string                 `json:"image,omitempty"`
	Options         []variantOptionResponse `json:"variantOptions,omitempty"`
}

type variantOptionResponse struct {
	VariantTypeID string `json:"variantTypeId"`
	Value         string `json:"value"`
}

func toProductResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		Stock:       p.Stock,
		HasVariants: p.HasVariants,
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, img.Image)
	}
	for _, v := range p.Variants {
		vr := variantResponse{
			ID:              v.ID,
			PriceAdjustment: v.PriceAdjustment,
			Stock:           v.Stock,
			Image:           v.Image,
		}
		for _, o := range v.Options {
			vr.Options = append(vr.Options, variantOptionResponse{
				VariantTypeID: o.VariantTypeID,
				Value:         o.Value,
			})
		}
		resp.Variants = append(resp.Variants, vr)
	}
	return resp
}

func toVariantInputs(payloads []variantPayload) []usecase.VariantInput {
	variants := make([]usecase.VariantInput, len(payloads))
	for i, v := range payloads {
		options := make([]usecase.VariantOptionInput, len(v.Options))
		for j, o := range v.Options {
			options[j] = usecase.VariantOptionInput{VariantTypeID: o.VariantTypeID, Value: o.Value}
		}
		variants[i] = usecase.VariantInput{
			PriceAdjustment: v.PriceAdjustment,
			Stock:           v.Stock,
			Image:           v.Image,
			Options:         options,
		}
	}
	return variants
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Create(c.Request.Context(), c.GetString("userID"), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Stock:       req.Stock,
		Images:      req.Images,
		Variants:    toVariantInputs(req.Variants),
	})
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			respondError(c, http.StatusNotFound, errStoreNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "create product", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusCreated, toProductResponse(product))
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.GetString("userID"), usecase.UpdateProductInput{
		ProductID:   c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Stock:       req.Stock,
		Images:      req.Images,
		Variants:    toVariantInputs(req.Variants),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			respondError(c, http.StatusNotFound, errStoreNotFound)
		case errors.Is(err, domain.ErrProductNotFound):
			respondError(c, http.StatusNotFound, errProductNotFound)
		default:
			h.logger.ErrorContext(c.Request.Context(), "update product", "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	respond(c, http.StatusOK, toProductResponse(product))
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	err := h.products.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			respondError(c, http.StatusNotFound, errStoreNotFound)
		case errors.Is(err, domain.ErrProductNotFound):
			respondError(c, http.StatusNotFound, errProductNotFound)
		default:
			h.logger.ErrorContext(c.Request.Context(), "delete product", "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

// DELETE /api/products/:id/variants/:variantId
func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	err := h.products.DeleteVariant(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("variantId"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			respondError(c, http.StatusNotFound, errStoreNotFound)
		case errors.Is(err, domain.ErrVariantNotFound):
			respondError(c, http.StatusNotFound, errVariantNotFound)
		default:
			h.logger.ErrorContext(c.Request.Context(), "delete product variant", "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Variant deleted"})
}

// GET /api/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, errProductNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get product", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respond(c, http.StatusOK, toProductResponse(product))
}

// GET /api/products?name=&page=&size=
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	result, err := h.products.List(c.Request.Context(), c.GetString("userID"), usecase.ListProductsInput{
		Name: c.Query("name"),
		Page: page,
		Size: size,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			respondError(c, http.StatusNotFound, errStoreNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "list products", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	items := make([]productResponse, len(result.Products))
	for i, p := range result.Products {
		items[i] = toProductResponse(p)
	}
	respondPaged(c, http.StatusOK, items, Paging{
		Size:        result.Size,
		TotalPage:   result.TotalPage,
		CurrentPage: result.CurrentPage,
	})
}
