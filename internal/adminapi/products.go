package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var productResource = query.Resource{
	DefaultLimit:      12,
	SearchColumns:     []string{"name", "description"},
	JSONSearchColumns: []string{"tags"},
	SortColumns: map[string]string{
		"name":      "name",
		"price":     "price",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	BoolFilters: map[string]string{
		"isActive": "is_active",
		"featured": "featured",
		"inStock":  "in_stock",
	},
	IDFilters: map[string]string{"category": "category_id"},
}

// productPayload carries create and update input. Nil fields are left unchanged.
type productPayload struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	InStock     *bool    `json:"inStock"`
	Featured    *bool    `json:"featured"`
	IsActive    *bool    `json:"isActive"`
	Tags        []string `json:"tags"`
}

func (p productPayload) apply(prod *domain.Product) domain.FieldErrors {
	var errs domain.FieldErrors
	if p.Name != nil {
		prod.Name = *trimPtr(p.Name)
	}
	if p.Description != nil {
		prod.Description = *trimPtr(p.Description)
	}
	if p.Category != nil {
		id, err := strconv.ParseInt(*trimPtr(p.Category), 10, 64)
		if err != nil || id <= 0 {
			errs.Add("category", "invalid category id")
		} else {
			prod.CategoryID = id
		}
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.InStock != nil {
		prod.InStock = *p.InStock
	}
	if p.Featured != nil {
		prod.Featured = *p.Featured
	}
	if p.IsActive != nil {
		prod.IsActive = *p.IsActive
	}
	if p.Tags != nil {
		prod.Tags = trimAll(p.Tags)
	}
	return errs
}

// registerProductRoutes registers product CRUD routes
func registerProductRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/products", listProducts)
	srv.ApiGET("/products/:id", getProduct)
	srv.ApiPOST("/products", createProduct, srv.AdminAuth())
	srv.ApiPUT("/products/:id", updateProduct, srv.AdminAuth())
	srv.ApiDELETE("/products/:id", deleteProduct, srv.AdminAuth())
}

func listProducts(c echo.Context) error {
	params, err := parseList(c, productResource)
	if err != nil {
		return handleValidationError(c, err)
	}

	base := params.Filter(GetDB(c).Model(&domain.Product{})).Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return serverError(c, err, "failed to count products")
	}

	products := make([]domain.Product, 0, params.Limit)
	if err := params.Paginate(base).Preload("Category").Find(&products).Error; err != nil {
		return serverError(c, err, "failed to query products")
	}
	return paged(c, products, params.Pagination(total))
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	var p domain.Product
	if err := GetDB(c).Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return handleStoreError(c, err, "Product")
	}
	return ok(c, p)
}

// lookupCategory resolves the category a product refers to.
func lookupCategory(c echo.Context, id int64) (*domain.Category, error) {
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// resolveProductCategory attaches the referenced category to p, or renders the
// error response and returns false.
func resolveProductCategory(c echo.Context, p *domain.Product) (bool, error) {
	cat, err := lookupCategory(c, p.CategoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			domain.FieldErrors{{Field: "category", Message: "category not found"}})
	}
	if err != nil {
		return false, serverError(c, err, "failed to query category")
	}
	p.Category = cat
	return true, nil
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	p := domain.Product{InStock: true, IsActive: true, Tags: []string{}}
	errs := payload.apply(&p)
	errs.Merge(domain.ValidateProduct(&p))
	if err := errs.Err(); err != nil {
		return handleValidationError(c, err)
	}
	if found, err := resolveProductCategory(c, &p); !found {
		return err
	}

	img, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	if img != nil {
		p.Image, p.ImagePublicID = img.Path, img.Filename
	}

	p.ID = common.UUIDint64()
	if err := GetDB(c).Omit(clause.Associations).Create(&p).Error; err != nil {
		if img != nil {
			discardAssets(c, img.Filename)
		}
		return handleStoreError(c, err, "Product")
	}
	zap.L().Info("product created", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	var payload productPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return handleStoreError(c, err, "Product")
	}

	errs := payload.apply(&p)
	errs.Merge(domain.ValidateProduct(&p))
	if err := errs.Err(); err != nil {
		return handleValidationError(c, err)
	}
	if found, err := resolveProductCategory(c, &p); !found {
		return err
	}

	img, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	previous := ""
	if img != nil {
		previous = p.ImagePublicID
		p.Image, p.ImagePublicID = img.Path, img.Filename
	}

	if err := GetDB(c).Omit(clause.Associations).Save(&p).Error; err != nil {
		if img != nil {
			discardAssets(c, img.Filename)
		}
		return handleStoreError(c, err, "Product")
	}
	if previous != "" {
		discardAssets(c, previous)
	}
	zap.L().Info("product updated", zap.Int64("id", p.ID))
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return handleStoreError(c, err, "Product")
	}
	if err := GetDB(c).Delete(&domain.Product{}, id).Error; err != nil {
		return serverError(c, err, "failed to delete product")
	}
	if p.ImagePublicID != "" {
		discardAssets(c, p.ImagePublicID)
	}
	zap.L().Info("product deleted", zap.Int64("id", id))
	return okMessage(c, "Product deleted successfully")
}
