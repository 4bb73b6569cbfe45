package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var categoryResource = query.Resource{
	DefaultLimit:  50,
	SearchColumns: []string{"name", "description"},
	SortColumns: map[string]string{
		"name":      "name",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	BoolFilters: map[string]string{"isActive": "is_active"},
}

type categoryPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (p categoryPayload) apply(cat *domain.Category) {
	if p.Name != nil {
		cat.Name = *trimPtr(p.Name)
	}
	if p.Description != nil {
		cat.Description = *trimPtr(p.Description)
	}
	if p.IsActive != nil {
		cat.IsActive = *p.IsActive
	}
}

// registerCategoryRoutes registers category CRUD routes
func registerCategoryRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/categories", listCategories)
	srv.ApiGET("/categories/:id", getCategory)
	srv.ApiPOST("/categories", createCategory, srv.AdminAuth())
	srv.ApiPUT("/categories/:id", updateCategory, srv.AdminAuth())
	srv.ApiDELETE("/categories/:id", deleteCategory, srv.AdminAuth())
}

type categoryCountRow struct {
	CategoryID   int64
	ProductCount int64
	InStockCount int64
}

// categoryStats groups products by category for the given ids. Categories
// without products are absent from the result.
func categoryStats(db *gorm.DB, ids []int64) (map[int64]domain.CategoryStats, error) {
	stats := make(map[int64]domain.CategoryStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}
	var rows []categoryCountRow
	err := db.Model(&domain.Product{}).
		Select("category_id, COUNT(*) AS product_count, SUM(CASE WHEN in_stock THEN 1 ELSE 0 END) AS in_stock_count").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "aggregate category stats")
	}
	for _, r := range rows {
		stats[r.CategoryID] = domain.CategoryStats{ProductCount: r.ProductCount, InStockCount: r.InStockCount}
	}
	return stats, nil
}

func listCategories(c echo.Context) error {
	params, err := parseList(c, categoryResource)
	if err != nil {
		return handleValidationError(c, err)
	}

	db := GetDB(c)
	base := params.Filter(db.Model(&domain.Category{})).Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return serverError(c, err, "failed to count categories")
	}

	var categories []domain.Category
	if err := params.Paginate(base).Find(&categories).Error; err != nil {
		return serverError(c, err, "failed to query categories")
	}

	ids := make([]int64, 0, len(categories))
	for _, cat := range categories {
		ids = append(ids, cat.ID)
	}
	stats, err := categoryStats(db, ids)
	if err != nil {
		return serverError(c, err, "failed to aggregate categories")
	}

	result := make([]domain.CategoryWithStats, 0, len(categories))
	for _, cat := range categories {
		result = append(result, domain.CategoryWithStats{Category: cat, CategoryStats: stats[cat.ID]})
	}
	return paged(c, result, params.Pagination(total))
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "category")
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return handleStoreError(c, err, "Category")
	}
	stats, err := categoryStats(GetDB(c), []int64{id})
	if err != nil {
		return serverError(c, err, "failed to aggregate category")
	}
	return ok(c, domain.CategoryWithStats{Category: cat, CategoryStats: stats[id]})
}

// categoryNameTaken reports whether another category already uses the folded name.
func categoryNameTaken(c echo.Context, key string, exceptID int64) (bool, error) {
	var exists int64
	err := GetDB(c).Model(&domain.Category{}).
		Where("name_key = ? AND id <> ?", key, exceptID).
		Count(&exists).Error
	return exists > 0, err
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	cat := domain.Category{IsActive: true}
	payload.apply(&cat)
	if err := domain.ValidateCategory(&cat).Err(); err != nil {
		return handleValidationError(c, err)
	}

	taken, err := categoryNameTaken(c, cat.NameKey, 0)
	if err != nil {
		return serverError(c, err, "failed to check category name")
	}
	if taken {
		return conflict(c, "name", "Category with this name already exists")
	}

	cat.ID = common.UUIDint64()
	if err := GetDB(c).Create(&cat).Error; err != nil {
		return handleStoreError(c, err, "Category")
	}
	zap.L().Info("category created", zap.Int64("id", cat.ID), zap.String("name", cat.Name))
	return created(c, cat)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "category")
	}
	var payload categoryPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return handleStoreError(c, err, "Category")
	}
	payload.apply(&cat)
	if err := domain.ValidateCategory(&cat).Err(); err != nil {
		return handleValidationError(c, err)
	}

	taken, err := categoryNameTaken(c, cat.NameKey, id)
	if err != nil {
		return serverError(c, err, "failed to check category name")
	}
	if taken {
		return conflict(c, "name", "Category with this name already exists")
	}

	if err := GetDB(c).Save(&cat).Error; err != nil {
		return handleStoreError(c, err, "Category")
	}
	return ok(c, cat)
}

// checkCategoryUnused returns ErrCategoryInUse, with the number of products
// still referring to the category, while that number is not zero.
func checkCategoryUnused(db *gorm.DB, id int64) (int64, error) {
	var count int64
	if err := db.Model(&domain.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count category products")
	}
	if count > 0 {
		return count, errors.Wrapf(ErrCategoryInUse, "%d products", count)
	}
	return 0, nil
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "category")
	}

	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return handleStoreError(c, err, "Category")
	}

	count, err := checkCategoryUnused(GetDB(c), id)
	if errors.Is(err, ErrCategoryInUse) {
		return fail(c, http.StatusBadRequest, "CATEGORY_IN_USE",
			fmt.Sprintf("Cannot delete category. It has %d products associated with it.", count), nil)
	} else if err != nil {
		return serverError(c, err, "failed to check category usage")
	}

	if err := GetDB(c).Delete(&domain.Category{}, id).Error; err != nil {
		return serverError(c, err, "failed to delete category")
	}
	zap.L().Info("category deleted", zap.Int64("id", id), zap.String("name", cat.Name))
	return okMessage(c, "Category deleted successfully")
}
