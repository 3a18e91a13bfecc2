package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"
)

// CatalogService manages categories, products, customers and employees.
type CatalogService struct {
	store      store.Store
	alertLevel int
	logger     *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st store.Store, stockAlertLevel int) *CatalogService {
	return &CatalogService{
		store:      st,
		alertLevel: stockAlertLevel,
		logger:     util.GetLogger(),
	}
}

// CreateCategory creates a new category
func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required: %w", models.ErrValidation)
	}
	return s.store.CreateCategory(ctx, c)
}

// UpdateCategory updates an existing category
func (s *CatalogService) UpdateCategory(ctx context.Context, c *models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required: %w", models.ErrValidation)
	}
	return s.store.UpdateCategory(ctx, c)
}

// DeleteCategory removes a category
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.store.GetCategoryByID(ctx, id)
}

// ListCategories retrieves all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.CategoryID != nil {
		if _, err := s.store.GetCategoryByID(ctx, *p.CategoryID); err != nil {
			return err
		}
	}
	return s.store.CreateProduct(ctx, p)
}

// UpdateProduct updates an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.store.UpdateProduct(ctx, p)
}

// DeleteProduct removes a product. Products referenced by sale or
// invoice lines cannot be deleted; the lines carry price snapshots that
// would dangle.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	refs, err := s.store.CountProductReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("product %d is referenced by %d lines: %w", id, refs, models.ErrValidation)
	}
	return s.store.DeleteProduct(ctx, id)
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// ListProducts retrieves all products, optionally by category
func (s *CatalogService) ListProducts(ctx context.Context, categoryID int64) ([]models.Product, error) {
	if categoryID != 0 {
		return s.store.ListProductsByCategory(ctx, categoryID)
	}
	return s.store.ListProducts(ctx)
}

// ListLowStockProducts retrieves products at or below the configured
// alert level
func (s *CatalogService) ListLowStockProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListLowStockProducts(ctx, s.alertLevel)
}

// CreateCustomer creates a new customer
func (s *CatalogService) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required: %w", models.ErrValidation)
	}
	return s.store.CreateCustomer(ctx, c)
}

// UpdateCustomer updates an existing customer
func (s *CatalogService) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required: %w", models.ErrValidation)
	}
	return s.store.UpdateCustomer(ctx, c)
}

// DeleteCustomer removes a customer
func (s *CatalogService) DeleteCustomer(ctx context.Context, id int64) error {
	return s.store.DeleteCustomer(ctx, id)
}

// GetCustomer retrieves a customer by ID
func (s *CatalogService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.store.GetCustomerByID(ctx, id)
}

// ListCustomers retrieves all customers
func (s *CatalogService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// CreateEmployee creates a new employee
func (s *CatalogService) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("employee name is required: %w", models.ErrValidation)
	}
	return s.store.CreateEmployee(ctx, e)
}

// UpdateEmployee updates an existing employee
func (s *CatalogService) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("employee name is required: %w", models.ErrValidation)
	}
	return s.store.UpdateEmployee(ctx, e)
}

// DeleteEmployee removes an employee
func (s *CatalogService) DeleteEmployee(ctx context.Context, id int64) error {
	return s.store.DeleteEmployee(ctx, id)
}

// GetEmployee retrieves an employee by ID
func (s *CatalogService) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	return s.store.GetEmployeeByID(ctx, id)
}

// ListEmployees retrieves all employees
func (s *CatalogService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return s.store.ListEmployees(ctx)
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required: %w", models.ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product price must not be negative: %w", models.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product stock must not be negative: %w", models.ErrValidation)
	}
	return nil
}
