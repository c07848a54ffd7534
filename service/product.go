package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tpv/model"

	"gorm.io/gorm"
)

type ProductInput struct {
	Name  string  `json:"nombre"`
	Kind  string  `json:"tipo"`
	Price float64 `json:"precio"`
	Stock int     `json:"stock"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("El nombre del producto es obligatorio")
	}
	if in.Price < 0 {
		return invalid("El precio no puede ser negativo")
	}
	if in.Stock < 0 {
		return invalid("El stock no puede ser negativo")
	}
	return nil
}

// ProductPatch carries only the fields to change.
type ProductPatch struct {
	Name  *string  `json:"nombre"`
	Kind  *string  `json:"tipo"`
	Price *float64 `json:"precio"`
	Stock *int     `json:"stock"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List returns products ordered by name, optionally narrowed to one kind.
func (s *ProductService) List(ctx context.Context, kind string) ([]model.Product, error) {
	var products []model.Product
	query := s.db.WithContext(ctx).Order("name")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &product, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := fromInput(in)
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

// Import inserts every row in one statement. Nothing is inserted if a row is invalid.
func (s *ProductService) Import(ctx context.Context, rows []ProductInput) (int, error) {
	if len(rows) == 0 {
		return 0, invalid("No hay filas válidas")
	}
	products := make([]model.Product, 0, len(rows))
	for i, in := range rows {
		if err := in.validate(); err != nil {
			return 0, fmt.Errorf("fila %d: %w", i+2, err)
		}
		products = append(products, fromInput(in))
	}
	if err := s.db.WithContext(ctx).Create(&products).Error; err != nil {
		return 0, fmt.Errorf("import products: %w", err)
	}
	return len(products), nil
}

// Update writes only the fields present in the patch, under a row lock, so stock
// taken by concurrent orders is never written back.
func (s *ProductService) Update(ctx context.Context, id uint, patch ProductPatch) (*model.Product, error) {
	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockProduct(tx, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		updates := map[string]any{}
		if patch.Name != nil {
			locked.Name = strings.TrimSpace(*patch.Name)
			updates["name"] = locked.Name
		}
		if patch.Kind != nil {
			locked.Kind = *patch.Kind
			updates["kind"] = locked.Kind
		}
		if patch.Price != nil {
			locked.Price = Round2(*patch.Price)
			updates["price"] = locked.Price
		}
		if patch.Stock != nil {
			locked.Stock = *patch.Stock
			updates["stock"] = locked.Stock
		}
		in := ProductInput{Name: locked.Name, Kind: locked.Kind, Price: locked.Price, Stock: locked.Stock}
		if err := in.validate(); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(locked).Updates(updates).Error; err != nil {
				return fmt.Errorf("update product: %w", err)
			}
		}
		product = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Sales lists the sales recorded for a product, newest first.
func (s *ProductService) Sales(ctx context.Context, id uint) ([]model.Sale, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var sales []model.Sale
	if err := s.db.WithContext(ctx).Where("product_id = ?", id).Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("product sales: %w", err)
	}
	return sales, nil
}

func fromInput(in ProductInput) model.Product {
	return model.Product{
		Name:  strings.TrimSpace(in.Name),
		Kind:  in.Kind,
		Price: Round2(in.Price),
		Stock: in.Stock,
	}
}
