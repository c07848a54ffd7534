package service

import (
	"context"
	"errors"
	"fmt"

	"tpv/model"

	"gorm.io/gorm"
)

type CreateCartRequest struct {
	TableID uint        `json:"mesa"`
	Items   []OrderLine `json:"productos"`
}

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Create stages items for a table. Products must exist; stock is only taken when
// the cart becomes an order.
func (s *CartService) Create(ctx context.Context, req CreateCartRequest) (*model.Cart, error) {
	if req.TableID == 0 {
		return nil, invalid("La mesa es obligatoria")
	}
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	cart := model.Cart{TableID: req.TableID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.Table{}, req.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return fmt.Errorf("create cart: %w", err)
		}
		for _, line := range req.Items {
			var product model.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrProductNotFound, line.ProductID)
				}
				return fmt.Errorf("create cart: %w", err)
			}
			it := newItem(line, &product)
			cart.Items = append(cart.Items, model.CartItem{
				ProductID:          it.ProductID,
				Quantity:           it.Quantity,
				Kind:               it.Kind,
				Price:              it.Price,
				RemovedIngredients: it.RemovedIngredients,
				Notes:              it.Notes,
			})
		}
		if err := tx.Create(&cart).Error; err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartService) Get(ctx context.Context, id uint) (*model.Cart, error) {
	var cart model.Cart
	if err := s.db.WithContext(ctx).Preload("Items").First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) Delete(ctx context.Context, id uint) error {
	var found int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Cart{}).Where("id = ?", id).Count(&found).Error; err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if found == 0 {
		return ErrCartNotFound
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return deleteCart(tx, id)
	})
}

// deleteCart removes a cart and its items. A missing cart is not an error.
func deleteCart(tx *gorm.DB, id uint) error {
	if err := tx.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	if err := tx.Delete(&model.Cart{}, id).Error; err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
