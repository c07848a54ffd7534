package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"tpv/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventNewOrder is broadcast after every committed order.
const EventNewOrder = "nuevoPedido"

// Publisher fans an event out to connected displays. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any)
}

type OrderLine struct {
	ProductID          uint            `json:"producto"`
	Quantity           int             `json:"cantidad"`
	Kind               string          `json:"tipo"`
	Price              float64         `json:"precio"`
	PrepState          model.PrepState `json:"estadoPreparacion"`
	RemovedIngredients []string        `json:"ingredientesEliminados"`
	Notes              []string        `json:"especificaciones"`
}

type CreateOrderRequest struct {
	TableID   uint        `json:"mesa"`
	Items     []OrderLine `json:"productos"`
	Total     float64     `json:"total"`
	Diners    int         `json:"comensales"`
	Allergies string      `json:"alergias"`
	Bread     bool        `json:"pan"`
	CartID    uint        `json:"cartId"`
}

func (r CreateOrderRequest) validate() error {
	if r.TableID == 0 {
		return invalid("La mesa es obligatoria")
	}
	if r.Total < 0 {
		return invalid("El total no puede ser negativo")
	}
	return validateLines(r.Items)
}

func validateLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return invalid("El pedido necesita al menos un producto")
	}
	for _, l := range lines {
		if l.ProductID == 0 {
			return invalid("Producto no válido")
		}
		if l.Quantity <= 0 {
			return invalid("La cantidad debe ser mayor que cero")
		}
		if l.PrepState != "" && !l.PrepState.Valid() {
			return invalid("Estado de preparación no válido")
		}
	}
	return nil
}

// UpdateOrderRequest carries only the fields the caller wants to change.
type UpdateOrderRequest struct {
	State     *model.OrderState `json:"estado"`
	Items     *[]OrderLine      `json:"productos"`
	Total     *float64          `json:"total"`
	Diners    *int              `json:"comensales"`
	Allergies *string           `json:"alergias"`
	Bread     *bool             `json:"pan"`
}

// PendingOrder is an order as shown on a kitchen or bar screen.
type PendingOrder struct {
	model.Order
	ReadyToFinish bool `json:"listoParaTerminar"`
}

type OrderService struct {
	db  *gorm.DB
	pub Publisher
}

func NewOrderService(db *gorm.DB, pub Publisher) *OrderService {
	return &OrderService{db: db, pub: pub}
}

// Create persists an order, charges it to its table, records a sale per line and
// takes the quantities out of stock. Everything happens in one transaction; the
// table and product rows are locked so concurrent orders cannot lose updates.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	order := model.Order{
		TableID:   req.TableID,
		Total:     Round2(req.Total),
		Diners:    req.Diners,
		Allergies: req.Allergies,
		Bread:     req.Bread,
		State:     model.OrderPending,
		Ref:       uuid.NewString(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, req.TableID)
		if err != nil {
			return err
		}

		products, err := lockProducts(tx, req.Items)
		if err != nil {
			return err
		}
		for _, line := range req.Items {
			product := products[line.ProductID]
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}
			product.Stock -= line.Quantity
			if err := tx.Model(product).Update("stock", gorm.Expr("stock - ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("update stock: %w", err)
			}
			order.Items = append(order.Items, newItem(line, product))
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, it := range order.Items {
			sale := model.Sale{
				ProductID: it.ProductID,
				OrderID:   order.ID,
				ItemID:    it.ID,
				Quantity:  it.Quantity,
				Total:     lineAmount(it.Price, it.Quantity),
			}
			if err := tx.Create(&sale).Error; err != nil {
				return fmt.Errorf("create sale: %w", err)
			}
		}

		if err := tx.Model(table).Update("total", Sum(table.Total, order.Total)).Error; err != nil {
			return fmt.Errorf("update table: %w", err)
		}

		if req.CartID != 0 {
			if err := deleteCart(tx, req.CartID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.pub != nil {
		s.pub.Publish(ctx, EventNewOrder, order)
	}
	return &order, nil
}

func newItem(line OrderLine, product *model.Product) model.OrderItem {
	it := model.OrderItem{
		ProductID:          product.ID,
		Quantity:           line.Quantity,
		Kind:               line.Kind,
		Price:              Round2(line.Price),
		PrepState:          line.PrepState,
		RemovedIngredients: line.RemovedIngredients,
		Notes:              line.Notes,
	}
	if it.Kind == "" {
		it.Kind = product.Kind
	}
	if it.Price == 0 {
		it.Price = product.Price
	}
	if it.PrepState == "" {
		it.PrepState = model.PrepPending
	}
	if it.RemovedIngredients == nil {
		it.RemovedIngredients = []string{}
	}
	if it.Notes == nil {
		it.Notes = []string{}
	}
	return it
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product")
}

func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := preloadOrder(s.db.WithContext(ctx)).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := preloadOrder(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// Update applies the supplied fields. A new total moves the table total by the difference.
func (s *OrderService) Update(ctx context.Context, id uint, req UpdateOrderRequest) (*model.Order, error) {
	if req.State != nil && !req.State.Valid() {
		return nil, invalid("Estado de pedido no válido")
	}
	if req.Total != nil && *req.Total < 0 {
		return nil, invalid("El total no puede ser negativo")
	}
	if req.Items != nil {
		if err := validateLines(*req.Items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if req.State != nil {
			updates["state"] = *req.State
		}
		if req.Diners != nil {
			updates["diners"] = *req.Diners
		}
		if req.Allergies != nil {
			updates["allergies"] = *req.Allergies
		}
		if req.Bread != nil {
			updates["bread"] = *req.Bread
		}
		if req.Total != nil {
			total := Round2(*req.Total)
			if delta := Sum(total, -order.Total); delta != 0 {
				if err := adjustTable(tx, order.TableID, delta); err != nil && !errors.Is(err, ErrTableNotFound) {
					return err
				}
			}
			updates["total"] = total
		}
		if len(updates) > 0 {
			if err := tx.Model(order).Updates(updates).Error; err != nil {
				return fmt.Errorf("update order: %w", err)
			}
		}

		if req.Items != nil {
			if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
			for _, line := range *req.Items {
				var product model.Product
				if err := tx.First(&product, line.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: %d", ErrProductNotFound, line.ProductID)
					}
					return fmt.Errorf("load product: %w", err)
				}
				it := newItem(line, &product)
				it.OrderID = order.ID
				if err := tx.Create(&it).Error; err != nil {
					return fmt.Errorf("replace items: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the order and its items and takes its total off the table.
// The order goes even when its table no longer exists.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Delete(order).Error; err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		err = adjustTable(tx, order.TableID, -order.Total)
		if errors.Is(err, ErrTableNotFound) {
			return nil
		}
		return err
	})
}

// KindsFor maps the kitchen screen filter to item kinds.
func KindsFor(filter string) []string {
	switch filter {
	case "":
		return nil
	case model.KindDish:
		return []string{model.KindDish, model.KindTapa}
	default:
		return []string{filter}
	}
}

// Pending lists pending orders, oldest first, keeping only items of the given kinds.
// Orders with nothing left to show are dropped.
func (s *OrderService) Pending(ctx context.Context, kinds []string) ([]PendingOrder, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Where("state = ?", model.OrderPending).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}

	pending := make([]PendingOrder, 0, len(orders))
	for _, o := range orders {
		o.FilterItems(kinds...)
		if len(o.Items) == 0 {
			continue
		}
		pending = append(pending, PendingOrder{Order: o, ReadyToFinish: o.ReadyToFinish()})
	}
	return pending, nil
}

// SetItemState marks one line of an order as pending or ready.
func (s *OrderService) SetItemState(ctx context.Context, orderID, itemID uint, state model.PrepState) (*model.OrderItem, error) {
	if !state.Valid() {
		return nil, invalid("Estado de preparación no válido")
	}
	var item model.OrderItem
	db := s.db.WithContext(ctx)
	if err := db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if err := db.Model(&item).Update("prep_state", state).Error; err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

// RemoveItem takes one line off an order, refunds its amount from the order and the
// table, returns the quantity to stock, drops the line's sale and leaves an audit
// record naming the user.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID, userID uint) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		var item model.OrderItem
		if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("get item: %w", err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&model.Sale{}).Error; err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		total := Sum(order.Total, -lineAmount(item.Price, item.Quantity))
		if total < 0 {
			total = 0
		}
		if err := tx.Model(order).Update("total", total).Error; err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := adjustTable(tx, order.TableID, Sum(total, -order.Total)); err != nil && !errors.Is(err, ErrTableNotFound) {
			return err
		}

		res := tx.Model(&model.Product{}).Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity))
		if res.Error != nil {
			return fmt.Errorf("restock: %w", res.Error)
		}

		audit := model.RemovalAudit{
			ProductID: item.ProductID,
			OrderID:   order.ID,
			TableID:   order.TableID,
			UserID:    userID,
			Quantity:  item.Quantity,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("create audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Removals lists the removal audit trail, newest first.
func (s *OrderService) Removals(ctx context.Context) ([]model.RemovalAudit, error) {
	var audits []model.RemovalAudit
	err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Order").
		Preload("Table").
		Preload("User").
		Order("created_at DESC").
		Find(&audits).Error
	if err != nil {
		return nil, fmt.Errorf("list removals: %w", err)
	}
	return audits, nil
}

func lockTable(tx *gorm.DB, id uint) (*model.Table, error) {
	var table model.Table
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("load table: %w", err)
	}
	return &table, nil
}

func lockOrder(tx *gorm.DB, id uint) (*model.Order, error) {
	var order model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

func lockProduct(tx *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return &product, nil
}

// lockProducts locks every product named by the lines in ascending id order, so
// orders listing the same products in different orders cannot deadlock.
func lockProducts(tx *gorm.DB, lines []OrderLine) (map[uint]*model.Product, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	products := make(map[uint]*model.Product, len(ids))
	for _, id := range ids {
		p, err := lockProduct(tx, id)
		if err != nil {
			return nil, err
		}
		products[id] = p
	}
	return products, nil
}

// adjustTable moves a table's total by delta under a row lock.
func adjustTable(tx *gorm.DB, tableID uint, delta float64) error {
	table, err := lockTable(tx, tableID)
	if err != nil {
		return err
	}
	if err := tx.Model(table).Update("total", Sum(table.Total, delta)).Error; err != nil {
		return fmt.Errorf("update table: %w", err)
	}
	return nil
}
