//go:build integration
// +build integration

package service

import (
	"context"
	"sync"
	"testing"

	"tpv/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewOrderService(db, pub)

	table := seedTable(t, db, 3, 12.5)
	croquetas := seedProduct(t, db, "Croquetas", model.KindTapa, 7.5, 10)
	cart, err := NewCartService(db).Create(ctx, CreateCartRequest{
		TableID: table.ID,
		Items:   []OrderLine{{ProductID: croquetas.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	order, err := svc.Create(ctx, CreateOrderRequest{
		TableID:   table.ID,
		Items:     []OrderLine{{ProductID: croquetas.ID, Quantity: 3, Notes: []string{"bien hechas"}}},
		Total:     22.499,
		Diners:    2,
		Allergies: "gluten",
		CartID:    cart.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 22.5, order.Total)
	assert.Equal(t, model.OrderPending, order.State)
	assert.NotEmpty(t, order.Ref)
	require.Len(t, order.Items, 1)
	assert.Equal(t, model.KindTapa, order.Items[0].Kind)
	assert.Equal(t, 7.5, order.Items[0].Price)
	assert.Equal(t, model.PrepPending, order.Items[0].PrepState)

	assert.Equal(t, 35.0, reload[model.Table](t, db, table.ID).Total)
	assert.Equal(t, 7, reload[model.Product](t, db, croquetas.ID).Stock)

	var sales []model.Sale
	require.NoError(t, db.Where("product_id = ? AND order_id = ?", croquetas.ID, order.ID).Find(&sales).Error)
	require.Len(t, sales, 1)
	assert.Equal(t, 3, sales[0].Quantity)
	assert.Equal(t, 22.5, sales[0].Total)

	assert.Zero(t, count[model.Cart](t, db))
	assert.Zero(t, count[model.CartItem](t, db))

	require.Equal(t, 1, pub.count())
	assert.Equal(t, EventNewOrder, pub.events[0].event)

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Table)
	assert.Equal(t, 3, got.Table.Number)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Croquetas", got.Items[0].Product.Name)
	assert.Equal(t, []string{"bien hechas"}, got.Items[0].Notes)
}

func TestCreateOrderMissingTable(t *testing.T) {
	db := resetDB(t)
	pub := &fakePublisher{}
	p := seedProduct(t, db, "Agua", model.KindDrink, 1.8, 5)

	_, err := NewOrderService(db, pub).Create(context.Background(), CreateOrderRequest{
		TableID: 999,
		Items:   []OrderLine{{ProductID: p.ID, Quantity: 1}},
		Total:   1.8,
	})
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Zero(t, pub.count())
}

func TestCreateOrderRollsBackOnMissingProduct(t *testing.T) {
	db := resetDB(t)
	table := seedTable(t, db, 1, 0)
	agua := seedProduct(t, db, "Agua", model.KindDrink, 1.8, 5)

	_, err := NewOrderService(db, nil).Create(context.Background(), CreateOrderRequest{
		TableID: table.ID,
		Items: []OrderLine{
			{ProductID: agua.ID, Quantity: 2},
			{ProductID: agua.ID + 1000, Quantity: 1},
		},
		Total: 3.6,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, 5, reload[model.Product](t, db, agua.ID).Stock)
	assert.Equal(t, 0.0, reload[model.Table](t, db, table.ID).Total)
	assert.Zero(t, count[model.Order](t, db))
	assert.Zero(t, count[model.Sale](t, db))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := resetDB(t)
	table := seedTable(t, db, 1, 0)
	tarta := seedProduct(t, db, "Tarta", model.KindDessert, 4, 2)

	_, err := NewOrderService(db, nil).Create(context.Background(), CreateOrderRequest{
		TableID: table.ID,
		Items: []OrderLine{
			{ProductID: tarta.ID, Quantity: 1},
			{ProductID: tarta.ID, Quantity: 2},
		},
		Total: 12,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, reload[model.Product](t, db, tarta.ID).Stock)
}

func TestConcurrentOrdersKeepTableTotal(t *testing.T) {
	db := resetDB(t)
	table := seedTable(t, db, 8, 0)
	cana := seedProduct(t, db, "Caña", model.KindDrink, 1.1, 100)
	svc := NewOrderService(db, nil)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateOrderRequest{
				TableID: table.ID,
				Items:   []OrderLine{{ProductID: cana.ID, Quantity: 1}},
				Total:   1.1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 11.0, reload[model.Table](t, db, table.ID).Total)
	assert.Equal(t, 90, reload[model.Product](t, db, cana.ID).Stock)
}

func TestUpdateOrder(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	svc := NewOrderService(db, nil)
	table := seedTable(t, db, 2, 0)
	plato := seedProduct(t, db, "Paella", model.KindDish, 14, 20)
	postre := seedProduct(t, db, "Flan", model.KindDessert, 4, 20)

	order, err := svc.Create(ctx, CreateOrderRequest{
		TableID: table.ID,
		Items:   []OrderLine{{ProductID: plato.ID, Quantity: 1}},
		Total:   14,
	})
	require.NoError(t, err)

	total := 18.004
	state := model.OrderReady
	diners := 3
	items := []OrderLine{
		{ProductID: plato.ID, Quantity: 1, PrepState: model.PrepReady},
		{ProductID: postre.ID, Quantity: 1},
	}
	updated, err := svc.Update(ctx, order.ID, UpdateOrderRequest{
		State:  &state,
		Total:  &total,
		Diners: &diners,
		Items:  &items,
	})
	require.NoError(t, err)

	assert.Equal(t, 18.0, updated.Total)
	assert.Equal(t, model.OrderReady, updated.State)
	assert.Equal(t, 3, updated.Diners)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, 18.0, reload[model.Table](t, db, table.ID).Total)

	bad := model.OrderState("cobrado")
	_, err = svc.Update(ctx, order.ID, UpdateOrderRequest{State: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, order.ID+1000, UpdateOrderRequest{Diners: &diners})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteOrder(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	svc := NewOrderService(db, nil)
	table := seedTable(t, db, 5, 0)
	p := seedProduct(t, db, "Ensalada", model.KindDish, 9.9, 10)

	first, err := svc.Create(ctx, CreateOrderRequest{TableID: table.ID, Items: []OrderLine{{ProductID: p.ID, Quantity: 1}}, Total: 9.9})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateOrderRequest{TableID: table.ID, Items: []OrderLine{{ProductID: p.ID, Quantity: 2}}, Total: 19.8})
	require.NoError(t, err)
	assert.Equal(t, 29.7, reload[model.Table](t, db, table.ID).Total)

	require.NoError(t, svc.Delete(ctx, first.ID))

	got, err := NewTableService(db).Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.8, got.Total)
	require.Len(t, got.Orders, 1)
	assert.NotEqual(t, first.ID, got.Orders[0].ID)

	assert.ErrorIs(t, svc.Delete(ctx, first.ID), ErrOrderNotFound)
}

func TestDeleteOrderWithoutTable(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	svc := NewOrderService(db, nil)
	table := seedTable(t, db, 6, 0)
	p := seedProduct(t, db, "Café", model.KindDrink, 1.5, 10)

	order, err := svc.Create(ctx, CreateOrderRequest{TableID: table.ID, Items: []OrderLine{{ProductID: p.ID, Quantity: 1}}, Total: 1.5})
	require.NoError(t, err)
	require.NoError(t, db.Delete(&model.Table{}, table.ID).Error)

	require.NoError(t, svc.Delete(ctx, order.ID))
	assert.Zero(t, count[model.Order](t, db))
	assert.Zero(t, count[model.OrderItem](t, db))
}

func TestPendingAndItemState(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	svc := NewOrderService(db, nil)
	table := seedTable(t, db, 9, 0)
	plato := seedProduct(t, db, "Pulpo", model.KindDish, 16, 10)
	tapa := seedProduct(t, db, "Bravas", model.KindTapa, 6, 10)
	bebida := seedProduct(t, db, "Vino", model.KindDrink, 3, 10)

	kitchen, err := svc.Create(ctx, CreateOrderRequest{
		TableID: table.ID,
		Items: []OrderLine{
			{ProductID: plato.ID, Quantity: 1},
			{ProductID: tapa.ID, Quantity: 1},
			{ProductID: bebida.ID, Quantity: 2},
		},
		Total: 28,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateOrderRequest{
		TableID: table.ID,
		Items:   []OrderLine{{ProductID: bebida.ID, Quantity: 1}},
		Total:   3,
	})
	require.NoError(t, err)

	pending, err := svc.Pending(ctx, KindsFor(model.KindDish))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, kitchen.ID, pending[0].ID)
	assert.Len(t, pending[0].Items, 2)
	assert.False(t, pending[0].ReadyToFinish)

	for _, it := range pending[0].Items {
		_, err := svc.SetItemState(ctx, kitchen.ID, it.ID, model.PrepReady)
		require.NoError(t, err)
	}
	pending, err = svc.Pending(ctx, KindsFor(model.KindDish))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].ReadyToFinish)

	bar, err := svc.Pending(ctx, KindsFor(model.KindDrink))
	require.NoError(t, err)
	assert.Len(t, bar, 2)

	_, err = svc.SetItemState(ctx, kitchen.ID, 999999, model.PrepReady)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = svc.SetItemState(ctx, kitchen.ID, pending[0].Items[0].ID, "quemado")
	assert.ErrorIs(t, err, ErrValidation)

	ready := model.OrderReady
	_, err = svc.Update(ctx, kitchen.ID, UpdateOrderRequest{State: &ready})
	require.NoError(t, err)
	pending, err = svc.Pending(ctx, KindsFor(model.KindDish))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRemoveItem(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	svc := NewOrderService(db, nil)
	table := seedTable(t, db, 4, 0)
	plato := seedProduct(t, db, "Chuletón", model.KindDish, 30, 5)
	bebida := seedProduct(t, db, "Agua", model.KindDrink, 2, 5)
	user, err := NewUserService(db).Create(ctx, CreateUserRequest{Name: "Ana", Login: "ana", Password: "1234"})
	require.NoError(t, err)

	order, err := svc.Create(ctx, CreateOrderRequest{
		TableID: table.ID,
		Items: []OrderLine{
			{ProductID: plato.ID, Quantity: 1},
			{ProductID: bebida.ID, Quantity: 2},
		},
		Total: 34,
	})
	require.NoError(t, err)

	var drinkItem uint
	for _, it := range order.Items {
		if it.ProductID == bebida.ID {
			drinkItem = it.ID
		}
	}

	updated, err := svc.RemoveItem(ctx, order.ID, drinkItem, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Total)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, 30.0, reload[model.Table](t, db, table.ID).Total)
	assert.Equal(t, 5, reload[model.Product](t, db, bebida.ID).Stock)

	audits, err := svc.Removals(ctx)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.NotNil(t, audits[0].User)
	assert.Equal(t, "Ana", audits[0].User.Name)
	require.NotNil(t, audits[0].Product)
	assert.Equal(t, "Agua", audits[0].Product.Name)
	require.NotNil(t, audits[0].Table)
	assert.Equal(t, 4, audits[0].Table.Number)
	assert.Equal(t, 2, audits[0].Quantity)

	products := NewProductService(db)
	drinkSales, err := products.Sales(ctx, bebida.ID)
	require.NoError(t, err)
	assert.Empty(t, drinkSales)
	dishSales, err := products.Sales(ctx, plato.ID)
	require.NoError(t, err)
	assert.Len(t, dishSales, 1)

	_, err = svc.RemoveItem(ctx, order.ID, drinkItem, user.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestConcurrentOrdersWithProductsInOppositeOrder(t *testing.T) {
	db := resetDB(t)
	table := seedTable(t, db, 10, 0)
	a := seedProduct(t, db, "Vino", model.KindDrink, 3, 100)
	b := seedProduct(t, db, "Queso", model.KindTapa, 8, 100)
	svc := NewOrderService(db, nil)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		lines := []OrderLine{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}}
		if i%2 == 1 {
			lines[0], lines[1] = lines[1], lines[0]
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateOrderRequest{TableID: table.ID, Items: lines, Total: 11})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 80, reload[model.Product](t, db, a.ID).Stock)
	assert.Equal(t, 80, reload[model.Product](t, db, b.ID).Stock)
	assert.Equal(t, 220.0, reload[model.Table](t, db, table.ID).Total)
}

func TestProductUpdateKeepsStockTakenByOrders(t *testing.T) {
	db := resetDB(t)
	ctx := context.Background()
	table := seedTable(t, db, 11, 0)
	p := seedProduct(t, db, "Tosta", model.KindTapa, 4, 50)
	orders := NewOrderService(db, nil)
	products := NewProductService(db)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := orders.Create(ctx, CreateOrderRequest{TableID: table.ID, Items: []OrderLine{{ProductID: p.ID, Quantity: 2}}, Total: 8})
			errs <- err
		}()
		go func(i int) {
			defer wg.Done()
			price := 4.0 + float64(i)/10
			_, err := products.Update(ctx, p.ID, ProductPatch{Price: &price})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 30, reload[model.Product](t, db, p.ID).Stock)

	name := "Tosta de anchoas"
	updated, err := products.Update(ctx, p.ID, ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 30, updated.Stock)

	_, err = products.Update(ctx, p.ID+1000, ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
	empty := " "
	_, err = products.Update(ctx, p.ID, ProductPatch{Name: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}
