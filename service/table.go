package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"tpv/model"

	"gorm.io/gorm"
)

type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

func (s *TableService) List(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	if err := s.db.WithContext(ctx).Order("number").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*model.Table, error) {
	var table model.Table
	err := s.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Orders.Items").
		First(&table, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, number int) (*model.Table, error) {
	if number <= 0 {
		return nil, invalid("Número de mesa no válido")
	}
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Table{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	if count > 0 {
		return nil, kind(ErrDuplicate, fmt.Sprintf("La mesa %d ya existe", number))
	}

	table := model.Table{Number: number, Orders: []model.Order{}}
	if err := db.Create(&table).Error; err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &table, nil
}

// Delete refuses tables that still have orders charged to them.
func (s *TableService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, id)
		if err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&model.Order{}).Where("table_id = ?", table.ID).Count(&open).Error; err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		if open > 0 {
			return invalid("La mesa tiene pedidos abiertos")
		}
		if err := tx.Delete(table).Error; err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		return nil
	})
}

// Close snapshots a table with how it was paid, then clears it for the next guests.
// The payment breakdown has to cover the table total to the cent.
func (s *TableService) Close(ctx context.Context, id uint, paid model.PaymentBreakdown) (*model.ClosedTable, error) {
	if paid.Cash < 0 || paid.Card < 0 {
		return nil, invalid("Los importes de pago no pueden ser negativos")
	}

	var closed model.ClosedTable
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, id)
		if err != nil {
			return err
		}
		if table.Total <= 0 {
			return invalid("La mesa no tiene nada que cobrar")
		}
		if math.Abs(Sum(paid.Cash, paid.Card, -table.Total)) > 0.01 {
			return invalid(fmt.Sprintf("El pago no cuadra con el total de la mesa (%.2f)", table.Total))
		}

		closed = model.ClosedTable{
			TableID: table.ID,
			Number:  table.Number,
			Total:   table.Total,
			PaymentMethod: model.PaymentBreakdown{
				Cash: Round2(paid.Cash),
				Card: Round2(paid.Card),
			},
		}
		if err := tx.Create(&closed).Error; err != nil {
			return fmt.Errorf("close table: %w", err)
		}

		orders := tx.Model(&model.Order{}).Select("id").Where("table_id = ?", table.ID)
		if err := tx.Where("order_id IN (?)", orders).Delete(&model.OrderItem{}).Error; err != nil {
			return fmt.Errorf("close table: %w", err)
		}
		if err := tx.Where("table_id = ?", table.ID).Delete(&model.Order{}).Error; err != nil {
			return fmt.Errorf("close table: %w", err)
		}
		if err := tx.Model(table).Update("total", 0).Error; err != nil {
			return fmt.Errorf("close table: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &closed, nil
}
