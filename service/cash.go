package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tpv/model"
	"tpv/report"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportMailer delivers the rendered daily report.
type ReportMailer interface {
	SendReport(ctx context.Context, filename string, pdf []byte) error
}

type CashService struct {
	db     *gorm.DB
	mailer ReportMailer
	now    func() time.Time
	render func(report.Daily) ([]byte, error)
}

func NewCashService(db *gorm.DB, mailer ReportMailer) *CashService {
	return &CashService{db: db, mailer: mailer, now: time.Now, render: report.DailyPDF}
}

// Total is what the closed tables have paid so far today.
func (s *CashService) Total(ctx context.Context) (float64, error) {
	var closed []model.ClosedTable
	if err := s.db.WithContext(ctx).Find(&closed).Error; err != nil {
		return 0, fmt.Errorf("cash total: %w", err)
	}
	return PaymentTotal(closed), nil
}

// Close ends the business day. After the password check, the daily record, the
// report and the reset of tables, orders, carts and closed tables are committed
// together, and only once the report has been handed to the mailer. A failure
// anywhere leaves the day open and untouched. Only the closed tables counted in the
// report are removed; a table paid while the close runs stays for the next close.
func (s *CashService) Close(ctx context.Context, password string) (*model.DailyCash, error) {
	if err := s.checkPassword(ctx, password); err != nil {
		return nil, err
	}

	var cash model.DailyCash
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var closed []model.ClosedTable
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id").Find(&closed).Error; err != nil {
			return fmt.Errorf("load closed tables: %w", err)
		}

		now := s.now()
		total := PaymentTotal(closed)
		pdf, err := s.render(report.Daily{Date: now, Tables: closed, Total: total})
		if err != nil {
			return err
		}

		cash = model.DailyCash{Date: now, Total: total, Income: total, Report: pdf}
		if err := tx.Create(&cash).Error; err != nil {
			return fmt.Errorf("create daily cash: %w", err)
		}

		if len(closed) > 0 {
			ids := make([]uint, 0, len(closed))
			for _, ct := range closed {
				ids = append(ids, ct.ID)
			}
			if err := tx.Where("id IN ?", ids).Delete(&model.ClosedTable{}).Error; err != nil {
				return fmt.Errorf("reset closed tables: %w", err)
			}
		}
		for _, m := range []any{&model.OrderItem{}, &model.Order{}, &model.CartItem{}, &model.Cart{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("reset day: %w", err)
			}
		}
		if err := tx.Model(&model.Table{}).Where("1 = 1").Update("total", 0).Error; err != nil {
			return fmt.Errorf("reset tables: %w", err)
		}

		return s.mailer.SendReport(ctx, report.Filename(now), pdf)
	})
	if err != nil {
		return nil, err
	}
	return &cash, nil
}

func (s *CashService) checkPassword(ctx context.Context, password string) error {
	var stored model.Password
	if err := s.db.WithContext(ctx).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPasswordNotSet
		}
		return fmt.Errorf("load password: %w", err)
	}
	if stored.Value == "" {
		return ErrPasswordNotSet
	}
	if password == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Value), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// SetPassword stores a new close password, replacing any previous one.
func (s *CashService) SetPassword(ctx context.Context, password string) error {
	if len(password) < 4 {
		return invalid("La contraseña debe tener al menos 4 caracteres")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored model.Password
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.Password{Value: string(hashed)}).Error
		}
		if err != nil {
			return fmt.Errorf("load password: %w", err)
		}
		return tx.Model(&stored).Update("value", string(hashed)).Error
	})
}

// EnsurePassword seeds the close password when none is stored yet.
func (s *CashService) EnsurePassword(ctx context.Context, password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Password{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count passwords: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	return true, s.SetPassword(ctx, password)
}

// DailyRange lists daily cash records whose date falls between from and to, both days included.
func (s *CashService) DailyRange(ctx context.Context, from, to time.Time) ([]model.DailyCash, error) {
	if to.Before(from) {
		return nil, invalid("La fecha de fin es anterior a la de inicio")
	}
	var records []model.DailyCash
	err := s.db.WithContext(ctx).
		Omit("report").
		Where("date >= ? AND date < ?", from, to.AddDate(0, 0, 1)).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("daily cash: %w", err)
	}
	return records, nil
}

// Report returns the PDF stored with a daily cash record.
func (s *CashService) Report(ctx context.Context, id uint) (*model.DailyCash, error) {
	var cash model.DailyCash
	if err := s.db.WithContext(ctx).First(&cash, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	if len(cash.Report) == 0 {
		return nil, ErrReportNotFound
	}
	return &cash, nil
}
