// Package service реализует бизнес-логику бэк-офиса типографии.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/cashback"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/jalali"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/orders"
	"github.com/mehrab-nt/TeamGraphic-sub000/internal/pricing"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateCredit(ctx context.Context, ownerID int64) (*model.Credit, error)
	GetCredit(ctx context.Context, creditID int64) (*model.Credit, error)
	GetCreditByOwner(ctx context.Context, ownerID int64) (*model.Credit, error)
	AddToCreditTotal(ctx context.Context, creditID int64, delta int64) error
	RecomputeCreditTotal(ctx context.Context, creditID int64) (int64, error)
	CreateDeposit(ctx context.Context, d *model.Deposit) (int64, error)
	ResolveDeposit(ctx context.Context, depositID int64, confirmed bool, resolvedBy int64) error
	GetDepositsByCredit(ctx context.Context, creditID int64) ([]model.Deposit, error)
	ListTiers(ctx context.Context) ([]model.CashBackPercent, error)
	GetCashBack(ctx context.Context, creditID int64) (*model.CashBack, error)
	MutateCashBack(ctx context.Context, creditID int64, mutate func(cb *model.CashBack) (*model.Deposit, error)) error
	ListActiveCashBackIDs(ctx context.Context) ([]int64, error)
	SaveSheet(ctx context.Context, s *model.Sheet) (int64, error)
	SaveCutSize(ctx context.Context, s *model.CutSize) (int64, error)
	ListSheets(ctx context.Context) ([]model.Sheet, error)
	ListCutSizes(ctx context.Context) ([]model.CutSize, error)
	UpsertSheetPrice(ctx context.Context, sheetID, sizeID int64, price float64) error
	GetSheetPrice(ctx context.Context, sheetID, sizeID int64) (float64, error)
}

// Service содержит бизнес-логику бэк-офиса типографии.
type Service struct {
	repo       Repository
	ordersFeed *orders.Client
	logger     *zap.Logger
	now        func() time.Time
	feedCursor int64
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом ленты заказов.
func NewService(repo Repository, ordersFeed *orders.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		ordersFeed: ordersFeed,
		logger:     logger,
		now:        time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterCredit создаёт кредитный счёт и запись кэшбэка для нового владельца.
func (s *Service) RegisterCredit(ctx context.Context, ownerID int64) (*model.Credit, error) {
	return s.repo.CreateCredit(ctx, ownerID)
}

// GetCredit возвращает кредитный счёт с текущим балансом.
func (s *Service) GetCredit(ctx context.Context, creditID int64) (*model.Credit, error) {
	return s.repo.GetCredit(ctx, creditID)
}

// CreateDeposit создаёт депозит. Пустые статус и код отслеживания заполняются
// значениями по умолчанию; депозит AUTO применяется к балансу немедленно.
func (s *Service) CreateDeposit(ctx context.Context, d model.Deposit) (int64, error) {
	if d.TotalPrice < 0 {
		return 0, errors.New("deposit amount must not be negative")
	}
	if d.ConfirmStatus == "" {
		d.ConfirmStatus = model.ConfirmStatusPending
	}
	if d.DepositType == "" {
		d.DepositType = model.DepositTypeManual
	}
	if d.TransactionType == "" {
		d.TransactionType = model.TransactionTypeCredit
	}
	if d.TrackingCode == "" {
		d.TrackingCode = uuid.NewString()
	}
	return s.repo.CreateDeposit(ctx, &d)
}

// ConfirmDeposit подтверждает ожидающий депозит и применяет его к балансу.
func (s *Service) ConfirmDeposit(ctx context.Context, depositID, employeeID int64) error {
	return s.repo.ResolveDeposit(ctx, depositID, true, employeeID)
}

// RejectDeposit отклоняет ожидающий депозит без влияния на баланс.
func (s *Service) RejectDeposit(ctx context.Context, depositID, employeeID int64) error {
	return s.repo.ResolveDeposit(ctx, depositID, false, employeeID)
}

// GetDeposits возвращает книгу депозитов счёта.
func (s *Service) GetDeposits(ctx context.Context, creditID int64) ([]model.Deposit, error) {
	return s.repo.GetDepositsByCredit(ctx, creditID)
}

// RecomputeBalance пересчитывает баланс счёта заново по книге депозитов.
func (s *Service) RecomputeBalance(ctx context.Context, creditID int64) (int64, error) {
	return s.repo.RecomputeCreditTotal(ctx, creditID)
}

// GetCashBack возвращает запись кэшбэка счёта.
func (s *Service) GetCashBack(ctx context.Context, creditID int64) (*model.CashBack, error) {
	return s.repo.GetCashBack(ctx, creditID)
}

// RecordOrder применяет событие заказа к записи кэшбэка владельца.
func (s *Service) RecordOrder(ctx context.Context, ev model.OrderEvent) error {
	credit, err := s.repo.GetCreditByOwner(ctx, ev.OwnerID)
	if err != nil {
		return err
	}

	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return err
	}

	return s.repo.MutateCashBack(ctx, credit.ID, func(cb *model.CashBack) (*model.Deposit, error) {
		cashback.RecordOrder(cb, tiers, ev, s.now())
		return nil, nil
	})
}

// ConfirmCashBack подтверждает последний закрытый период кэшбэка счёта.
// Возвращает выплаченную сумму; повторное подтверждение возвращает 0.
func (s *Service) ConfirmCashBack(ctx context.Context, creditID, employeeID int64) (int64, error) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return 0, err
	}

	var paid int64
	err = s.repo.MutateCashBack(ctx, creditID, func(cb *model.CashBack) (*model.Deposit, error) {
		dep, amount, err := cashback.Confirm(cb, tiers, s.now(), employeeID)
		if err != nil {
			return nil, err
		}
		paid = amount
		if dep != nil {
			dep.TrackingCode = uuid.NewString()
		}
		return dep, nil
	})
	if err != nil {
		return 0, err
	}

	return paid, nil
}

// ClosePeriods закрывает завершившийся месяц джалали у всех активных записей
// кэшбэка. Записи независимы: ошибка одной не прерывает остальные.
func (s *Service) ClosePeriods(ctx context.Context) error {
	ids, err := s.repo.ListActiveCashBackIDs(ctx)
	if err != nil {
		return err
	}

	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, id := range ids {
		err := s.repo.MutateCashBack(ctx, id, func(cb *model.CashBack) (*model.Deposit, error) {
			cashback.ClosePeriod(cb, tiers, now)
			return nil, nil
		})
		if err != nil {
			s.logger.Error("close cashback period", zap.Int64("creditID", id), zap.Error(err))
		}
	}

	return nil
}

// StartMonthlyRollover запускает фоновый процесс закрытия месячных периодов.
// Закрытие выполняется только первого числа месяца джалали; в остальные дни
// срабатывание — no-op, повторные срабатывания в тот же день безопасны.
func (s *Service) StartMonthlyRollover(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if jalali.DayOfMonth(s.now()) != 1 {
					continue
				}
				if err := s.ClosePeriods(ctx); err != nil {
					s.logger.Error("monthly rollover", zap.Error(err))
				}
			}
		}
	}()
}

// StartOrderFeed запускает фоновый процесс чтения ленты событий заказов витрины.
func (s *Service) StartOrderFeed(ctx context.Context, interval time.Duration) {
	if s.ordersFeed == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processOrderBatch(ctx)
			}
		}
	}()
}

func (s *Service) processOrderBatch(ctx context.Context) {
	events, statusCode, retryAfter, err := s.ordersFeed.GetEvents(ctx, s.feedCursor, 100)
	if err != nil {
		s.logger.Warn("order feed request", zap.Error(err))
		return
	}

	if statusCode == 429 {
		if retryAfter > 0 {
			timer := time.NewTimer(retryAfter)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		return
	}

	for _, ev := range events {
		submitDate, err := time.Parse(time.RFC3339, ev.SubmitDate)
		if err != nil {
			s.logger.Warn("order feed event date", zap.Int64("eventID", ev.ID), zap.Error(err))
			s.feedCursor = ev.ID
			continue
		}

		role := model.OrderRoleSubmit
		if ev.StatusRole == string(model.OrderRoleCancel) {
			role = model.OrderRoleCancel
		}

		err = s.RecordOrder(ctx, model.OrderEvent{
			OrderNumber:    ev.OrderNumber,
			OwnerID:        ev.UserID,
			TotalPrice:     ev.TotalPrice,
			SubmitDate:     submitDate,
			ParentCategory: ev.ParentCategory,
			StatusRole:     role,
		})
		if err != nil {
			s.logger.Warn("order feed event", zap.Int64("eventID", ev.ID), zap.Error(err))
		}

		s.feedCursor = ev.ID
	}
}

// QuotePrice рассчитывает цену заготовки без обращения к хранилищу.
func (s *Service) QuotePrice(sheet model.Sheet, piece model.CutSize) float64 {
	return pricing.PricePerPiece(sheet, piece)
}

// SaveSheet сохраняет лист сырья и пересчитывает цены всех его комбинаций
// с размерами реза.
func (s *Service) SaveSheet(ctx context.Context, sheet *model.Sheet) error {
	sheetID, err := s.repo.SaveSheet(ctx, sheet)
	if err != nil {
		return err
	}
	sheet.ID = sheetID

	sizes, err := s.repo.ListCutSizes(ctx)
	if err != nil {
		return err
	}

	for _, size := range sizes {
		price := pricing.PricePerPiece(*sheet, size)
		if err := s.repo.UpsertSheetPrice(ctx, sheetID, size.ID, price); err != nil {
			return err
		}
	}

	return nil
}

// SaveCutSize сохраняет размер реза и пересчитывает цены всех комбинаций
// листов с этим размером.
func (s *Service) SaveCutSize(ctx context.Context, size *model.CutSize) error {
	sizeID, err := s.repo.SaveCutSize(ctx, size)
	if err != nil {
		return err
	}
	size.ID = sizeID

	sheets, err := s.repo.ListSheets(ctx)
	if err != nil {
		return err
	}

	for _, sheet := range sheets {
		price := pricing.PricePerPiece(sheet, *size)
		if err := s.repo.UpsertSheetPrice(ctx, sheet.ID, sizeID, price); err != nil {
			return err
		}
	}

	return nil
}

// GetSheetPrice возвращает сохранённую цену заготовки для пары лист×размер.
func (s *Service) GetSheetPrice(ctx context.Context, sheetID, sizeID int64) (float64, error) {
	return s.repo.GetSheetPrice(ctx, sheetID, sizeID)
}
