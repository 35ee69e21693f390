// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mehrab-nt/TeamGraphic-sub000/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrCreditExists возвращается при попытке создать второй счёт для одного владельца.
var (
	ErrCreditExists = errors.New("credit already exists for owner")
	// ErrCreditNotFound возвращается, если кредитный счёт не найден.
	ErrCreditNotFound = errors.New("credit not found")
	// ErrDepositNotFound возвращается, если депозит не найден.
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrDepositResolved возвращается при повторной попытке подтвердить или отклонить депозит.
	ErrDepositResolved = errors.New("deposit already resolved")
	// ErrCashBackNotFound возвращается, если запись кэшбэка не найдена.
	ErrCashBackNotFound = errors.New("cashback record not found")
	// ErrSheetNotFound возвращается, если лист сырья не найден.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrCutSizeNotFound возвращается, если размер реза не найден.
	ErrCutSizeNotFound = errors.New("cut size not found")
	// ErrPriceNotFound возвращается, если цена для пары лист×размер ещё не рассчитана.
	ErrPriceNotFound = errors.New("sheet price not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при сбоях сериализации и дедлоках.
// Записи кэшбэка и баланса конкурируют за строчные блокировки, поэтому такие
// сбои считаются временными.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn()
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				return retry.RetryableError(err)
			}
		}

		return err
	})
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateCredit создаёт кредитный счёт владельца вместе с записью кэшбэка.
func (r *PostgresRepository) CreateCredit(ctx context.Context, ownerID int64) (*model.Credit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var c model.Credit
	err = tx.QueryRow(ctx,
		`INSERT INTO credits (owner_id) VALUES ($1) RETURNING id, owner_id, total_amount, created_at`,
		ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.TotalAmount, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: owner %d", ErrCreditExists, ownerID)
		}
		return nil, fmt.Errorf("create credit: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO cashbacks (credit_id, history) VALUES ($1, '{}')`,
		c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("create cashback record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &c, nil
}

// GetCredit возвращает кредитный счёт по идентификатору.
func (r *PostgresRepository) GetCredit(ctx context.Context, creditID int64) (*model.Credit, error) {
	var c model.Credit
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, total_amount, created_at FROM credits WHERE id = $1`,
		creditID,
	).Scan(&c.ID, &c.OwnerID, &c.TotalAmount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCreditNotFound
		}
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return &c, nil
}

// GetCreditByOwner возвращает кредитный счёт по владельцу.
func (r *PostgresRepository) GetCreditByOwner(ctx context.Context, ownerID int64) (*model.Credit, error) {
	var c model.Credit
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, total_amount, created_at FROM credits WHERE owner_id = $1`,
		ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.TotalAmount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCreditNotFound
		}
		return nil, fmt.Errorf("get credit by owner: %w", err)
	}
	return &c, nil
}

// AddToCreditTotal прибавляет знаковую величину к балансу счёта одним
// атомарным обновлением, без чтения-модификации-записи на стороне клиента.
func (r *PostgresRepository) AddToCreditTotal(ctx context.Context, creditID int64, delta int64) error {
	return r.withRetry(ctx, func() error {
		cmdTag, err := r.pool.Exec(ctx,
			`UPDATE credits SET total_amount = total_amount + $2 WHERE id = $1`,
			creditID, delta,
		)
		if err != nil {
			return fmt.Errorf("add to credit total: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrCreditNotFound
		}
		return nil
	})
}

// RecomputeCreditTotal пересчитывает баланс счёта заново по всей книге депозитов.
// Суммируются все депозиты независимо от статуса подтверждения — поведение
// исходной системы сохранено намеренно, расхождение с инкрементальным путём
// зафиксировано тестами.
func (r *PostgresRepository) RecomputeCreditTotal(ctx context.Context, creditID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`UPDATE credits
		 SET total_amount = (
			SELECT COALESCE(SUM(CASE WHEN income THEN total_price ELSE -total_price END), 0)
			FROM deposits
			WHERE credit_id = $1
		 )
		 WHERE id = $1
		 RETURNING total_amount`,
		creditID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCreditNotFound
		}
		return 0, fmt.Errorf("recompute credit total: %w", err)
	}
	return total, nil
}

// CreateDeposit сохраняет депозит. Депозит со статусом AUTO применяется к
// балансу счёта в той же транзакции; остальные ждут подтверждения.
func (r *PostgresRepository) CreateDeposit(ctx context.Context, d *model.Deposit) (int64, error) {
	var id int64

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		id, err = insertDeposit(ctx, tx, d)
		if err != nil {
			return err
		}

		if d.ConfirmStatus == model.ConfirmStatusAuto {
			if err := applyToCredit(ctx, tx, d.CreditID, d.DisplayPrice()); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func insertDeposit(ctx context.Context, tx pgx.Tx, d *model.Deposit) (int64, error) {
	submit := d.SubmitDate
	if submit.IsZero() {
		submit = time.Now()
	}
	// Дата зачисления по умолчанию совпадает с датой подачи.
	depositDate := d.DepositDate
	if depositDate.IsZero() {
		depositDate = submit
	}

	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO deposits
			(credit_id, total_price, income, confirm_status, deposit_type, transaction_type,
			 submit_by, description, tracking_code, submit_date, deposit_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		d.CreditID, d.TotalPrice, d.Income, string(d.ConfirmStatus), string(d.DepositType),
		string(d.TransactionType), d.SubmitBy, d.Description, d.TrackingCode, submit, depositDate,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return 0, fmt.Errorf("%w: credit %d", ErrCreditNotFound, d.CreditID)
		}
		return 0, fmt.Errorf("insert deposit: %w", err)
	}
	return id, nil
}

func applyToCredit(ctx context.Context, tx pgx.Tx, creditID int64, delta int64) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE credits SET total_amount = total_amount + $2 WHERE id = $1`,
		creditID, delta,
	)
	if err != nil {
		return fmt.Errorf("apply to credit: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCreditNotFound
	}
	return nil
}

// ResolveDeposit переводит депозит из PENDING в CONFIRMED или REJECTED.
// Строка депозита блокируется, поэтому эффект на баланс применяется ровно один
// раз даже при параллельных подтверждениях.
func (r *PostgresRepository) ResolveDeposit(ctx context.Context, depositID int64, confirmed bool, resolvedBy int64) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var (
			creditID int64
			price    int64
			income   bool
			status   string
		)
		err = tx.QueryRow(ctx,
			`SELECT credit_id, total_price, income, confirm_status FROM deposits WHERE id = $1 FOR UPDATE`,
			depositID,
		).Scan(&creditID, &price, &income, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrDepositNotFound
			}
			return fmt.Errorf("lock deposit: %w", err)
		}

		if model.ConfirmStatus(status) != model.ConfirmStatusPending {
			return ErrDepositResolved
		}

		newStatus := model.ConfirmStatusRejected
		if confirmed {
			newStatus = model.ConfirmStatusConfirmed
		}

		_, err = tx.Exec(ctx,
			`UPDATE deposits SET confirm_status = $2, submit_by = $3 WHERE id = $1`,
			depositID, string(newStatus), resolvedBy,
		)
		if err != nil {
			return fmt.Errorf("update deposit status: %w", err)
		}

		if confirmed {
			d := model.Deposit{TotalPrice: price, Income: income}
			if err := applyToCredit(ctx, tx, creditID, d.DisplayPrice()); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}

// GetDepositsByCredit возвращает книгу депозитов счёта от новых к старым.
func (r *PostgresRepository) GetDepositsByCredit(ctx context.Context, creditID int64) ([]model.Deposit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, credit_id, total_price, income, confirm_status, deposit_type, transaction_type,
		        submit_by, description, tracking_code, submit_date, deposit_date
		 FROM deposits
		 WHERE credit_id = $1
		 ORDER BY submit_date DESC, id DESC`,
		creditID,
	)
	if err != nil {
		return nil, fmt.Errorf("select deposits: %w", err)
	}
	defer rows.Close()

	var res []model.Deposit
	for rows.Next() {
		var (
			d               model.Deposit
			status, dType   string
			transactionType string
		)
		if err := rows.Scan(
			&d.ID, &d.CreditID, &d.TotalPrice, &d.Income, &status, &dType, &transactionType,
			&d.SubmitBy, &d.Description, &d.TrackingCode, &d.SubmitDate, &d.DepositDate,
		); err != nil {
			return nil, fmt.Errorf("scan deposit: %w", err)
		}
		d.ConfirmStatus = model.ConfirmStatus(status)
		d.DepositType = model.DepositType(dType)
		d.TransactionType = model.TransactionType(transactionType)
		res = append(res, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListTiers возвращает таблицу процентных уровней кэшбэка.
// Порядок по возрастанию нижней границы фиксирует разрешение пересекающихся
// диапазонов: выигрывает первый подходящий уровень.
func (r *PostgresRepository) ListTiers(ctx context.Context) ([]model.CashBackPercent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, percent, min_amount, max_amount
		 FROM cashback_percents
		 ORDER BY min_amount, max_amount`,
	)
	if err != nil {
		return nil, fmt.Errorf("select tiers: %w", err)
	}
	defer rows.Close()

	var res []model.CashBackPercent
	for rows.Next() {
		var t model.CashBackPercent
		if err := rows.Scan(&t.ID, &t.Percent, &t.MinAmount, &t.MaxAmount); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		res = append(res, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetCashBack возвращает запись кэшбэка счёта без блокировки.
func (r *PostgresRepository) GetCashBack(ctx context.Context, creditID int64) (*model.CashBack, error) {
	cb, err := scanCashBack(r.pool.QueryRow(ctx, cashbackSelect+` WHERE credit_id = $1`, creditID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCashBackNotFound
		}
		return nil, fmt.Errorf("get cashback: %w", err)
	}
	return cb, nil
}

const cashbackSelect = `SELECT credit_id, now_total_order_amount, now_cashback,
	tmp_total_order_amount, tmp_cashback, manual_percent, valid_categories,
	history, is_active, last_confirm, last_closed_period
	FROM cashbacks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCashBack(row rowScanner) (*model.CashBack, error) {
	var (
		cb      model.CashBack
		history []byte
	)
	err := row.Scan(
		&cb.CreditID, &cb.NowTotalOrderAmount, &cb.NowCashback,
		&cb.TmpTotalOrderAmount, &cb.TmpCashback, &cb.ManualPercent, &cb.ValidCategories,
		&history, &cb.IsActive, &cb.LastConfirm, &cb.LastClosedPeriod,
	)
	if err != nil {
		return nil, err
	}

	cb.History = make(map[string]model.CashBackHistory)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &cb.History); err != nil {
			return nil, fmt.Errorf("decode cashback history: %w", err)
		}
	}

	return &cb, nil
}

// MutateCashBack выполняет чтение-модификацию-запись записи кэшбэка под
// строчной блокировкой. Если mutate возвращает депозит, он создаётся в той же
// транзакции, а депозит AUTO сразу применяется к балансу счёта: выплата и
// смена состояния фиксируются атомарно.
func (r *PostgresRepository) MutateCashBack(ctx context.Context, creditID int64, mutate func(cb *model.CashBack) (*model.Deposit, error)) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		// Блокируем строку кэшбэка: накопление, закрытие периода и подтверждение
		// одного счёта сериализуются между собой.
		cb, err := scanCashBack(tx.QueryRow(ctx, cashbackSelect+` WHERE credit_id = $1 FOR UPDATE`, creditID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCashBackNotFound
			}
			return fmt.Errorf("lock cashback: %w", err)
		}

		dep, err := mutate(cb)
		if err != nil {
			return err
		}

		history, err := json.Marshal(cb.History)
		if err != nil {
			return fmt.Errorf("encode cashback history: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE cashbacks
			 SET now_total_order_amount = $2, now_cashback = $3,
			     tmp_total_order_amount = $4, tmp_cashback = $5,
			     manual_percent = $6, history = $7,
			     last_confirm = $8, last_closed_period = $9
			 WHERE credit_id = $1`,
			cb.CreditID, cb.NowTotalOrderAmount, cb.NowCashback,
			cb.TmpTotalOrderAmount, cb.TmpCashback,
			cb.ManualPercent, history,
			cb.LastConfirm, cb.LastClosedPeriod,
		)
		if err != nil {
			return fmt.Errorf("update cashback: %w", err)
		}

		if dep != nil {
			if _, err := insertDeposit(ctx, tx, dep); err != nil {
				return err
			}
			if dep.ConfirmStatus == model.ConfirmStatusAuto {
				if err := applyToCredit(ctx, tx, dep.CreditID, dep.DisplayPrice()); err != nil {
					return err
				}
			}
		}

		return tx.Commit(ctx)
	})
}

// ListActiveCashBackIDs возвращает счета с активными записями кэшбэка.
func (r *PostgresRepository) ListActiveCashBackIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT credit_id FROM cashbacks WHERE is_active ORDER BY credit_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select active cashbacks: %w", err)
	}
	defer rows.Close()

	var res []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan cashback id: %w", err)
		}
		res = append(res, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// SaveSheet создаёт или обновляет лист сырья и возвращает его идентификатор.
func (r *PostgresRepository) SaveSheet(ctx context.Context, s *model.Sheet) (int64, error) {
	if s.ID == 0 {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO sheets (name, length, width, purchase_price, cutting_price, sheet_count)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			s.Name, s.Length, s.Width, s.PurchasePrice, s.CuttingPrice, s.SheetCount,
		).Scan(&s.ID)
		if err != nil {
			return 0, fmt.Errorf("insert sheet: %w", err)
		}
		return s.ID, nil
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE sheets SET name = $2, length = $3, width = $4,
		 purchase_price = $5, cutting_price = $6, sheet_count = $7
		 WHERE id = $1`,
		s.ID, s.Name, s.Length, s.Width, s.PurchasePrice, s.CuttingPrice, s.SheetCount,
	)
	if err != nil {
		return 0, fmt.Errorf("update sheet: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return 0, ErrSheetNotFound
	}
	return s.ID, nil
}

// SaveCutSize создаёт или обновляет размер реза и возвращает его идентификатор.
func (r *PostgresRepository) SaveCutSize(ctx context.Context, s *model.CutSize) (int64, error) {
	if s.ID == 0 {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO cut_sizes (name, length, width) VALUES ($1, $2, $3) RETURNING id`,
			s.Name, s.Length, s.Width,
		).Scan(&s.ID)
		if err != nil {
			return 0, fmt.Errorf("insert cut size: %w", err)
		}
		return s.ID, nil
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE cut_sizes SET name = $2, length = $3, width = $4 WHERE id = $1`,
		s.ID, s.Name, s.Length, s.Width,
	)
	if err != nil {
		return 0, fmt.Errorf("update cut size: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return 0, ErrCutSizeNotFound
	}
	return s.ID, nil
}

// ListSheets возвращает все листы сырья.
func (r *PostgresRepository) ListSheets(ctx context.Context) ([]model.Sheet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, length, width, purchase_price, cutting_price, sheet_count FROM sheets ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select sheets: %w", err)
	}
	defer rows.Close()

	var res []model.Sheet
	for rows.Next() {
		var s model.Sheet
		if err := rows.Scan(&s.ID, &s.Name, &s.Length, &s.Width, &s.PurchasePrice, &s.CuttingPrice, &s.SheetCount); err != nil {
			return nil, fmt.Errorf("scan sheet: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListCutSizes возвращает все размеры реза.
func (r *PostgresRepository) ListCutSizes(ctx context.Context) ([]model.CutSize, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, length, width FROM cut_sizes ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select cut sizes: %w", err)
	}
	defer rows.Close()

	var res []model.CutSize
	for rows.Next() {
		var s model.CutSize
		if err := rows.Scan(&s.ID, &s.Name, &s.Length, &s.Width); err != nil {
			return nil, fmt.Errorf("scan cut size: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpsertSheetPrice сохраняет рассчитанную цену заготовки для пары лист×размер.
func (r *PostgresRepository) UpsertSheetPrice(ctx context.Context, sheetID, sizeID int64, price float64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sheet_prices (sheet_id, size_id, price)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (sheet_id, size_id) DO UPDATE SET price = EXCLUDED.price`,
		sheetID, sizeID, price,
	)
	if err != nil {
		return fmt.Errorf("upsert sheet price: %w", err)
	}
	return nil
}

// GetSheetPrice возвращает сохранённую цену заготовки для пары лист×размер.
func (r *PostgresRepository) GetSheetPrice(ctx context.Context, sheetID, sizeID int64) (float64, error) {
	var price float64
	err := r.pool.QueryRow(ctx,
		`SELECT price FROM sheet_prices WHERE sheet_id = $1 AND size_id = $2`,
		sheetID, sizeID,
	).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPriceNotFound
		}
		return 0, fmt.Errorf("get sheet price: %w", err)
	}
	return price, nil
}
