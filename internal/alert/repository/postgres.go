package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"defiguard/internal/alert"
	"defiguard/internal/registry"
)

type PostgresAlertRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostgresAlertRepo(db *sqlx.DB, logger *zap.Logger) *PostgresAlertRepo {
	return &PostgresAlertRepo{db: db, logger: logger}
}

// Create writes the alert row plus all nested condition, channel and
// chain/asset link rows in one transaction. Either everything is persisted
// or nothing is.
func (r *PostgresAlertRepo) Create(ctx context.Context, a *alert.Alert) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	txRepo := newTxAlertRepo(tx)
	if err := txRepo.insertAlert(ctx, a); err != nil {
		return err
	}
	if err := txRepo.insertConditions(ctx, a.ID, a.Conditions); err != nil {
		return err
	}
	if err := txRepo.insertChannels(ctx, a.ID, a.DeliveryChannels); err != nil {
		return err
	}
	if err := txRepo.linkChains(ctx, a.ID, chainIDs(a.Chains)); err != nil {
		return err
	}
	if err := txRepo.linkAssets(ctx, a.ID, assetIDs(a.Assets)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	r.logger.Info("alert created", zap.String("alert_id", a.ID), zap.Int64("user_id", a.UserID))
	return nil
}

// Replace implements the replace-wholesale update: the alert's scalar fields
// are updated and all child rows are deleted and recreated inside a single
// transaction, so a concurrent reader never observes an alert with zero
// conditions.
func (r *PostgresAlertRepo) Replace(ctx context.Context, a *alert.Alert) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM alerts WHERE id = $1 FOR UPDATE`, a.ID).Scan(&existing)
	if err == sql.ErrNoRows {
		return alert.ErrNotFound
	}
	if err != nil {
		return err
	}

	txRepo := newTxAlertRepo(tx)
	if err := txRepo.deleteChildren(ctx, a.ID); err != nil {
		return err
	}
	if err := txRepo.updateAlert(ctx, a); err != nil {
		return err
	}
	if err := txRepo.insertConditions(ctx, a.ID, a.Conditions); err != nil {
		return err
	}
	if err := txRepo.insertChannels(ctx, a.ID, a.DeliveryChannels); err != nil {
		return err
	}
	if err := txRepo.linkChains(ctx, a.ID, chainIDs(a.Chains)); err != nil {
		return err
	}
	if err := txRepo.linkAssets(ctx, a.ID, assetIDs(a.Assets)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	r.logger.Info("alert replaced", zap.String("alert_id", a.ID))
	return nil
}

// Delete cascades in foreign-key order: conditions, channels, sent
// notifications, notification history, chain/asset links, then the alert row
// itself. Returns ErrNotFound when the alert row does not exist.
func (r *PostgresAlertRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	txRepo := newTxAlertRepo(tx)
	if _, err := tx.ExecContext(ctx, `DELETE FROM alert_conditions WHERE alert_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_channels WHERE alert_id = $1`, id); err != nil {
		return err
	}
	if err := txRepo.deleteNotifications(ctx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM alert_chains WHERE alert_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM alert_assets WHERE alert_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alert.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	r.logger.Info("alert deleted", zap.String("alert_id", id))
	return nil
}

// GetByID loads the alert with all nested entities and its notification
// history.
func (r *PostgresAlertRepo) GetByID(ctx context.Context, id string) (*alert.Alert, error) {
	a, err := r.getAlertRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, a); err != nil {
		return nil, err
	}
	if err := r.loadNotifications(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByUser returns the user's alerts with conditions and channels but
// without notification history.
func (r *PostgresAlertRepo) ListByUser(ctx context.Context, userID int64) ([]*alert.Alert, error) {
	query := `
		SELECT id, user_id, wallet_address, category, action_type, is_comparison,
		       notification_frequency, compare_protocols, status, created_at, updated_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range alerts {
		if err := r.hydrate(ctx, a); err != nil {
			return nil, err
		}
	}
	return alerts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(s rowScanner) (*alert.Alert, error) {
	a := &alert.Alert{}
	err := s.Scan(
		&a.ID, &a.UserID, &a.WalletAddress, &a.Category, &a.ActionType, &a.IsComparison,
		&a.NotificationFrequency, pq.Array(&a.CompareProtocols), &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresAlertRepo) getAlertRow(ctx context.Context, id string) (*alert.Alert, error) {
	query := `
		SELECT id, user_id, wallet_address, category, action_type, is_comparison,
		       notification_frequency, compare_protocols, status, created_at, updated_at
		FROM alerts
		WHERE id = $1
	`
	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, alert.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

type conditionRow struct {
	ID        string              `db:"id"`
	AlertID   string              `db:"alert_id"`
	Type      string              `db:"condition_type"`
	Threshold decimal.NullDecimal `db:"threshold_value"`
	Min       decimal.NullDecimal `db:"min_value"`
	Max       decimal.NullDecimal `db:"max_value"`
	Severity  string              `db:"severity"`
}

type channelRow struct {
	ID         string         `db:"id"`
	AlertID    string         `db:"alert_id"`
	Type       string         `db:"channel_type"`
	Email      sql.NullString `db:"email"`
	WebhookURL sql.NullString `db:"webhook_url"`
}

func (r *PostgresAlertRepo) hydrate(ctx context.Context, a *alert.Alert) error {
	var condRows []conditionRow
	err := r.db.SelectContext(ctx, &condRows, `
		SELECT id, alert_id, condition_type, threshold_value, min_value, max_value, severity
		FROM alert_conditions
		WHERE alert_id = $1
		ORDER BY id
	`, a.ID)
	if err != nil {
		return err
	}
	a.Conditions = make([]alert.Condition, 0, len(condRows))
	for _, row := range condRows {
		a.Conditions = append(a.Conditions, alert.Condition{
			ID:        row.ID,
			AlertID:   row.AlertID,
			Type:      alert.ConditionType(row.Type),
			Threshold: decimalPtr(row.Threshold),
			Min:       decimalPtr(row.Min),
			Max:       decimalPtr(row.Max),
			Severity:  alert.Severity(row.Severity),
		})
	}

	var chanRows []channelRow
	err = r.db.SelectContext(ctx, &chanRows, `
		SELECT id, alert_id, channel_type, email, webhook_url
		FROM delivery_channels
		WHERE alert_id = $1
		ORDER BY id
	`, a.ID)
	if err != nil {
		return err
	}
	a.DeliveryChannels = make([]alert.DeliveryChannel, 0, len(chanRows))
	for _, row := range chanRows {
		a.DeliveryChannels = append(a.DeliveryChannels, alert.DeliveryChannel{
			ID:         row.ID,
			AlertID:    row.AlertID,
			Type:       alert.ChannelType(row.Type),
			Email:      row.Email.String,
			WebhookURL: row.WebhookURL.String,
		})
	}

	err = r.db.SelectContext(ctx, &a.Chains, `
		SELECT c.chain_id, c.name
		FROM chains c
		JOIN alert_chains ac ON ac.chain_id = c.chain_id
		WHERE ac.alert_id = $1
		ORDER BY c.chain_id
	`, a.ID)
	if err != nil {
		return err
	}

	err = r.db.SelectContext(ctx, &a.Assets, `
		SELECT s.id, s.chain_id, s.address, s.symbol
		FROM assets s
		JOIN alert_assets aa ON aa.asset_id = s.id
		WHERE aa.alert_id = $1
		ORDER BY s.id
	`, a.ID)
	if err != nil {
		return err
	}
	return nil
}

func (r *PostgresAlertRepo) loadNotifications(ctx context.Context, a *alert.Alert) error {
	return r.db.SelectContext(ctx, &a.Notifications, `
		SELECT id, alert_id, compound_rate, comparison_rates, sent_at
		FROM alert_notifications
		WHERE alert_id = $1
		ORDER BY sent_at DESC
	`, a.ID)
}

// SeedReference upserts the static chain and market tables the alert links
// reference. Runs once at startup.
func (r *PostgresAlertRepo) SeedReference(ctx context.Context, chains []registry.Chain, assets []registry.Asset) error {
	for _, c := range chains {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO chains (chain_id, name) VALUES ($1, $2)
			ON CONFLICT (chain_id) DO UPDATE SET name = EXCLUDED.name
		`, c.ChainID, c.Name)
		if err != nil {
			return err
		}
	}
	for _, s := range assets {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO assets (id, chain_id, address, symbol) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET symbol = EXCLUDED.symbol
		`, s.ID, s.ChainID, s.Address, s.Symbol)
		if err != nil {
			return err
		}
	}
	return nil
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func chainIDs(chains []registry.Chain) []int64 {
	ids := make([]int64, 0, len(chains))
	for _, c := range chains {
		ids = append(ids, c.ChainID)
	}
	return ids
}

func assetIDs(assets []registry.Asset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	return ids
}
