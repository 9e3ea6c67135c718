package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"defiguard/internal/alert"
)

// txAlertRepo groups the statements that make up one nested write. Every
// create/replace/delete runs through it inside a single transaction.
type txAlertRepo struct {
	tx *sqlx.Tx
}

func newTxAlertRepo(tx *sqlx.Tx) *txAlertRepo {
	return &txAlertRepo{tx: tx}
}

func (r *txAlertRepo) insertAlert(ctx context.Context, a *alert.Alert) error {
	query := `
		INSERT INTO alerts (
			id, user_id, wallet_address, category, action_type, is_comparison,
			notification_frequency, compare_protocols, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.tx.QueryRowContext(ctx, query,
		a.ID, a.UserID, a.WalletAddress, a.Category, a.ActionType, a.IsComparison,
		a.NotificationFrequency, pq.Array(a.CompareProtocols), a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *txAlertRepo) updateAlert(ctx context.Context, a *alert.Alert) error {
	query := `
		UPDATE alerts
		SET wallet_address = $1, category = $2, action_type = $3, is_comparison = $4,
		    notification_frequency = $5, compare_protocols = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING created_at, updated_at
	`
	return r.tx.QueryRowContext(ctx, query,
		a.WalletAddress, a.Category, a.ActionType, a.IsComparison,
		a.NotificationFrequency, pq.Array(a.CompareProtocols), a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *txAlertRepo) insertConditions(ctx context.Context, alertID string, conditions []alert.Condition) error {
	query := `
		INSERT INTO alert_conditions (id, alert_id, condition_type, threshold_value, min_value, max_value, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, c := range conditions {
		_, err := r.tx.ExecContext(ctx, query,
			c.ID, alertID, c.Type,
			nullDecimal(c.Threshold), nullDecimal(c.Min), nullDecimal(c.Max),
			c.Severity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txAlertRepo) insertChannels(ctx context.Context, alertID string, channels []alert.DeliveryChannel) error {
	query := `
		INSERT INTO delivery_channels (id, alert_id, channel_type, email, webhook_url)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, ch := range channels {
		_, err := r.tx.ExecContext(ctx, query,
			ch.ID, alertID, ch.Type, nullString(ch.Email), nullString(ch.WebhookURL))
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txAlertRepo) linkChains(ctx context.Context, alertID string, chainIDs []int64) error {
	query := `INSERT INTO alert_chains (alert_id, chain_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, id := range chainIDs {
		if _, err := r.tx.ExecContext(ctx, query, alertID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *txAlertRepo) linkAssets(ctx context.Context, alertID string, assetIDs []string) error {
	query := `INSERT INTO alert_assets (alert_id, asset_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, id := range assetIDs {
		if _, err := r.tx.ExecContext(ctx, query, alertID, id); err != nil {
			return err
		}
	}
	return nil
}

// deleteChildren removes conditions, channels and chain/asset links for the
// replace-wholesale update. Notification history survives an update.
func (r *txAlertRepo) deleteChildren(ctx context.Context, alertID string) error {
	statements := []string{
		`DELETE FROM alert_conditions WHERE alert_id = $1`,
		`DELETE FROM delivery_channels WHERE alert_id = $1`,
		`DELETE FROM alert_chains WHERE alert_id = $1`,
		`DELETE FROM alert_assets WHERE alert_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := r.tx.ExecContext(ctx, stmt, alertID); err != nil {
			return err
		}
	}
	return nil
}

// deleteNotifications clears the firing history; sent_notifications rows go
// first to respect the foreign key into alert_notifications.
func (r *txAlertRepo) deleteNotifications(ctx context.Context, alertID string) error {
	_, err := r.tx.ExecContext(ctx, `
		DELETE FROM sent_notifications
		WHERE notification_id IN (SELECT id FROM alert_notifications WHERE alert_id = $1)
	`, alertID)
	if err != nil {
		return err
	}
	_, err = r.tx.ExecContext(ctx, `DELETE FROM alert_notifications WHERE alert_id = $1`, alertID)
	return err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
