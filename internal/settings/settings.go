// Package settings holds the single-row business profile printed on
// receipts and used for tax defaults.
package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is the business profile. Exactly one row exists; it is seeded by
// the migration and can only be updated, never created or deleted.
type Settings struct {
	BusinessName   *string `json:"business_name,omitempty"`
	LegalName      *string `json:"legal_name,omitempty"`
	AddressLine1   *string `json:"address_line1,omitempty"`
	AddressLine2   *string `json:"address_line2,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty"`
	PostalCode     *string `json:"postal_code,omitempty"`
	Country        *string `json:"country,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	Currency       string  `json:"currency"`
	DefaultTaxRate float64 `json:"default_tax_rate"`
	ReceiptFooter  *string `json:"receipt_footer,omitempty"`
}

// Update names every changeable field explicitly; nil means leave as-is. An
// update carrying only nils is a read.
type Update struct {
	BusinessName   *string  `json:"business_name,omitempty"`
	LegalName      *string  `json:"legal_name,omitempty"`
	AddressLine1   *string  `json:"address_line1,omitempty"`
	AddressLine2   *string  `json:"address_line2,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	PostalCode     *string  `json:"postal_code,omitempty"`
	Country        *string  `json:"country,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	Email          *string  `json:"email,omitempty"`
	Currency       *string  `json:"currency,omitempty"`
	DefaultTaxRate *float64 `json:"default_tax_rate,omitempty"`
	ReceiptFooter  *string  `json:"receipt_footer,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.BusinessName == nil && u.LegalName == nil && u.AddressLine1 == nil &&
		u.AddressLine2 == nil && u.City == nil && u.State == nil && u.PostalCode == nil &&
		u.Country == nil && u.Phone == nil && u.Email == nil && u.Currency == nil &&
		u.DefaultTaxRate == nil && u.ReceiptFooter == nil
}

// ErrMissing indicates the settings row was never seeded.
var ErrMissing = errors.New("settings: row not found, run migrations")

type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, u Update) (Settings, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const settingsColumns = `business_name, legal_name, address_line1, address_line2, city, state,
postal_code, country, phone, email, currency, default_tax_rate, receipt_footer`

func scanSettings(row pgx.Row) (Settings, error) {
	var s Settings
	err := row.Scan(&s.BusinessName, &s.LegalName, &s.AddressLine1, &s.AddressLine2, &s.City,
		&s.State, &s.PostalCode, &s.Country, &s.Phone, &s.Email, &s.Currency,
		&s.DefaultTaxRate, &s.ReceiptFooter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrMissing
		}
		return Settings{}, err
	}
	return s, nil
}

func (r *repository) Get(ctx context.Context) (Settings, error) {
	return scanSettings(r.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM business_settings WHERE id=1`))
}

func (r *repository) Update(ctx context.Context, u Update) (Settings, error) {
	if u.Empty() {
		return r.Get(ctx)
	}
	return scanSettings(r.db.QueryRow(ctx, `UPDATE business_settings SET
business_name   = COALESCE($1,  business_name),
legal_name      = COALESCE($2,  legal_name),
address_line1   = COALESCE($3,  address_line1),
address_line2   = COALESCE($4,  address_line2),
city            = COALESCE($5,  city),
state           = COALESCE($6,  state),
postal_code     = COALESCE($7,  postal_code),
country         = COALESCE($8,  country),
phone           = COALESCE($9,  phone),
email           = COALESCE($10, email),
currency        = COALESCE($11, currency),
default_tax_rate= COALESCE($12, default_tax_rate),
receipt_footer  = COALESCE($13, receipt_footer)
WHERE id=1
RETURNING `+settingsColumns,
		u.BusinessName, u.LegalName, u.AddressLine1, u.AddressLine2, u.City, u.State,
		u.PostalCode, u.Country, u.Phone, u.Email, u.Currency, u.DefaultTaxRate, u.ReceiptFooter))
}
