package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultProfitSharePercentage is applied when a shop is created without an explicit share.
var DefaultProfitSharePercentage = decimal.NewFromInt(50)

// Shop represents the shops table
type Shop struct {
	Id                    int             `db:"id" json:"id"`
	Name                  string          `db:"name" json:"name"`
	Platform              string          `db:"platform" json:"platform"`
	Region                string          `db:"region" json:"region"`
	ProfitSharePercentage decimal.Decimal `db:"profit_share_percentage" json:"profit_share_percentage"`
	SheetId               sql.NullString  `db:"sheet_id" json:"sheet_id"`
	SheetName             sql.NullString  `db:"sheet_name" json:"sheet_name"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
}

// HasSheet reports whether the shop is linked to a spreadsheet.
func (s *Shop) HasSheet() bool {
	return s.SheetId.Valid && s.SheetId.String != ""
}

// ShopInsert carries the fields needed to create a shop.
// ProfitSharePercentage is optional, DefaultProfitSharePercentage is used when it is not set.
type ShopInsert struct {
	Name                  string
	Platform              string
	Region                string
	ProfitSharePercentage decimal.NullDecimal
	SheetId               string
	SheetName             string
}

// SheetSyncStatus tracks the last spreadsheet import per shop.
type SheetSyncStatus struct {
	ShopId        int          `db:"shop_id" json:"shop_id"`
	LastSyncDate  sql.NullTime `db:"last_sync_date" json:"last_sync_date"`
	Status        string       `db:"status" json:"status"`
	RecordsSynced int          `db:"records_synced" json:"records_synced"`
	ErrorMsg      string       `db:"error_msg" json:"error_msg"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	SheetSyncSuccess = "success"
	SheetSyncError   = "error"
)
