package form

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jekabolt/shop-metrics/internal/entity"
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	sheetIdRegexp = `^[A-Za-z0-9_-]{10,100}$`
	sheetURLPath  = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)
)

type CreateShopRequest struct {
	Name                  string              `json:"name"`
	Platform              string              `json:"platform"`
	Region                string              `json:"region"`
	ProfitSharePercentage decimal.NullDecimal `json:"profitSharePercentage"`
	SheetId               string              `json:"sheetId"`
	SheetName             string              `json:"sheetName"`
}

func (r *CreateShopRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.SheetId = SheetIdFromURL(r.SheetId)
	return ValidateStruct(r,
		v.Field(&r.Name, v.Required, v.Length(1, 255)),
		v.Field(&r.Platform, v.Required, v.Length(1, 64)),
		v.Field(&r.Region, v.Required, v.Length(1, 64)),
		v.Field(&r.ProfitSharePercentage, v.By(validateOptionalPercentage)),
		v.Field(&r.SheetId, v.By(validateSheetId)),
		v.Field(&r.SheetName, v.Length(0, 255)),
	)
}

func (r *CreateShopRequest) ShopInsert() *entity.ShopInsert {
	return &entity.ShopInsert{
		Name:                  r.Name,
		Platform:              r.Platform,
		Region:                r.Region,
		ProfitSharePercentage: r.ProfitSharePercentage,
		SheetId:               r.SheetId,
		SheetName:             r.SheetName,
	}
}

type UpdateProfitShareRequest struct {
	ProfitSharePercentage decimal.NullDecimal `json:"profitSharePercentage"`
}

func (r *UpdateProfitShareRequest) Validate() error {
	return ValidateStruct(r,
		v.Field(&r.ProfitSharePercentage, v.By(validateRequiredPercentage)),
	)
}

type UpdateSheetSourceRequest struct {
	SheetId   string `json:"sheetId"`
	SheetName string `json:"sheetName"`
}

// Validate accepts an empty sheet id, which unlinks the shop.
func (r *UpdateSheetSourceRequest) Validate() error {
	r.SheetId = SheetIdFromURL(r.SheetId)
	return ValidateStruct(r,
		v.Field(&r.SheetId, v.By(validateSheetId)),
		v.Field(&r.SheetName, v.Length(0, 255)),
	)
}

// ValidatePercentage checks that pct is within [0, 100] and has at most
// two decimal places, the precision the shops table keeps.
func ValidatePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("must be between 0 and 100")
	}
	if !pct.Equal(pct.Round(2)) {
		return fmt.Errorf("must have at most 2 decimal places")
	}
	return nil
}

func validateOptionalPercentage(value interface{}) error {
	nd, ok := value.(decimal.NullDecimal)
	if !ok {
		return fmt.Errorf("invalid type for percentage")
	}
	if !nd.Valid {
		return nil
	}
	return ValidatePercentage(nd.Decimal)
}

func validateRequiredPercentage(value interface{}) error {
	nd, ok := value.(decimal.NullDecimal)
	if !ok {
		return fmt.Errorf("invalid type for percentage")
	}
	if !nd.Valid {
		return fmt.Errorf("cannot be blank")
	}
	return ValidatePercentage(nd.Decimal)
}

func validateSheetId(value interface{}) error {
	id, _ := value.(string)
	if id == "" {
		return nil
	}
	if !govalidator.Matches(id, sheetIdRegexp) {
		return fmt.Errorf("must be a spreadsheet id or url")
	}
	return nil
}

// SheetIdFromURL extracts the spreadsheet id from a docs.google.com link.
// Anything that is not such a link is returned trimmed.
func SheetIdFromURL(s string) string {
	s = strings.TrimSpace(s)
	if !govalidator.IsURL(s) {
		return s
	}
	if m := sheetURLPath.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
