// Package validate checks normalized records against the required-field and range rules.
package validate

import (
	"fmt"

	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

const maxCompanyNameLength = 255

// Validate runs every rule against rec and collects all violations; it never stops at
// the first one. The result is valid iff no rule failed.
func Validate(rec entity.NormalizedRecord) entity.ValidationResult {
	v := common.NewValidator()

	v.Field(entity.FieldCompanyName, rec.CompanyName, common.Required, common.MaxLength(maxCompanyNameLength))
	v.Field(entity.FieldDocumentDate, rec.DocumentDate, common.Required, common.ISODate)
	v.Field(entity.FieldTotalAmount, rec.TotalAmount, common.Required, common.NonNegative)
	v.Field(entity.FieldCurrency, rec.Currency, common.Required, common.CurrencyCode)
	v.Field(entity.FieldCategory, rec.Category, common.Required, common.OneOfCategory)

	for i, item := range rec.LineItems {
		prefix := fmt.Sprintf("%s[%d]", entity.FieldLineItems, i)
		v.Field(prefix+".description", item.Description, common.Required)
		if item.Amount == nil {
			v.Add(prefix+".amount", nil, "must be numeric")
			continue
		}
		v.Field(prefix+".amount", item.Amount, common.NonNegative)
	}

	return entity.ValidationResult{
		IsValid: !v.HasErrors(),
		Errors:  v.Messages(),
	}
}
