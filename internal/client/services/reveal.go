package services

import (
	"context"

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
)

// reveal decrypts the sensitive fields of raw. A field that cannot be
// decrypted is reported as undecryptable with an empty value.
func reveal(ctx context.Context, c Cipher, log logging.Logger, raw models.RawProfile) models.EmployeeProfile {
	return models.EmployeeProfile{
		ID:            raw.ID,
		Name:          raw.Name,
		Email:         raw.Email,
		DateOfJoining: raw.DateOfJoining,
		Position:      raw.Position,
		Role:          models.ParseRole(raw.Role),
		Image:         raw.Image,
		NationalID:    revealField(ctx, c, log, raw.ID, "nationalId", raw.NationalID),
		TaxID:         revealField(ctx, c, log, raw.ID, "taxId", raw.TaxID),
	}
}

func revealField(ctx context.Context, c Cipher, log logging.Logger, id models.ID, field, encoded string) models.SensitiveValue {
	if encoded == "" {
		return models.SensitiveValue{}
	}
	plain, err := c.Decrypt(encoded)
	if err != nil {
		log.Warn(ctx, "cannot decrypt profile field", "user_id", id, "field", field, "error", err)
		return models.SensitiveValue{State: models.SensitiveUndecryptable}
	}
	return models.PlainValue(plain)
}
