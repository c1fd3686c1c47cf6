package avatar

import (
	domain "fitspace-backend/internal/domain/avatar"
)

// Measurements is the validated set of avatar attributes.
type Measurements struct {
	DisplayName             *string  `json:"display_name" validate:"omitempty,max=255"`
	Age                     *int     `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender                  *string  `json:"gender" validate:"omitempty,oneof=male female non_binary other prefer_not_to_say"`
	HeightCM                *float64 `json:"height_cm" validate:"omitempty,gt=0,lt=1000"`
	WeightKG                *float64 `json:"weight_kg" validate:"omitempty,gt=0,lt=1000"`
	BodyFatPercent          *float64 `json:"body_fat_percent" validate:"omitempty,gte=0,lte=100"`
	ShoulderCircumferenceCM *float64 `json:"shoulder_circumference_cm" validate:"omitempty,gt=0,lt=1000"`
	WaistCM                 *float64 `json:"waist_cm" validate:"omitempty,gt=0,lt=1000"`
	HipsCM                  *float64 `json:"hips_cm" validate:"omitempty,gt=0,lt=1000"`
	Notes                   *string  `json:"notes" validate:"omitempty,max=2000"`
}

// CreateAvatarRequest creates an avatar for UserID.
type CreateAvatarRequest struct {
	UserID int64
	Measurements
}

// UpdateAvatarRequest is a partial update of one avatar.
type UpdateAvatarRequest struct {
	UserID   int64
	AvatarID int64
	Patch    domain.Patch
}
