// Package avatar holds the body-measurement profiles owned by users.
package avatar

import (
	"time"

	"fitspace-backend/pkg/optional"
)

// Genders accepted for Avatar.Gender, always stored lower-cased.
var Genders = []string{"male", "female", "non_binary", "other", "prefer_not_to_say"}

// Avatar is a set of body measurements belonging to one user.
type Avatar struct {
	ID                      int64
	UserID                  int64
	DisplayName             *string
	Age                     *int
	Gender                  *string
	HeightCM                *float64
	WeightKG                *float64
	BodyFatPercent          *float64
	ShoulderCircumferenceCM *float64
	WaistCM                 *float64
	HipsCM                  *float64
	Notes                   *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Patch is a partial update of an avatar. Only fields with Set == true are
// written; a Null value clears the column.
type Patch struct {
	DisplayName             optional.Value[string]
	Age                     optional.Value[int]
	Gender                  optional.Value[string]
	HeightCM                optional.Value[float64]
	WeightKG                optional.Value[float64]
	BodyFatPercent          optional.Value[float64]
	ShoulderCircumferenceCM optional.Value[float64]
	WaistCM                 optional.Value[float64]
	HipsCM                  optional.Value[float64]
	Notes                   optional.Value[string]
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return !p.DisplayName.Set && !p.Age.Set && !p.Gender.Set &&
		!p.HeightCM.Set && !p.WeightKG.Set && !p.BodyFatPercent.Set &&
		!p.ShoulderCircumferenceCM.Set && !p.WaistCM.Set && !p.HipsCM.Set &&
		!p.Notes.Set
}
