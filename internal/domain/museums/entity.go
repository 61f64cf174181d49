package museums

import "github.com/go-playground/validator/v10"

// Museum is an administrator-managed geofenced venue. Immutable during a
// scan; only admin actions create or update rows.
type Museum struct {
	ID           string  `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Lat          float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon          float64 `json:"lon" validate:"gte=-180,lte=180"`
	RadiusMeters float64 `json:"geofence_radius_meters" validate:"gte=0"`
}

var validate = validator.New()

func (m *Museum) Validate() error {
	return validate.Struct(m)
}
