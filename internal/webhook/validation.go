package webhook

import (
	"regexp"

	"garagehub/internal/sessions"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	sectorPattern = regexp.MustCompile(`^[A-Z]$`)

	minLat = decimal.NewFromInt(-90)
	maxLat = decimal.NewFromInt(90)
	minLng = decimal.NewFromInt(-180)
	maxLng = decimal.NewFromInt(180)
)

// NewValidator returns a validator that knows the event contract
func NewValidator() *validator.Validate {
	v := validator.New()

	// registration only fails for empty tags or nil functions
	_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return sessions.IsValidPlate(fl.Field().String())
	})
	_ = v.RegisterValidation("sector", func(fl validator.FieldLevel) bool {
		return sectorPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateEventFields, EventRequest{})

	return v
}

// validateEventFields checks the fields each event type requires
func validateEventFields(sl validator.StructLevel) {
	req := sl.Current().Interface().(EventRequest)

	switch sessions.EventType(req.EventType) {
	case sessions.EventEntry:
		if req.EntryTime == nil || req.EntryTime.IsZero() {
			sl.ReportError(req.EntryTime, "entry_time", "EntryTime", "required", "")
		}
	case sessions.EventParked:
		if req.Lat == nil {
			sl.ReportError(req.Lat, "lat", "Lat", "required", "")
		} else if req.Lat.LessThan(minLat) || req.Lat.GreaterThan(maxLat) {
			sl.ReportError(req.Lat, "lat", "Lat", "latitude", "")
		}
		if req.Lng == nil {
			sl.ReportError(req.Lng, "lng", "Lng", "required", "")
		} else if req.Lng.LessThan(minLng) || req.Lng.GreaterThan(maxLng) {
			sl.ReportError(req.Lng, "lng", "Lng", "longitude", "")
		}
	case sessions.EventExit:
		if req.ExitTime == nil || req.ExitTime.IsZero() {
			sl.ReportError(req.ExitTime, "exit_time", "ExitTime", "required", "")
		}
	}
}
