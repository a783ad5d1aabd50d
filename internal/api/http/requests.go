package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	isoDateLayout    = "2006-01-02"
	defaultPageLimit = 100
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	// isodate accepts an empty string or a YYYY-MM-DD date.
	if err := v.RegisterValidation("isodate", isISODate); err != nil {
		panic(fmt.Sprintf("register isodate validation: %v", err))
	}

	return v
}

func isISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(isoDateLayout, s)
	return err == nil
}

// validationError converts a validator or parse error into a 422 response.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "isodate":
			msgs = append(msgs, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
	}
	return fiber.NewError(fiber.StatusUnprocessableEntity, strings.Join(msgs, "; "))
}

// weatherQuery holds query parameters of the location lookup.
type weatherQuery struct {
	Location  string `query:"location" validate:"required"`
	Unit      string `query:"unit" validate:"oneof=celsius fahrenheit"`
	StartDate string `query:"start_date" validate:"isodate"`
	EndDate   string `query:"end_date" validate:"isodate"`
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	q := weatherQuery{
		Location:  c.Query("location"),
		Unit:      c.Query("unit", weather.UnitCelsius),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}
	return q, nil
}

func (q weatherQuery) toLookup() weather.LookupRequest {
	return weather.LookupRequest{
		Location: q.Location,
		Unit:     q.Unit,
		Dates:    weather.DateRange{Start: q.StartDate, End: q.EndDate},
	}
}

// coordinatesQuery holds query parameters of the coordinates-only lookup.
type coordinatesQuery struct {
	Lat  float64 `query:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `query:"lon" validate:"gte=-180,lte=180"`
	Unit string  `query:"unit" validate:"oneof=celsius fahrenheit"`
}

func parseCoordinatesQuery(c *fiber.Ctx) (coordinatesQuery, error) {
	q := coordinatesQuery{Unit: c.Query("unit", weather.UnitCelsius)}

	var err error
	if q.Lat, err = requiredFloat(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = requiredFloat(c, "lon"); err != nil {
		return q, err
	}
	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}
	return q, nil
}

func requiredFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, key+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, key+" must be a number")
	}
	return v, nil
}

// pageQuery holds pagination parameters of the history listing.
type pageQuery struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0"`
}

func parsePageQuery(c *fiber.Ctx) (pageQuery, error) {
	q := pageQuery{Limit: defaultPageLimit}

	var err error
	if q.Skip, err = optionalInt(c, "skip", 0); err != nil {
		return q, err
	}
	if q.Limit, err = optionalInt(c, "limit", defaultPageLimit); err != nil {
		return q, err
	}
	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}
	return q, nil
}

func optionalInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, key+" must be an integer")
	}
	return v, nil
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "id must be a non-negative integer")
	}
	return uint(id), nil
}

// createHistoryRequest is the body of POST /history.
type createHistoryRequest struct {
	Location    string   `json:"location" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required"`
	Description string   `json:"description" validate:"required"`
	StartDate   *string  `json:"start_date" validate:"omitempty,isodate"`
	EndDate     *string  `json:"end_date" validate:"omitempty,isodate"`
	Note        *string  `json:"note"`
}

func (r createHistoryRequest) toRecord() store.NewRecord {
	return store.NewRecord{
		Location:    r.Location,
		Temperature: *r.Temperature,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Note:        r.Note,
	}
}

// updateHistoryRequest is the body of PUT /history/{id}; absent or null fields are left unchanged.
type updateHistoryRequest struct {
	Note      *string `json:"note"`
	StartDate *string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   *string `json:"end_date" validate:"omitempty,isodate"`
}

func (r updateHistoryRequest) toUpdate() store.RecordUpdate {
	return store.RecordUpdate{
		Note:      r.Note,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}
