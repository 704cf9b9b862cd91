package rest

import (
	"math"
	"regexp"

	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/validate"
)

var (
	page      = validate.QueryField("page")
	limit     = validate.QueryField("limit")
	priceMin  = validate.QueryField("priceMin")
	priceMax  = validate.QueryField("priceMax")
	location  = validate.QueryField("location")
	bedrooms  = validate.QueryField("bedrooms")
	available = validate.QueryField("isAvailable")

	pathID        = validate.PathField("id")
	landlordQuery = validate.QueryField("landlordId")

	title       = validate.BodyField("title")
	description = validate.BodyField("description")
	price       = validate.BodyField("price")
	address     = validate.BodyField("location")
	landlordID  = validate.BodyField("landlordId")
	rooms       = validate.BodyField("bedrooms")
	baths       = validate.BodyField("bathrooms")
	area        = validate.BodyField("area")

	propertyIDs = validate.BodyField("propertyIds")
	isApproved  = validate.BodyField("isApproved")
	propertyID  = validate.BodyField("propertyId")
	status      = validate.BodyField("status")
	amount      = validate.BodyField("amount")
	paymentDate = validate.BodyField("paymentDate")
)

var locationPattern = regexp.MustCompile(`^[\p{L}\p{N} ,.'\-/]*$`)

// paginationRules bound page and limit. limit above the cap is rejected
// rather than clamped.
var paginationRules = []validate.FieldRule{
	page.Type(validate.Int, "Page must be an integer"),
	page.Range(1, math.MaxInt32, "Page must be between 1 and 2147483647"),
	limit.Type(validate.Int, "Limit must be an integer"),
	limit.Range(1, domain.MaxLimit, "Limit must be between 1 and 100"),
}

var filterRules = []validate.FieldRule{
	priceMin.Type(validate.Decimal, "Minimum price must be a number"),
	priceMin.Min(0, "Minimum price must be a non-negative number"),
	priceMax.Type(validate.Decimal, "Maximum price must be a number"),
	priceMax.Min(0, "Maximum price must be a non-negative number"),
	location.Type(validate.String, "Location must be a string"),
	location.Length(1, 100, "Location must be between 1 and 100 characters"),
	location.Pattern(locationPattern, "Location contains invalid characters"),
	bedrooms.Type(validate.Int, "Bedrooms must be an integer"),
	bedrooms.Min(0, "Bedrooms must be a non-negative integer"),
	available.Type(validate.Bool, "isAvailable must be true or false"),
}

var idRules = []validate.FieldRule{
	pathID.Required("Property ID is required"),
	pathID.Type(validate.UUID, "Property ID must be a valid UUID"),
}

var landlordQueryRules = []validate.FieldRule{
	landlordQuery.Type(validate.UUID, "Landlord ID must be a valid UUID"),
}

var createPropertyRules = []validate.FieldRule{
	title.Required("Title is required"),
	title.Type(validate.String, "Title must be a string"),
	title.Length(3, 100, "Title must be between 3 and 100 characters"),
	description.Required("Description is required"),
	description.Type(validate.String, "Description must be a string"),
	description.Length(10, 2000, "Description must be between 10 and 2000 characters"),
	price.Required("Price is required"),
	price.Type(validate.Decimal, "Price must be a number"),
	price.Range(0, 1_000_000, "Price must be between 0 and 1,000,000"),
	price.Custom(cents, "Price must have at most 2 decimal places"),
	address.Required("Location is required"),
	address.Type(validate.String, "Location must be a string"),
	address.Length(2, 100, "Location must be between 2 and 100 characters"),
	landlordID.Required("Landlord ID is required"),
	landlordID.Type(validate.UUID, "Landlord ID must be a valid UUID"),
	rooms.Type(validate.Int, "Bedrooms must be an integer"),
	rooms.Min(0, "Bedrooms must be a non-negative integer"),
	baths.Type(validate.Int, "Bathrooms must be an integer"),
	baths.Min(0, "Bathrooms must be a non-negative integer"),
	area.Type(validate.Decimal, "Area must be a number"),
	area.Min(0, "Area must be a non-negative number"),
	area.Custom(cents, "Area must have at most 2 decimal places"),
}

// updatePropertyRules are createPropertyRules without presence checks.
var updatePropertyRules = []validate.FieldRule{
	title.Type(validate.String, "Title must be a string"),
	title.Length(3, 100, "Title must be between 3 and 100 characters"),
	description.Type(validate.String, "Description must be a string"),
	description.Length(10, 2000, "Description must be between 10 and 2000 characters"),
	price.Type(validate.Decimal, "Price must be a number"),
	price.Range(0, 1_000_000, "Price must be between 0 and 1,000,000"),
	price.Custom(cents, "Price must have at most 2 decimal places"),
	address.Type(validate.String, "Location must be a string"),
	address.Length(2, 100, "Location must be between 2 and 100 characters"),
	rooms.Type(validate.Int, "Bedrooms must be an integer"),
	rooms.Min(0, "Bedrooms must be a non-negative integer"),
	baths.Type(validate.Int, "Bathrooms must be an integer"),
	baths.Min(0, "Bathrooms must be a non-negative integer"),
	area.Type(validate.Decimal, "Area must be a number"),
	area.Min(0, "Area must be a non-negative number"),
	area.Custom(cents, "Area must have at most 2 decimal places"),
}

var bulkApproveRules = []validate.FieldRule{
	propertyIDs.Required("Property IDs are required"),
	propertyIDs.Custom(isList, "Property IDs must be an array"),
	propertyIDs.Length(1, 1000, "Property IDs must be a non-empty array"),
	propertyIDs.Type(validate.UUIDList, "Each property ID must be a valid UUID"),
}

var approvalRules = []validate.FieldRule{
	isApproved.Required("isApproved is required"),
	isApproved.Type(validate.Bool, "isApproved must be a boolean"),
}

var maintenanceCreateRules = []validate.FieldRule{
	propertyID.Required("Property ID is required"),
	propertyID.Type(validate.UUID, "Property ID must be a valid UUID"),
	description.Required("Description is required"),
	description.Type(validate.String, "Description must be a string"),
	description.Length(10, 1000, "Description must be between 10 and 1000 characters"),
}

var maintenanceStatusRules = []validate.FieldRule{
	pathID.Type(validate.UUID, "Request ID must be a valid UUID"),
	status.Required("Status is required"),
	status.Type(validate.String, "Status must be a string"),
	status.OneOf([]string{
		string(domain.MaintenancePending),
		string(domain.MaintenanceInProgress),
		string(domain.MaintenanceResolved),
	}, "Status must be pending, in_progress or resolved"),
}

var paymentCreateRules = []validate.FieldRule{
	propertyID.Required("Property ID is required"),
	propertyID.Type(validate.UUID, "Property ID must be a valid UUID"),
	amount.Required("Amount is required"),
	amount.Type(validate.Decimal, "Amount must be a number"),
	amount.Custom(positive, "Amount must be a positive number"),
	amount.Custom(cents, "Amount must have at most 2 decimal places"),
	paymentDate.Type(validate.Time, "Payment date must be an ISO 8601 date"),
}

var paymentIDRules = []validate.FieldRule{
	pathID.Type(validate.UUID, "Payment ID must be a valid UUID"),
}

func positive(v any) bool {
	d, err := validate.ToDecimal(v)
	return err == nil && d.IsPositive()
}

// cents matches the two-decimal scale of the numeric columns. Values that
// are not numbers are left to the Type rule.
func cents(v any) bool {
	d, err := validate.ToDecimal(v)
	return err != nil || d.Equal(d.Round(domain.DecimalPlaces))
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func concat(sets ...[]validate.FieldRule) []validate.FieldRule {
	var out []validate.FieldRule
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
