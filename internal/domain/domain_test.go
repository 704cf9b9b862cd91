package domain_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/domain"
)

// ---------------------------------------------------------------------------
// Roles and statuses.
// ---------------------------------------------------------------------------

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    domain.Role
		wantErr bool
	}{
		{"tenant", domain.RoleTenant, false},
		{"landlord", domain.RoleLandlord, false},
		{"admin", domain.RoleAdmin, false},
		{"Admin", "", true},
		{"", "", true},
		{"superuser", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoles_AllValid(t *testing.T) {
	t.Parallel()

	roles := domain.Roles()
	require.Len(t, roles, 3)
	for _, r := range roles {
		assert.True(t, r.Valid(), r)
	}
}

func TestParseMaintenanceStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"pending", "in_progress", "resolved"} {
		got, err := domain.ParseMaintenanceStatus(s)
		require.NoError(t, err)
		assert.Equal(t, domain.MaintenanceStatus(s), got)
	}
	_, err := domain.ParseMaintenanceStatus("closed")
	require.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"pending", "completed", "failed"} {
		got, err := domain.ParsePaymentStatus(s)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatus(s), got)
	}
	_, err := domain.ParsePaymentStatus("refunded")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Property flags and patches.
// ---------------------------------------------------------------------------

func TestProperty_Flags(t *testing.T) {
	t.Parallel()

	p := &domain.Property{IsAvailable: true}
	assert.True(t, p.Flag(domain.FlagAvailable))
	assert.False(t, p.Flag(domain.FlagFeatured))
	assert.False(t, p.Flag(domain.FlagApproved))

	p.SetFlag(domain.FlagFeatured, true)
	p.SetFlag(domain.FlagApproved, true)
	p.SetFlag(domain.FlagAvailable, false)
	assert.True(t, p.IsFeatured)
	assert.True(t, p.IsApproved)
	assert.False(t, p.IsAvailable)

	assert.False(t, p.Flag(domain.Flag("is_deleted")))
	assert.False(t, domain.Flag("is_deleted").Valid())
	assert.True(t, domain.FlagApproved.Valid())
}

func TestPropertyPatch_Apply(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.PropertyPatch{}.Empty())

	title := "Garden flat"
	beds := 0
	price := decimal.RequireFromString("42000.50")
	patch := domain.PropertyPatch{Title: &title, Bedrooms: &beds, Price: &price}
	require.False(t, patch.Empty())

	p := &domain.Property{
		Title:       "Old title",
		Description: "Unchanged description",
		Bedrooms:    3,
		Price:       decimal.NewFromInt(10),
		Location:    "Nairobi",
	}
	patch.Apply(p)

	assert.Equal(t, "Garden flat", p.Title)
	assert.Equal(t, 0, p.Bedrooms)
	assert.True(t, p.Price.Equal(price))
	assert.Equal(t, "Unchanged description", p.Description)
	assert.Equal(t, "Nairobi", p.Location)
}

// ---------------------------------------------------------------------------
// Filters.
// ---------------------------------------------------------------------------

func ptr[T any](v T) *T { return &v }

func TestPropertyFilter_Matches(t *testing.T) {
	t.Parallel()

	landlord := uuid.New()
	p := &domain.Property{
		Price:       decimal.NewFromInt(25000),
		Location:    "Westlands, Nairobi",
		Bedrooms:    2,
		IsAvailable: true,
		LandlordID:  landlord,
	}

	tests := []struct {
		name   string
		filter domain.PropertyFilter
		want   bool
	}{
		{"empty filter", domain.PropertyFilter{}, true},
		{"price within range", domain.PropertyFilter{
			PriceMin: ptr(decimal.NewFromInt(20000)),
			PriceMax: ptr(decimal.NewFromInt(30000)),
		}, true},
		{"price bounds inclusive", domain.PropertyFilter{
			PriceMin: ptr(decimal.NewFromInt(25000)),
			PriceMax: ptr(decimal.NewFromInt(25000)),
		}, true},
		{"below min", domain.PropertyFilter{PriceMin: ptr(decimal.NewFromInt(25001))}, false},
		{"above max", domain.PropertyFilter{PriceMax: ptr(decimal.NewFromInt(24999))}, false},
		{"location substring case-insensitive", domain.PropertyFilter{Location: ptr("nairobi")}, true},
		{"location mismatch", domain.PropertyFilter{Location: ptr("Mombasa")}, false},
		{"bedrooms exact", domain.PropertyFilter{Bedrooms: ptr(2)}, true},
		{"zero bedrooms is active", domain.PropertyFilter{Bedrooms: ptr(0)}, false},
		{"availability false is active", domain.PropertyFilter{IsAvailable: ptr(false)}, false},
		{"featured only", domain.PropertyFilter{IsFeatured: ptr(true)}, false},
		{"landlord", domain.PropertyFilter{LandlordID: &landlord}, true},
		{"other landlord", domain.PropertyFilter{LandlordID: ptr(uuid.New())}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.filter.Matches(p))
		})
	}
}

// ---------------------------------------------------------------------------
// Pagination.
// ---------------------------------------------------------------------------

func TestNewPageRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		page, limit int
		want        domain.PageRequest
		wantOffset  int
	}{
		{"defaults", 0, 0, domain.PageRequest{Page: 1, Limit: 10}, 0},
		{"negative", -3, -1, domain.PageRequest{Page: 1, Limit: 10}, 0},
		{"third page", 3, 20, domain.PageRequest{Page: 3, Limit: 20}, 40},
		{"limit capped", 1, 500, domain.PageRequest{Page: 1, Limit: 100}, 0},
		{"huge page", math.MaxInt, 100, domain.PageRequest{Page: math.MaxInt / 100, Limit: 100}, (math.MaxInt/100 - 1) * 100},
		{"page times limit overflows", math.MaxInt / 10, 100, domain.PageRequest{Page: math.MaxInt / 100, Limit: 100}, (math.MaxInt/100 - 1) * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := domain.NewPageRequest(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	t.Run("partial last page", func(t *testing.T) {
		t.Parallel()

		pg := domain.NewPage([]int{21, 22, 23}, 23, domain.PageRequest{Page: 3, Limit: 10})
		assert.Equal(t, 23, pg.Total)
		assert.Equal(t, 3, pg.TotalPages)
		assert.Equal(t, 3, pg.CurrentPage)
		assert.Len(t, pg.Items, 3)
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()

		pg := domain.NewPage[int](nil, 0, domain.PageRequest{Page: 1, Limit: 10})
		assert.NotNil(t, pg.Items)
		assert.Empty(t, pg.Items)
		assert.Equal(t, 0, pg.TotalPages)
		assert.Equal(t, 1, pg.CurrentPage)
	})

	t.Run("page beyond the end", func(t *testing.T) {
		t.Parallel()

		pg := domain.NewPage([]int{}, 5, domain.PageRequest{Page: 9, Limit: 10})
		assert.Equal(t, 1, pg.TotalPages)
		assert.Equal(t, 1, pg.CurrentPage)
		assert.Equal(t, 9, pg.Page)
	})
}

// ---------------------------------------------------------------------------
// Contacts.
// ---------------------------------------------------------------------------

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+254 712 345 678", "+254712345678", true},
		{"(254) 712-345-678", "+254712345678", true},
		{"12345678", "", false},
		{"1234567890123456", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := domain.NormalizePhone(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContactChecks(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.IsEmail("jane@example.com"))
	assert.False(t, domain.IsEmail("jane@example"))
	assert.True(t, domain.IsPhone("+254712345678"))
	assert.False(t, domain.IsPhone("0712"))

	p := &domain.Profile{Phone: "+254712345678"}
	assert.Equal(t, "+254712345678", p.Contact())
	p.Email = "jane@example.com"
	assert.Equal(t, "jane@example.com", p.Contact())
}
