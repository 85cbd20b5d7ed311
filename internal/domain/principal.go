package domain

// Permission names an action a principal may perform.
type Permission string

const (
	PermCreateFlight Permission = "CREATE_FLIGHT"
	PermEditCustomer Permission = "EDIT_CUSTOMER"
	PermViewReports  Permission = "VIEW_REPORTS"
	PermBookFlight   Permission = "BOOK_FLIGHT"
	PermViewBookings Permission = "VIEW_BOOKINGS"
	PermEditProfile  Permission = "EDIT_PROFILE"
)

// Principal is an authenticated identity with a fixed permission set. There
// is no dynamic role assignment; each variant enumerates its permissions.
type Principal interface {
	Username() string
	Permissions() []Permission
}

type AdminPrincipal struct {
	Name string
}

func (p AdminPrincipal) Username() string { return p.Name }

func (p AdminPrincipal) Permissions() []Permission {
	return []Permission{PermCreateFlight, PermEditCustomer, PermViewReports}
}

type CustomerPrincipal struct {
	CustomerID CustomerID
	Email      Email
}

func (p CustomerPrincipal) Username() string { return p.Email.String() }

func (p CustomerPrincipal) Permissions() []Permission {
	return []Permission{PermBookFlight, PermViewBookings, PermEditProfile}
}

// HasPermission is a set membership test against the principal's fixed
// permission set.
func HasPermission(p Principal, perm Permission) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Permissions() {
		if have == perm {
			return true
		}
	}
	return false
}
