// Package console is the interactive front-end. It parses raw input,
// gates admin and customer menus through the authorization dispatcher and
// calls the services with already-parsed arguments. No business rule lives
// here.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/service/auth"
	"github.com/aturgenev/skyreserve/internal/service/customers"
	"github.com/aturgenev/skyreserve/internal/service/flights"
	"github.com/aturgenev/skyreserve/internal/service/reservation"
)

type Console struct {
	authenticator auth.AuthUseCase
	admins        *auth.CredentialStore
	flights       flights.FlightUseCase
	customers     customers.CustomerUseCase
	reservations  reservation.ReservationUseCase

	in  *bufio.Scanner
	out io.Writer
}

func New(
	authenticator auth.AuthUseCase,
	admins *auth.CredentialStore,
	flightSvc flights.FlightUseCase,
	customerSvc customers.CustomerUseCase,
	reservationSvc reservation.ReservationUseCase,
	in io.Reader,
	out io.Writer,
) *Console {
	return &Console{
		authenticator: authenticator,
		admins:        admins,
		flights:       flightSvc,
		customers:     customerSvc,
		reservations:  reservationSvc,
		in:            bufio.NewScanner(in),
		out:           out,
	}
}

// Run drives the top-level menu until the user exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "+++ Welcome to SkyReserve +++")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(c.out, "\n1) Login  2) Register  0) Exit")
		switch c.prompt("Choice: ") {
		case "1":
			c.login(ctx)
		case "2":
			c.register(ctx)
		case "0", "":
			fmt.Fprintln(c.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid choice.")
		}
	}
}

func (c *Console) login(ctx context.Context) {
	username := c.prompt("Username or email: ")
	password := c.prompt("Password: ")

	principal, err := c.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		fmt.Fprintf(c.out, "Login failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Logged in as %q\n", principal.Username())

	switch p := principal.(type) {
	case domain.AdminPrincipal:
		c.adminMenu(ctx, p)
	case domain.CustomerPrincipal:
		c.customerMenu(ctx, p)
	}
}

func (c *Console) register(ctx context.Context) {
	input := customers.RegisterInput{
		Name:     c.prompt("Name: "),
		Email:    c.prompt("Email: "),
		Phone:    c.prompt("Phone: "),
		Password: c.prompt("Password: "),
	}
	age, err := strconv.Atoi(c.prompt("Age: "))
	if err != nil {
		fmt.Fprintln(c.out, "Age must be a number.")
		return
	}
	input.Age = age

	customer, err := c.customers.Register(ctx, input)
	if err != nil {
		fmt.Fprintf(c.out, "Registration failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Registered. Your customer id is %s\n", customer.ID)
}

func (c *Console) adminMenu(ctx context.Context, p domain.AdminPrincipal) {
	for {
		fmt.Fprintln(c.out, "\n--- Admin ---")
		fmt.Fprintln(c.out, "1) List customers    2) Add customer   3) Find customer    4) Edit customer")
		fmt.Fprintln(c.out, "5) Delete customer   6) Create flight  7) Delete flight    8) Flight manifest")
		fmt.Fprintln(c.out, "9) Revenue report   10) Audit trail   11) Create admin     0) Logout")
		switch c.prompt("Choice: ") {
		case "1":
			c.listCustomers(ctx, p)
		case "2":
			c.addCustomer(ctx, p)
		case "3":
			c.findCustomer(ctx, p)
		case "4":
			c.editCustomer(ctx, p)
		case "5":
			c.deleteCustomer(ctx, p)
		case "6":
			c.createFlight(ctx, p)
		case "7":
			c.deleteFlight(ctx, p)
		case "8":
			c.showManifest(ctx, p)
		case "9":
			c.revenueReport(ctx, p)
		case "10":
			c.auditTrail(ctx, p)
		case "11":
			c.createAdmin(ctx)
		case "0", "":
			return
		default:
			fmt.Fprintln(c.out, "Invalid choice.")
		}
	}
}

func (c *Console) customerMenu(ctx context.Context, p domain.CustomerPrincipal) {
	for {
		fmt.Fprintln(c.out, "\n--- Customer ---")
		fmt.Fprintln(c.out, "1) Flight schedule  2) Book flight  3) Cancel booking  4) My bookings  5) Update profile  0) Logout")
		switch c.prompt("Choice: ") {
		case "1":
			c.listFlights(ctx)
		case "2":
			c.bookFlight(ctx, p)
		case "3":
			c.cancelBooking(ctx, p)
		case "4":
			c.myBookings(ctx, p)
		case "5":
			c.updateProfile(ctx, p)
		case "0", "":
			return
		default:
			fmt.Fprintln(c.out, "Invalid choice.")
		}
	}
}

func (c *Console) listFlights(ctx context.Context) {
	summaries, err := c.flights.List(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%-9s %-12s %-12s %-17s %-5s %6s %6s %10s %9s\n",
		"Flight", "From", "To", "Departure", "Gate", "Seats", "Free", "Price", "Miles")
	for _, s := range summaries {
		fmt.Fprintf(c.out, "%-9s %-12s %-12s %-17s %-5s %6d %6d %10s %9.0f\n",
			s.Number, s.FromCity, s.ToCity, s.Departure.Format("02 Jan 15:04"), s.Gate,
			s.TotalSeats, s.AvailableSeats, formatCents(s.PriceCents), s.DistanceMiles)
	}
}

func (c *Console) bookFlight(ctx context.Context, p domain.CustomerPrincipal) {
	if !domain.HasPermission(p, domain.PermBookFlight) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	c.listFlights(ctx)
	number := c.prompt("Flight number: ")
	seats, err := strconv.Atoi(c.prompt("Seats: "))
	if err != nil {
		fmt.Fprintln(c.out, "Seats must be a number.")
		return
	}
	method := strings.ToUpper(c.prompt("Payment method (CARD/UPI/WALLET): "))

	booking, err := c.reservations.Book(ctx, reservation.BookingInput{
		FlightNumber: number,
		CustomerID:   p.CustomerID.String(),
		Seats:        seats,
		Method:       method,
	})
	if err != nil {
		fmt.Fprintf(c.out, "Booking failed: %v\n", err)
		if reservation.IsRetryable(err) {
			fmt.Fprintln(c.out, "Try again with fewer seats or another flight.")
		}
		return
	}
	fmt.Fprintf(c.out, "Booked %d seat(s) on %s for %s. Booking id %s\n",
		booking.Seats, booking.FlightNumber, formatCents(booking.AmountCents), booking.ID)
}

func (c *Console) cancelBooking(ctx context.Context, p domain.CustomerPrincipal) {
	if !domain.HasPermission(p, domain.PermViewBookings) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	number, err := domain.ParseFlightNumber(c.prompt("Flight number: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	booking, err := c.reservations.Cancel(ctx, p.CustomerID, number)
	if err != nil {
		fmt.Fprintf(c.out, "Cancellation failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Cancelled booking %s, %d seat(s) released.\n", booking.ID, booking.Seats)
}

func (c *Console) myBookings(ctx context.Context, p domain.CustomerPrincipal) {
	if !domain.HasPermission(p, domain.PermViewBookings) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	bookings, err := c.reservations.BookingsFor(ctx, p.CustomerID)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(bookings) == 0 {
		fmt.Fprintln(c.out, "No bookings.")
		return
	}
	for _, b := range bookings {
		fmt.Fprintf(c.out, "%s  %-9s %2d seat(s)  %10s  %s\n",
			b.ID, b.FlightNumber, b.Seats, formatCents(b.AmountCents), b.CreatedAt.Format(time.RFC822))
	}
}

func (c *Console) updateProfile(ctx context.Context, p domain.CustomerPrincipal) {
	if !domain.HasPermission(p, domain.PermEditProfile) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	name := c.prompt("New name (blank to keep): ")
	phone := c.prompt("New phone (blank to keep): ")
	if err := c.customers.UpdateContact(ctx, p.CustomerID, name, phone); err != nil {
		fmt.Fprintf(c.out, "Update failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Profile updated.")
}

func (c *Console) listCustomers(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermViewReports) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	all, err := c.customers.List(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	for _, cust := range all {
		fmt.Fprintf(c.out, "%s  %-20s %-25s age %3d  %d booking(s)\n",
			cust.ID, cust.Name(), cust.Email, cust.Age, len(cust.Bookings()))
	}
}

func (c *Console) addCustomer(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermEditCustomer) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	c.register(ctx)
}

func (c *Console) findCustomer(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermViewReports) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	id, err := domain.NewCustomerID(c.prompt("Customer id: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	customer, err := c.customers.Get(ctx, id)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s  %s  %s  %s  age %d\n",
		customer.ID, customer.Name(), customer.Email, customer.Phone(), customer.Age)
	for _, b := range customer.Bookings() {
		fmt.Fprintf(c.out, "  %s on %s, %d seat(s), %s\n", b.ID, b.FlightNumber, b.Seats, formatCents(b.AmountCents))
	}
}

func (c *Console) editCustomer(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermEditCustomer) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	id, err := domain.NewCustomerID(c.prompt("Customer id: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	name := c.prompt("New name (blank to keep): ")
	phone := c.prompt("New phone (blank to keep): ")
	if err := c.customers.UpdateContact(ctx, id, name, phone); err != nil {
		fmt.Fprintf(c.out, "Update failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Customer updated.")
}

func (c *Console) auditTrail(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermViewReports) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	id, err := domain.NewCustomerID(c.prompt("Customer id: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	entries, err := c.reservations.AuditTrail(ctx, id)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No history.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "%s  %-9s %2d seat(s)  %10s  %-9s %s\n",
			e.BookingID, e.FlightNumber, e.Seats, formatCents(e.AmountCents), e.Status, e.CreatedAt.Format(time.RFC822))
	}
}

func (c *Console) createFlight(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermCreateFlight) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	input := flights.CreateFlightInput{
		FlightNumber: c.prompt("Flight number (e.g. BA-1001): "),
		FromCity:     c.prompt("From city: "),
		ToCity:       c.prompt("To city: "),
		Gate:         c.prompt("Gate: "),
	}
	var err error
	if input.FromLat, input.FromLon, err = c.promptCoords("Origin"); err != nil {
		fmt.Fprintln(c.out, "Coordinates must be numbers.")
		return
	}
	if input.ToLat, input.ToLon, err = c.promptCoords("Destination"); err != nil {
		fmt.Fprintln(c.out, "Coordinates must be numbers.")
		return
	}
	if input.TotalSeats, err = strconv.Atoi(c.prompt("Total seats: ")); err != nil {
		fmt.Fprintln(c.out, "Seats must be a number.")
		return
	}
	price, err := strconv.ParseFloat(c.prompt("Price (e.g. 149.99): "), 64)
	if err != nil {
		fmt.Fprintln(c.out, "Price must be a number.")
		return
	}
	input.PriceCents = int64(price * 100)
	hours, err := strconv.Atoi(c.prompt("Departs in how many hours: "))
	if err != nil {
		fmt.Fprintln(c.out, "Hours must be a number.")
		return
	}
	duration, err := strconv.Atoi(c.prompt("Duration in hours: "))
	if err != nil {
		fmt.Fprintln(c.out, "Duration must be a number.")
		return
	}
	input.Departure = time.Now().Add(time.Duration(hours) * time.Hour)
	input.Arrival = input.Departure.Add(time.Duration(duration) * time.Hour)

	flight, err := c.flights.Create(ctx, input)
	if err != nil {
		fmt.Fprintf(c.out, "Create failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Flight %s created with %d seats.\n", flight.Number, flight.TotalSeats)
}

func (c *Console) deleteFlight(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermCreateFlight) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	number, err := domain.ParseFlightNumber(c.prompt("Flight number: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	err = c.flights.Delete(ctx, number, false)
	if errors.Is(err, domain.ErrConflict) {
		confirm := c.prompt(fmt.Sprintf("%v. Delete anyway? (y/N): ", err))
		if strings.EqualFold(confirm, "y") {
			err = c.flights.Delete(ctx, number, true)
		} else {
			fmt.Fprintln(c.out, "Aborted.")
			return
		}
	}
	if err != nil {
		fmt.Fprintf(c.out, "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Flight %s deleted.\n", number)
}

func (c *Console) showManifest(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermViewReports) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	number, err := domain.ParseFlightNumber(c.prompt("Flight number: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	flight, err := c.flights.Get(ctx, number)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	manifest := flight.Manifest()
	if len(manifest) == 0 {
		fmt.Fprintln(c.out, "No passengers booked.")
		return
	}
	for _, entry := range manifest {
		fmt.Fprintf(c.out, "customer %s  %2d seat(s)  booking %s\n", entry.CustomerID, entry.Seats, entry.BookingID)
	}
}

func (c *Console) revenueReport(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermViewReports) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	total, err := c.flights.TotalRevenue(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Total booked revenue: %s\n", formatCents(total))
}

func (c *Console) deleteCustomer(ctx context.Context, p domain.AdminPrincipal) {
	if !domain.HasPermission(p, domain.PermEditCustomer) {
		fmt.Fprintln(c.out, "Permission denied.")
		return
	}
	id, err := domain.NewCustomerID(c.prompt("Customer id: "))
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if err := c.customers.Delete(ctx, id); err != nil {
		fmt.Fprintf(c.out, "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Customer %s deleted.\n", id)
}

func (c *Console) createAdmin(ctx context.Context) {
	username := c.prompt("New admin username: ")
	password := c.prompt("New admin password: ")
	if err := c.admins.CreateAccount(username, password); err != nil {
		fmt.Fprintf(c.out, "Create failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Admin %q created.\n", username)
}

func (c *Console) promptCoords(label string) (lat, lon float64, err error) {
	if lat, err = strconv.ParseFloat(c.prompt(label+" latitude: "), 64); err != nil {
		return 0, 0, err
	}
	if lon, err = strconv.ParseFloat(c.prompt(label+" longitude: "), 64); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func (c *Console) prompt(label string) string {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
