package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CustomerID is a fixed-length six character identifier.
type CustomerID string

const customerIDLength = 6

func NewCustomerID(value string) (CustomerID, error) {
	if len(value) != customerIDLength {
		return "", fmt.Errorf("%w: customer id must be %d characters", ErrInvalidRequest, customerIDLength)
	}
	return CustomerID(value), nil
}

func (id CustomerID) String() string { return string(id) }

// FlightNumber is a two-letter airline code plus a four digit number,
// rendered as "BA-1001".
type FlightNumber struct {
	Airline string
	Number  int
}

var airlineCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)

func NewFlightNumber(airline string, number int) (FlightNumber, error) {
	if !airlineCodeRe.MatchString(airline) {
		return FlightNumber{}, fmt.Errorf("%w: airline code must be two uppercase letters", ErrInvalidRequest)
	}
	if number < 1000 || number > 9999 {
		return FlightNumber{}, fmt.Errorf("%w: flight number must be between 1000 and 9999", ErrInvalidRequest)
	}
	return FlightNumber{Airline: airline, Number: number}, nil
}

// ParseFlightNumber parses the "BA-1001" form. The dash is optional.
func ParseFlightNumber(value string) (FlightNumber, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 6 {
		return FlightNumber{}, fmt.Errorf("%w: flight number must look like BA-1001", ErrInvalidRequest)
	}
	num, err := strconv.Atoi(s[2:])
	if err != nil {
		return FlightNumber{}, fmt.Errorf("%w: flight number must look like BA-1001", ErrInvalidRequest)
	}
	return NewFlightNumber(s[:2], num)
}

func (n FlightNumber) String() string {
	return fmt.Sprintf("%s-%04d", n.Airline, n.Number)
}

func (n FlightNumber) IsZero() bool { return n.Airline == "" }

// Email is a validated local@domain.tld address.
type Email string

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func NewEmail(value string) (Email, error) {
	v := strings.TrimSpace(value)
	if !emailRe.MatchString(v) {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	return Email(v), nil
}

func (e Email) String() string { return string(e) }

// Phone is a validated digit string with an optional leading plus.
type Phone string

var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

func NewPhone(value string) (Phone, error) {
	v := strings.TrimSpace(value)
	if !phoneRe.MatchString(v) {
		return "", fmt.Errorf("%w: invalid phone number", ErrInvalidRequest)
	}
	return Phone(v), nil
}

func (p Phone) String() string { return string(p) }
