package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// ============================================================
// Field rules
// ============================================================

var (
	nameRe   = regexp.MustCompile(`^[A-Za-z ]{3,50}$`)
	phoneRe  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	aadharRe = regexp.MustCompile(`^[0-9]{12}$`)
	panRe    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	amountRe = regexp.MustCompile(`^[0-9]{1,7}(\.[0-9]{1,2})?$`)
	tldRe    = regexp.MustCompile(`\.[A-Za-z]{2,}$`)

	validate = validator.New()
)

// Clamp limits.
const (
	maxNameLen   = 50
	maxEmailLen  = 100
	maxPhoneLen  = 10
	maxAadharLen = 12
	maxPanLen    = 10
	maxAmountInt = 7
	maxAmountDec = 2
)

var fieldLabels = map[string]string{
	domain.FieldName:        "Customer name",
	domain.FieldEmail:       "Email",
	domain.FieldPhone:       "Phone number",
	domain.FieldAadhar:      "Aadhar number",
	domain.FieldPan:         "PAN number",
	domain.FieldAmount:      "Product amount",
	domain.FieldService:     "Service",
	domain.FieldAadharImage: "Aadhar image",
	domain.FieldPanImage:    "PAN image",
}

// ValidateField returns the user-facing message for value, or "" when valid.
// services is the catalog the service choice must come from.
func ValidateField(field, value string, services []domain.ProductService) string {
	if strings.TrimSpace(value) == "" {
		if field == domain.FieldService {
			return "Please select a service"
		}
		return fieldLabels[field] + " is required"
	}

	switch field {
	case domain.FieldName:
		if !nameRe.MatchString(value) || utf8.RuneCountInString(strings.TrimSpace(value)) < 3 {
			return "Name must be 3-50 characters, letters and spaces only"
		}
	case domain.FieldEmail:
		if validate.Var(value, "email") != nil || !tldRe.MatchString(value) {
			return "Enter a valid email address"
		}
	case domain.FieldPhone:
		if !phoneRe.MatchString(value) {
			return "Phone must be 10 digits starting with 6, 7, 8 or 9"
		}
	case domain.FieldAadhar:
		if !aadharRe.MatchString(value) {
			return "Aadhar number must be exactly 12 digits"
		}
	case domain.FieldPan:
		if !panRe.MatchString(strings.ToUpper(value)) {
			return "PAN must be 5 letters, 4 digits and 1 letter (e.g. ABCDE1234F)"
		}
	case domain.FieldAmount:
		if !amountRe.MatchString(value) {
			return "Amount must have at most 7 digits and 2 decimal places"
		}
		amount, err := decimal.NewFromString(value)
		if err != nil || !amount.IsPositive() {
			return "Amount must be greater than zero"
		}
	case domain.FieldService:
		if !inCatalog(value, services) {
			return "Please select a valid service"
		}
	}
	return ""
}

// ValidateDraft checks every user-editable field and returns the non-empty messages.
func ValidateDraft(d *domain.CustomerDraft, services []domain.ProductService) map[string]string {
	errs := make(map[string]string)
	for _, field := range domain.DraftFields {
		if msg := ValidateField(field, d.Get(field), services); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

func inCatalog(id string, services []domain.ProductService) bool {
	for _, s := range services {
		if s.ID.String() == id {
			return true
		}
	}
	return false
}

// ============================================================
// Clamps (applied as the user types; truncate, never reject)
// ============================================================

// ClampField restricts value to the field's charset and length.
func ClampField(field, value string) string {
	switch field {
	case domain.FieldName:
		return truncate(keep(value, isLetterOrSpace), maxNameLen)
	case domain.FieldEmail:
		return truncate(keep(value, func(r rune) bool { return r != ' ' && r != '\t' }), maxEmailLen)
	case domain.FieldPhone:
		return truncate(keep(value, isDigit), maxPhoneLen)
	case domain.FieldAadhar:
		return truncate(keep(value, isDigit), maxAadharLen)
	case domain.FieldPan:
		return truncate(strings.ToUpper(keep(value, isAlnum)), maxPanLen)
	case domain.FieldAmount:
		return clampAmount(value)
	}
	return value
}

// clampAmount keeps digits and the first dot, at most 7 integer and 2 decimal digits.
func clampAmount(value string) string {
	var intPart, decPart strings.Builder
	seenDot := false
	for _, r := range value {
		switch {
		case r == '.' && !seenDot:
			seenDot = true
		case isDigit(r) && !seenDot:
			if intPart.Len() < maxAmountInt {
				intPart.WriteRune(r)
			}
		case isDigit(r) && seenDot:
			if decPart.Len() < maxAmountDec {
				decPart.WriteRune(r)
			}
		}
	}
	if !seenDot {
		return intPart.String()
	}
	return intPart.String() + "." + decPart.String()
}

func keep(s string, allow func(rune) bool) string {
	var b strings.Builder
	for _, r := range s {
		if allow(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetterOrSpace(r rune) bool {
	return r == ' ' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAlnum(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ============================================================
// Login form
// ============================================================

// ValidateLogin checks the login form before the gateway is contacted.
func ValidateLogin(req *domain.LoginRequest) map[string]string {
	errs := make(map[string]string)
	switch n := utf8.RuneCountInString(req.StoreID); {
	case strings.TrimSpace(req.StoreID) == "":
		errs[domain.FieldStoreID] = "Store ID is required"
	case n < 3:
		errs[domain.FieldStoreID] = "Store ID must be at least 3 characters"
	case n > 50:
		errs[domain.FieldStoreID] = "Store ID must be less than 50 characters"
	}
	switch n := utf8.RuneCountInString(req.Password); {
	case req.Password == "":
		errs[domain.FieldPassword] = "Password is required"
	case n < 6:
		errs[domain.FieldPassword] = "Password must be at least 6 characters"
	case n > 100:
		errs[domain.FieldPassword] = "Password must be less than 100 characters"
	}
	return errs
}
