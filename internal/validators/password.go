package validators

import "github.com/go-playground/validator/v10"

// PasswordRuleMessage is returned when a password fails the strength rule.
const PasswordRuleMessage = "Password must contain at least one uppercase letter, one lowercase letter, and one number"

const minPasswordLength = 8

// IsValidPassword reports whether p has at least eight characters, only
// ASCII letters and digits, and at least one lower-case letter, one
// upper-case letter and one digit.
func IsValidPassword(p string) bool {
	if len(p) < minPasswordLength {
		return false
	}

	var lower, upper, digit bool
	for _, c := range p {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			return false
		}
	}
	return lower && upper && digit
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsValidPassword(fl.Field().String())
}
