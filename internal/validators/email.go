package validators

import "regexp"

// local@domain.tld, no whitespace. Deliverability is not checked here.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsEmailValid(email string) bool {
	return emailRe.MatchString(email)
}
