// Package validate holds the request-shape checks run before any
// state-changing operation. Each function returns nil on success or an
// *Error carrying a human-readable message.
package validate

import (
	"regexp"
	"strings"
)

type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func fail(msg string) error { return &Error{msg: msg} }

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func email(v string) error {
	if v == "" {
		return fail("Email is required!")
	}
	if len(v) < 6 || len(v) > 60 {
		return fail("Email must be between 6 and 60 characters!")
	}
	if !emailRe.MatchString(v) {
		return fail("Email must be a valid address!")
	}
	return nil
}

// password requires at least 8 characters with a lowercase letter, an
// uppercase letter and a digit.
func password(v string) error {
	if v == "" {
		return fail("Password is required!")
	}
	if len(v) < 8 ||
		!strings.ContainsAny(v, "abcdefghijklmnopqrstuvwxyz") ||
		!strings.ContainsAny(v, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") ||
		!strings.ContainsAny(v, "0123456789") {
		return fail("Password must be at least 8 characters with lower case, upper case and a number!")
	}
	return nil
}

func code(v string) error {
	if v == "" {
		return fail("Code is required!")
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return fail("Code must be a number!")
		}
	}
	return nil
}

func Signup(emailAddr, pass string) error {
	if err := email(emailAddr); err != nil {
		return err
	}
	return password(pass)
}

func Signin(emailAddr, pass string) error {
	if err := email(emailAddr); err != nil {
		return err
	}
	return password(pass)
}

func AcceptCode(emailAddr, providedCode string) error {
	if err := email(emailAddr); err != nil {
		return err
	}
	return code(providedCode)
}

func ChangePassword(oldPassword, newPassword string) error {
	if err := password(oldPassword); err != nil {
		return err
	}
	return password(newPassword)
}

func AcceptForgotPasswordCode(emailAddr, providedCode, newPassword string) error {
	if err := email(emailAddr); err != nil {
		return err
	}
	if err := code(providedCode); err != nil {
		return err
	}
	return password(newPassword)
}

func CreatePost(title, description, userID string) error {
	if len(strings.TrimSpace(title)) < 3 {
		return fail("Title must be at least 3 characters!")
	}
	if len(strings.TrimSpace(description)) < 3 {
		return fail("Description must be at least 3 characters!")
	}
	if userID == "" {
		return fail("User id is required!")
	}
	return nil
}
