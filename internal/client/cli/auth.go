package cli

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/client/session"
	"github.com/dmitrijs2005/taiglo/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

const minPasswordLength = 6

// checkNewPassword validates a password chosen at registration.
func checkNewPassword(password, confirmation []byte) error {
	if !bytes.Equal(password, confirmation) {
		return common.ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return common.ErrPasswordTooShort
	}
	return nil
}

// Register prompts for the account fields, checks the password locally and
// creates the account. A successful registration also signs the user in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	first, err := getSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone (optional)", a.out)
	if err != nil {
		return err
	}
	bio, err := getSimpleText(a.reader, "About you (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if err := checkNewPassword(password, confirmation); err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return err
	}

	res := a.session.Register(ctx, session.ProfileFields{
		Email:     email,
		Password:  string(password),
		FirstName: first,
		LastName:  last,
		Phone:     phone,
		Bio:       bio,
	})
	if !res.Success {
		fmt.Fprintln(a.out, "Registration failed:", res.Error)
	}
	return resultErr(res)
}

// Login prompts for email and password and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Login(ctx, email, string(password))
	if !res.Success {
		fmt.Fprintln(a.out, "Login failed:", res.Error)
	}
	return resultErr(res)
}

// Logout ends the session. It cannot fail.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// Health reports whether the backend gateway answers.
func (a *App) Health(ctx context.Context) error {
	status, err := a.api.Health(ctx)
	if err != nil {
		a.reportError("checking backend", err)
		return err
	}
	fmt.Fprintf(a.out, "Backend status: %s\n", status)
	return nil
}

// Profile prints the signed-in identity.
func (a *App) Profile(ctx context.Context) error {
	id, ok := a.session.Identity()
	if !ok {
		return fmt.Errorf("not signed in")
	}
	printIdentity(a.out, id)
	return nil
}

// clearField is the answer that empties an optional profile field.
const clearField = "-"

// EditProfile prompts for each editable field, showing the current value.
// An empty answer keeps the field as it is and "-" clears an optional one.
// Only changed fields are sent.
func (a *App) EditProfile(ctx context.Context) error {
	id, ok := a.session.Identity()
	if !ok {
		return fmt.Errorf("not signed in")
	}

	var upd session.ProfileUpdate
	fields := []struct {
		label     string
		current   string
		clearable bool
		dst       **string
	}{
		{"First name", id.FirstName, false, &upd.FirstName},
		{"Last name", id.LastName, false, &upd.LastName},
		{"Phone", models.Value(id.Phone), true, &upd.Phone},
		{"Bio", models.Value(id.Bio), true, &upd.Bio},
		{"Date of birth (YYYY-MM-DD)", models.Value(id.DateOfBirth), true, &upd.DateOfBirth},
	}
	fmt.Fprintf(a.out, "Press enter to keep a value, %q clears phone, bio or date of birth\n", clearField)
	for _, f := range fields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, f.current), a.out)
		if err != nil {
			return err
		}
		if v == clearField && f.clearable {
			v = ""
		} else if v == "" {
			continue
		}
		if v == f.current {
			continue
		}
		*f.dst = &v
	}

	if upd.DateOfBirth != nil && *upd.DateOfBirth != "" {
		if _, err := time.Parse(time.DateOnly, *upd.DateOfBirth); err != nil {
			fmt.Fprintln(a.out, "Date of birth must look like 1990-05-17")
			return err
		}
	}
	if upd.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	res := a.session.UpdateProfile(ctx, upd)
	if !res.Success {
		fmt.Fprintln(a.out, "Profile update failed:", res.Error)
		return resultErr(res)
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}
