// Package validation holds the per-entity validators run before any write.
// Each validator returns a Result mapping field names to messages; an
// empty Result means the entity may be persisted.
package validation

import (
	"time"
	"unicode/utf8"

	"agora/internal/models"
)

const (
	TitleMinLen    = 5
	TitleMaxLen    = 200
	DescriptionMin = 10
	CityMinLen     = 2
	CityMaxLen     = 100
	CategoryMaxLen = 100
	UsernameMaxLen = 150
)

// Result collects field-level validation errors.
type Result struct {
	Errors map[string]string
}

func NewResult() *Result {
	return &Result{Errors: make(map[string]string)}
}

func (r *Result) Add(field, message string) {
	// Keep the first message per field
	if _, ok := r.Errors[field]; !ok {
		r.Errors[field] = message
	}
}

func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// ValidateActivity checks every activity invariant against the given
// reference time (the clock at validation, not at form display).
func ValidateActivity(a *models.Activity, now time.Time) *Result {
	r := NewResult()

	if n := utf8.RuneCountInString(a.Title); n < TitleMinLen || n > TitleMaxLen {
		r.Add("title", "Le titre doit contenir entre 5 et 200 caractères.")
	}
	if utf8.RuneCountInString(a.Description) < DescriptionMin {
		r.Add("description", "La description doit contenir au moins 10 caractères.")
	}
	if n := utf8.RuneCountInString(a.LocationCity); n < CityMinLen || n > CityMaxLen {
		r.Add("location_city", "La ville doit contenir entre 2 et 100 caractères.")
	}

	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		r.Add("start_time", "Les dates de début et de fin doivent être renseignées.")
		return r
	}
	if !a.StartTime.After(now) {
		r.Add("start_time", "La date de début doit être dans le futur.")
	}
	if !a.EndTime.After(a.StartTime) {
		r.Add("end_time", "La date de fin doit être postérieure à la date de début.")
	}

	return r
}

// ValidateCategory checks the category name bounds.
func ValidateCategory(c *models.Category) *Result {
	r := NewResult()
	if c.Name == "" {
		r.Add("name", "Le nom de la catégorie ne peut pas être vide.")
	} else if utf8.RuneCountInString(c.Name) > CategoryMaxLen {
		r.Add("name", "Le nom de la catégorie ne peut pas dépasser 100 caractères.")
	}
	return r
}

// ValidateSignup checks the registration form. usernameTaken asks the
// store so the uniqueness check runs before any insert is attempted.
func ValidateSignup(username, password1, password2 string, usernameTaken func(string) bool) *Result {
	r := NewResult()

	if username == "" {
		r.Add("username", "Le nom d'utilisateur est obligatoire.")
	} else if utf8.RuneCountInString(username) > UsernameMaxLen {
		r.Add("username", "Le nom d'utilisateur ne peut pas dépasser 150 caractères.")
	} else if usernameTaken(username) {
		r.Add("username", "Ce nom d'utilisateur est déjà pris.")
	}

	if password1 == "" {
		r.Add("password1", "Le mot de passe est obligatoire.")
	}
	if password1 != password2 {
		r.Add("password2", "Les mots de passe ne correspondent pas.")
	}

	return r
}
