package emspt

import (
	"fmt"
	"strings"
)

// Form is the test form code. It selects the key grouping.
type Form string

const (
	FormA Form = "A"
	FormB Form = "B"
	FormC Form = "C"
)

// Impairment is the participant's impairment category.
type Impairment string

const (
	ImpairmentHearing Impairment = "hearing"
	ImpairmentVision  Impairment = "vision"
	ImpairmentMotor   Impairment = "motor"
)

// Gender only selects norm and sten tables.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

var (
	Forms       = []Form{FormA, FormB, FormC}
	Impairments = []Impairment{ImpairmentHearing, ImpairmentVision, ImpairmentMotor}
	Genders     = []Gender{GenderMale, GenderFemale}
)

func (f Form) Valid() bool {
	for _, v := range Forms {
		if f == v {
			return true
		}
	}
	return false
}

func (i Impairment) Valid() bool {
	for _, v := range Impairments {
		if i == v {
			return true
		}
	}
	return false
}

func (g Gender) Valid() bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// Profile selects which tables apply to a scoring request.
type Profile struct {
	Form       Form       `json:"form"`
	Impairment Impairment `json:"impairment"`
	Gender     Gender     `json:"gender"`
}

// ParseProfile normalizes raw strings and validates them against the
// enumerations.
func ParseProfile(form, impairment, gender string) (Profile, error) {
	p := Profile{
		Form:       Form(strings.ToUpper(strings.TrimSpace(form))),
		Impairment: Impairment(strings.ToLower(strings.TrimSpace(impairment))),
		Gender:     Gender(strings.ToLower(strings.TrimSpace(gender))),
	}
	return p, p.Validate()
}

// Validate returns an *InvalidProfileError naming the first bad field.
func (p Profile) Validate() error {
	switch {
	case !p.Form.Valid():
		return &InvalidProfileError{Field: "form", Value: string(p.Form)}
	case !p.Impairment.Valid():
		return &InvalidProfileError{Field: "impairment", Value: string(p.Impairment)}
	case !p.Gender.Valid():
		return &InvalidProfileError{Field: "gender", Value: string(p.Gender)}
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Form, p.Impairment, p.Gender)
}
