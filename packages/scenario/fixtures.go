package scenario

import "time"

// DefaultPassword is used for every generated account.
const DefaultPassword = "TestPass123!"

// Registration is the body of POST auth/register.
type Registration struct {
	FullName        string `json:"fullName"`
	Department      string `json:"department"`
	EmpID           string `json:"empId"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	MobileNo        string `json:"mobileNo"`
	CompanyEmail    string `json:"companyEmail"`
}

// Login is the body of POST auth/login. Identifier is a company email or an
// employee id.
type Login struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// NewRegistration derives a unique identity from the time of day so repeated
// runs against a persistent backend do not collide.
func NewRegistration(now time.Time, password string) Registration {
	stamp := now.Format("150405")
	return Registration{
		FullName:        "Test User " + stamp,
		Department:      "IT",
		EmpID:           "EMP" + stamp,
		Password:        password,
		ConfirmPassword: password,
		MobileNo:        "9876543" + stamp[len(stamp)-3:],
		CompanyEmail:    "test" + stamp + "@company.com",
	}
}

// DuplicateRegistration reuses email with an otherwise distinct identity.
func DuplicateRegistration(email, password string) Registration {
	return Registration{
		FullName:        "Duplicate User",
		Department:      "HR",
		EmpID:           "EMP999999",
		Password:        password,
		ConfirmPassword: password,
		MobileNo:        "9876543999",
		CompanyEmail:    email,
	}
}

// InvalidRegistration breaks every field rule at once.
func InvalidRegistration() Registration {
	return Registration{
		FullName:        "",
		Department:      "IT",
		EmpID:           "123",
		Password:        "123",
		ConfirmPassword: "456",
		MobileNo:        "123",
		CompanyEmail:    "invalid-email",
	}
}
