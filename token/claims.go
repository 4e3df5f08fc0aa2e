package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// ClaimNameIdentifier is the WS-Federation claim URI the backend uses for
// subject identifiers in both token types.
const ClaimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"

// MainClaims is the payload of the organisation token (mainToken). It carries
// the tenant identity and the backend host the tenant's traffic must target.
type MainClaims struct {
	MemberName   string `json:"MemberName"`
	HostURL      string `json:"HostUrl"`
	MemberNumber string `json:"MemberNumber"`
	MemberID     string `json:"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"`
	LicenceCodes string `json:"LicenceCodes"`
	jwt.RegisteredClaims
}

// AccessClaims is the payload of the user token (accessToken).
type AccessClaims struct {
	FullName string `json:"NameLastName"`
	UserID   string `json:"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"`
	jwt.RegisteredClaims
}

// LicenseInfo is derived from the organisation token's LicenceCodes claim.
// It is recomputed whenever the organisation token changes and never persisted.
type LicenseInfo struct {
	HasExtraPackage    bool     `json:"hasExtraPackage"`    // any code with prefix CRMMIK
	HasStandardPackage bool     `json:"hasStandardPackage"` // any code with prefix CRMKUL
	AllLicenses        []string `json:"allLicenses"`
	RawLicenceCode     string   `json:"rawLicenceCode"`
}

// UserInfo aggregates the decoded claims of both tokens plus derived licence
// data. It exists only while both tokens are present and decodable.
type UserInfo struct {
	// from the user token
	FullName string `json:"fullName"`
	UserID   string `json:"userId"`

	// from the organisation token
	MemberName   string `json:"memberName"`
	HostURL      string `json:"hostUrl"`
	MemberNumber string `json:"memberNumber"`
	MemberID     string `json:"memberId"`

	LicenseInfo LicenseInfo `json:"licenseInfo"`

	// IsTokensValid reports whether both tokens were unexpired at the time
	// the aggregate was computed.
	IsTokensValid bool `json:"isTokensValid"`
}
