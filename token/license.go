package token

import "strings"

const (
	// ExtraPackagePrefix marks licence codes of the extended product package.
	ExtraPackagePrefix = "CRMMIK"
	// StandardPackagePrefix marks licence codes of the standard product package.
	StandardPackagePrefix = "CRMKUL"
)

// ParseLicenses splits the raw LicenceCodes claim (comma separated) into a
// LicenseInfo. Codes are trimmed but otherwise kept verbatim and in order.
func ParseLicenses(raw string) LicenseInfo {
	codes := strings.Split(raw, ",")
	licenses := make([]string, 0, len(codes))
	for _, code := range codes {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			licenses = append(licenses, trimmed)
		}
	}

	info := LicenseInfo{
		AllLicenses:    licenses,
		RawLicenceCode: raw,
	}
	for _, license := range licenses {
		if strings.HasPrefix(license, ExtraPackagePrefix) {
			info.HasExtraPackage = true
		}
		if strings.HasPrefix(license, StandardPackagePrefix) {
			info.HasStandardPackage = true
		}
	}
	return info
}

// HasLicense reports whether the exact licence code is present.
func (l LicenseInfo) HasLicense(code string) bool {
	for _, license := range l.AllLicenses {
		if license == code {
			return true
		}
	}
	return false
}

// HasLicensePrefix reports whether any licence code starts with prefix.
func (l LicenseInfo) HasLicensePrefix(prefix string) bool {
	for _, license := range l.AllLicenses {
		if strings.HasPrefix(license, prefix) {
			return true
		}
	}
	return false
}
