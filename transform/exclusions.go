package transform

import "strings"

// Exclusions lists field names whose values must never be uppercased.
// Grouped by the kind of data the field carries; all entries are matched
// case-insensitively against the field name.
var Exclusions = []string{
	// email fields
	"email",
	"eposta",
	"e-posta",
	"emailaddress",
	"epostaadresi",
	"mail",
	"mailaddress",

	// url fields
	"url",
	"link",
	"href",
	"src",
	"resimurl",
	"imageurl",
	"logourl",
	"websiteurl",
	"siteurl",
	"apiurl",
	"baseurl",
	"endpoint",

	// password fields
	"password",
	"şifre",
	"sifre",
	"pwd",
	"parola",
	"currentpassword",
	"newpassword",
	"confirmpassword",
	"oldpassword",
	"mevcutsifre",
	"yenisifre",
	"sifretekrar",
	"eskisifre",

	// id and code fields
	"id",
	"guid",
	"uuid",
	"token",
	"accesstoken",
	"refreshtoken",
	"apikey",
	"secretkey",
	"hash",
	"md5",
	"sha1",
	"sha256",
	"barcode",
	"qrcode",
	"code",
	"verificationcode",
	"activationcode",
	"confirmationcode",
	"otp",
	"pin",

	// technical fields
	"json",
	"xml",
	"html",
	"css",
	"javascript",
	"sql",
	"regex",
	"pattern",
	"format",
	"contenttype",
	"mimetype",
	"encoding",
	"charset",
	"locale",
	"timezone",
	"timestamp",
	"datetime",
	"date",
	"time",
	"cron",
	"expression",

	// file fields
	"filename",
	"dosyaadi",
	"file",
	"dosya",
	"path",
	"filepath",
	"dosyayolu",
	"extension",
	"uzanti",
	"filesize",
	"dosyaboyutu",

	// build and environment fields
	"version",
	"versiyon",
	"build",
	"revision",
	"commit",
	"branch",
	"tag",
	"release",
	"environment",
	"env",
	"config",
	"setting",
	"ayar",
	"parameter",
	"param",
	"argument",
	"arg",

	// numeric and encoded fields
	"coordinate",
	"koordinat",
	"latitude",
	"longitude",
	"enlem",
	"boylam",
	"hex",
	"decimal",
	"binary",
	"octal",
	"base64",
	"encoded",
	"decoded",

	// naming and ui metadata fields
	"username",
	"kullaniciadi",
	"handle",
	"nickname",
	"alias",
	"slug",
	"permalink",
	"route",
	"breadcrumb",
	"navigation",
	"menu",
	"tab",
	"accordion",
	"carousel",
	"modal",
	"popup",
	"tooltip",
	"dropdown",
	"select",
	"option",
	"value",
	"key",
	"index",
	"order",
	"sort",
	"filter",
	"search",
	"query",
	"term",
	"keyword",
	"category",
	"class",
	"classname",
	"style",
	"theme",
	"template",
	"layout",
	"component",
	"widget",
	"plugin",
	"addon",
	"module",
	"package",
	"library",
	"framework",
	"api",
	"sdk",
	"cli",
	"gui",
	"ui",
	"ux",
}

// exclusionKeywords is the high-precision subset matched with a contains
// check. Real field names are often compound ("resimUrl", "musteriEmail"),
// which the exact list cannot enumerate.
//
// Known over-exclusion: a field literally named "identification" contains
// "id" and is therefore excluded. Kept as-is on purpose; the backend relies
// on this behaviour.
var exclusionKeywords = []string{
	"email", "eposta", "mail",
	"url", "link", "href",
	"password", "şifre", "sifre", "parola",
	"token", "key", "secret",
	"id", "guid", "uuid",
	"code", "hash", "md5", "sha",
}

var exclusionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Exclusions))
	for _, name := range Exclusions {
		set[name] = struct{}{}
	}
	return set
}()

// IsExcludedField reports whether a field by this name must be copied
// verbatim instead of being transformed.
func IsExcludedField(fieldName string) bool {
	if fieldName == "" {
		return false
	}
	lower := strings.ToLower(fieldName)
	if _, ok := exclusionSet[lower]; ok {
		return true
	}
	for _, keyword := range exclusionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
