package validators

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// plainText reverses the escaping bluemonday applies to text nodes. "&lt;"
// and "&gt;" are left alone so no markup can come back out.
var plainText = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`, "&#13;", "\r")

// SanitizeText strips all markup from free text such as a delivery address.
// Entities are decoded before the policy runs, so encoded tags are stripped
// like literal ones.
func SanitizeText(input string) string {
	cleaned := strictPolicy.Sanitize(html.UnescapeString(input))
	return strings.TrimSpace(plainText.Replace(cleaned))
}
