// Enumeration-like type for content mimetypes.
package mimetype

import (
	"strings"
)

/*
MimeType is used to enumerate the default representation for content encoding types.
Non default MimeTypes can be used by wrapping a custom string:

	MimeType("text/csv")
*/
type MimeType string

const (
	// SMILE is the canonical registered mimetype for smile binary content.
	SMILE = MimeType("application/x-jackson-smile")
	JSON  = MimeType("application/json")
	BSON  = MimeType("application/bson")
	YAML  = MimeType("application/yaml")
	TEXT  = MimeType("text/plain")
	// UNKNOWN is used when the incoming string is blank. It doubles as the
	// wildcard mimetype for registry bindings that apply to any media type.
	UNKNOWN = MimeType("")
)

// List of default mimeTypes that are encoded to / from objects (as opposed to raw
// text).
var objectMimeTypes = []MimeType{JSON, BSON, YAML}

// Interface for object used to set headers such as http.Request.Header or
// http.Response.Header
type headerFetcher interface {
	Get(string) string
}

// Extract content type from a message / request header.
func FromHeader(headers headerFetcher) MimeType {
	return FromString(headers.Get("Content-Type"))
}

/*
Convert MimeType from a string. Ignores case. If the MimeType is a default type,
multiple formats are respected. For instance, all of the following will yield
"mimetype.JSON":

• "application/json"``

• "application/JSON"

• "application/x-json"

• "json"

• "x-json"

Smile content follows the same rules, with one addition: any subtype ending in
"+smile" (a vendor type layered over the smile wire format) also yields
"mimetype.SMILE".
*/
func FromString(incoming string) MimeType {
	incoming = strings.ToLower(incoming)

	if incoming == "" {
		return UNKNOWN
	}
	if incoming == "text/plain" || incoming == "text" {
		return TEXT
	}
	if IsSmile(MimeType(incoming)) {
		return SMILE
	}

	for _, mimeType := range objectMimeTypes {
		mimeTypeLower := strings.ToLower(string(mimeType))
		mimeTypeLower = strings.Split(mimeTypeLower, "/")[1]
		if strings.HasSuffix(incoming, mimeTypeLower) {
			return mimeType
		}
	}

	return MimeType(incoming)
}

// Subtype returns the portion of the mimetype after the last "/". When no major
// type is present ("smile", "x-bson"), the whole value is the subtype.
func (mimeType MimeType) Subtype() string {
	value := string(mimeType)
	if index := strings.LastIndex(value, "/"); index >= 0 {
		value = value[index+1:]
	}
	return value
}

/*
IsSmile reports whether mimeType declares smile binary content. A mimetype is
considered smile content when its subtype:

• equals the registered subtype "x-jackson-smile", OR

• equals the short form "smile", OR

• ends with "+smile".

All comparisons ignore case. UNKNOWN (no declared type) is never smile content —
the decision is deferred to the caller.
*/
func IsSmile(mimeType MimeType) bool {
	if mimeType == UNKNOWN {
		return false
	}

	subtype := strings.ToLower(mimeType.Subtype())

	return subtype == SMILE.Subtype() ||
		subtype == "smile" ||
		strings.HasSuffix(subtype, "+smile")
}
