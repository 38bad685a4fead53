package transcode

import "strings"

// Format is the client-visible wire format
type Format int

const (
	FormatJSON Format = iota
	FormatXML
)

func (f Format) String() string {
	if f == FormatXML {
		return "xml"
	}
	return "json"
}

// ContentType returns the response Content-Type header value
func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Negotiate picks the output format from the client's Accept header.
// Any XML media type opts into XML; everything else, including an absent
// header, defaults to JSON.
func Negotiate(accept string) Format {
	accept = strings.ToLower(accept)
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if mediaType == "application/xml" || mediaType == "text/xml" || strings.HasSuffix(mediaType, "+xml") {
			return FormatXML
		}
	}
	return FormatJSON
}
