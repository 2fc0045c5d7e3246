package translator

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// dataImageURI matches base64 data URIs with an image MIME subtype.
var dataImageURI = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,(.+)$`)

// ExtractedContent is a message's content split into text and inline images.
type ExtractedContent struct {
	Text   string
	Images []Blob
}

// ExtractContent splits message content into plain text and decoded inline
// images. String content passes through untouched. Array content
// concatenates text parts in order and decodes image_url parts that carry a
// base64 image data URI; anything else is skipped rather than rejected, so a
// malformed image never fails the request.
func ExtractContent(raw json.RawMessage) ExtractedContent {
	if len(raw) == 0 {
		return ExtractedContent{}
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.Type == gjson.String {
		return ExtractedContent{Text: parsed.String()}
	}
	if !parsed.IsArray() {
		return ExtractedContent{}
	}

	var text strings.Builder
	var images []Blob
	for _, part := range parsed.Array() {
		switch part.Get("type").String() {
		case "text":
			text.WriteString(part.Get("text").String())
		case "image_url":
			if img, ok := decodeImageURI(part.Get("image_url.url").String()); ok {
				images = append(images, img)
			}
		}
	}
	return ExtractedContent{Text: text.String(), Images: images}
}

// decodeImageURI parses a data:image/<fmt>;base64,<data> URI. Both the
// format and the payload must be present or the image is dropped.
func decodeImageURI(uri string) (Blob, bool) {
	m := dataImageURI.FindStringSubmatch(uri)
	if m == nil {
		return Blob{}, false
	}
	return Blob{MimeType: m[1], Data: m[2]}, true
}
