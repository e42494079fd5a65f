// Package validation checks inbound payloads against JSON schemas before they
// reach storage.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"careers-backend/internal/common/errors"
)

// CheckBytes validates a raw JSON document against a schema document. It
// returns a VALIDATION_FAILED error listing every violated constraint, or nil.
func CheckBytes(schema string, payload []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("malformed JSON body: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(msgs)
	return errors.NewValidationError(strings.Join(msgs, "; "))
}

// Check validates an already-decoded document.
func Check(schema string, payload interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(msgs)
	return errors.NewValidationError(strings.Join(msgs, "; "))
}
