package corkboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DoneResultCode is the result code the API uses to report a successful
// write with nothing to return.
const DoneResultCode = "done"

// resultReport is the {"result_code": "..."} shape shared by error reports
// and the done sentinel.
type resultReport struct {
	ResultCode *string `json:"result_code"`
}

// decodeResultReport reports whether body is a result report. Any JSON
// object with a string result_code qualifies; other keys are ignored.
func decodeResultReport(body []byte) (string, bool) {
	var report resultReport
	if err := json.Unmarshal(body, &report); err != nil {
		return "", false
	}
	if report.ResultCode == nil {
		return "", false
	}
	return *report.ResultCode, true
}

// classify turns a 2xx body into an outcome. The result-report shape is
// always tried first; the typed decode only runs when that fails. The two
// shapes have no discriminant, so the order is fixed.
func classify[T any](body []byte) (Outcome[T], error) {
	if code, ok := decodeResultReport(body); ok {
		if code == DoneResultCode {
			return Outcome[T]{Kind: OutcomeDone}, nil
		}
		return Outcome[T]{}, &ClientError{
			Type:       ErrorTypeUpstreamReport,
			Message:    fmt.Sprintf("upstream reported %q", code),
			ResultCode: code,
		}
	}

	var payload T
	if err := decodePayload(body, &payload); err != nil {
		return Outcome[T]{}, &ClientError{
			Type:    ErrorTypeDecode,
			Message: "failed to decode payload",
			Cause:   err,
		}
	}
	return Outcome[T]{Kind: OutcomePayload, Payload: payload}, nil
}

// decodePayload decodes JSON into out, matching snake_case keys to field
// names (or json tags) and parsing ISO-8601 timestamps into time.Time.
// Types implementing json.Unmarshaler decode themselves, and embedded
// structs are flattened the way encoding/json flattens them.
func decodePayload(body []byte, out interface{}) error {
	if raw, ok := out.(*json.RawMessage); ok {
		if !json.Valid(body) {
			return fmt.Errorf("invalid JSON")
		}
		*raw = append((*raw)[:0], body...)
		return nil
	}

	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level JSON value")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    out,
		TagName:   "json",
		MatchName: snakeCaseMatch,
		Squash:    true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(jsonUnmarshalerHook),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(generic)
}

var jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// jsonUnmarshalerHook hands values bound for a json.Unmarshaler back to
// its UnmarshalJSON method.
func jsonUnmarshalerHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from == to || !reflect.PointerTo(to).Implements(jsonUnmarshalerType) {
		return data, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(to)
	if err := ptr.Interface().(json.Unmarshaler).UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// snakeCaseMatch treats "update_time", "updateTime" and "UpdateTime" as
// the same name.
func snakeCaseMatch(mapKey, fieldName string) bool {
	return normalizeKey(mapKey) == normalizeKey(fieldName)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
