package dice

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"google.golang.org/protobuf/types/known/structpb"
)

func encodeRollRequest(req wire.RollRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"expression": structpb.NewStringValue(req.Expression),
	}
	if req.Mode != "" {
		fields["mode"] = structpb.NewStringValue(req.Mode)
	}
	return &structpb.Struct{Fields: fields}
}

func decodeRollRequest(in *structpb.Struct) (wire.RollRequest, error) {
	r := newStructReader(in)
	req := wire.RollRequest{
		Expression: r.optionalString("expression"),
		Mode:       r.optionalString("mode"),
	}
	return req, r.err
}

func encodeParseRequest(req wire.ParseRequest) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"expression": structpb.NewStringValue(req.Expression),
	}}
}

func decodeParseRequest(in *structpb.Struct) (wire.ParseRequest, error) {
	r := newStructReader(in)
	req := wire.ParseRequest{Expression: r.optionalString("expression")}
	return req, r.err
}

func encodeRecord(record wire.RollRecord) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":         structpb.NewStringValue(record.ID),
		"expression": structpb.NewStringValue(record.Expression),
		"results":    encodeResults(record.Results),
		"modifiers":  int64ListValue(record.Modifiers),
		"total":      int64Value(record.Total),
		"mode":       structpb.NewStringValue(record.Mode),
		"timestamp":  timeValue(record.Timestamp),
	}
	if alt := record.Alternate; alt != nil {
		fields["alternate"] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"expression": structpb.NewStringValue(alt.Expression),
			"results":    encodeResults(alt.Results),
			"modifiers":  int64ListValue(alt.Modifiers),
			"total":      int64Value(alt.Total),
			"mode":       structpb.NewStringValue(alt.Mode),
			"timestamp":  timeValue(alt.Timestamp),
		}})
	}
	return &structpb.Struct{Fields: fields}
}

func decodeRecord(in *structpb.Struct) (wire.RollRecord, error) {
	r := newStructReader(in)
	record := wire.RollRecord{
		ID:         r.requiredString("id"),
		Expression: r.requiredString("expression"),
		Results:    decodeResults(r, "results"),
		Modifiers:  r.integers64("modifiers"),
		Total:      r.integer64("total"),
		Mode:       r.requiredString("mode"),
		Timestamp:  r.timestamp("timestamp"),
	}
	if altStruct := r.optionalStruct("alternate"); altStruct != nil {
		ar := newStructReader(altStruct)
		record.Alternate = &wire.Alternate{
			Expression: ar.requiredString("expression"),
			Results:    decodeResults(ar, "results"),
			Modifiers:  ar.integers64("modifiers"),
			Total:      ar.integer64("total"),
			Mode:       ar.requiredString("mode"),
			Timestamp:  ar.timestamp("timestamp"),
		}
		if ar.err != nil && r.err == nil {
			r.err = fmt.Errorf("alternate: %w", ar.err)
		}
	}
	return record, r.err
}

func encodeParseResult(result wire.ParseResult) *structpb.Struct {
	groups := make([]*structpb.Value, 0, len(result.DiceGroups))
	for _, group := range result.DiceGroups {
		groups = append(groups, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"count":    structpb.NewNumberValue(float64(group.Count)),
			"sides":    structpb.NewNumberValue(float64(group.Sides)),
			"notation": structpb.NewStringValue(group.Notation),
		}}))
	}
	errs := make([]*structpb.Value, 0, len(result.Errors))
	for _, fieldErr := range result.Errors {
		errs = append(errs, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"field":   structpb.NewStringValue(fieldErr.Field),
			"message": structpb.NewStringValue(fieldErr.Message),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"original":    structpb.NewStringValue(result.Original),
		"dice_groups": structpb.NewListValue(&structpb.ListValue{Values: groups}),
		"modifiers":   int64ListValue(result.Modifiers),
		"valid":       structpb.NewBoolValue(result.Valid),
		"errors":      structpb.NewListValue(&structpb.ListValue{Values: errs}),
	}}
}

func decodeParseResult(in *structpb.Struct) (wire.ParseResult, error) {
	r := newStructReader(in)
	result := wire.ParseResult{
		Original:  r.requiredString("original"),
		Modifiers: r.integers64("modifiers"),
		Valid:     r.boolean("valid"),
	}
	for i, item := range r.list("dice_groups") {
		gr := newStructReader(item.GetStructValue())
		result.DiceGroups = append(result.DiceGroups, wire.DiceGroup{
			Count:    gr.integer("count"),
			Sides:    gr.integer("sides"),
			Notation: gr.requiredString("notation"),
		})
		r.adopt(fmt.Sprintf("dice_groups[%d]", i), gr.err)
	}
	for i, item := range r.list("errors") {
		er := newStructReader(item.GetStructValue())
		result.Errors = append(result.Errors, wire.FieldError{
			Field:   er.requiredString("field"),
			Message: er.requiredString("message"),
		})
		r.adopt(fmt.Sprintf("errors[%d]", i), er.err)
	}
	return result, r.err
}

func encodeResults(results []wire.RollResult) *structpb.Value {
	values := make([]*structpb.Value, 0, len(results))
	for _, result := range results {
		rolls := make([]*structpb.Value, 0, len(result.Rolls))
		for _, roll := range result.Rolls {
			rolls = append(rolls, structpb.NewNumberValue(float64(roll)))
		}
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"notation": structpb.NewStringValue(result.Notation),
			"rolls":    structpb.NewListValue(&structpb.ListValue{Values: rolls}),
			"subtotal": int64Value(result.Subtotal),
		}}))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func decodeResults(r *structReader, key string) []wire.RollResult {
	items := r.list(key)
	results := make([]wire.RollResult, 0, len(items))
	for i, item := range items {
		rr := newStructReader(item.GetStructValue())
		results = append(results, wire.RollResult{
			Notation: rr.requiredString("notation"),
			Rolls:    rr.integers("rolls"),
			Subtotal: rr.integer64("subtotal"),
		})
		r.adopt(fmt.Sprintf("%s[%d]", key, i), rr.err)
	}
	return results
}

func int64Value(v int64) *structpb.Value {
	return structpb.NewStringValue(strconv.FormatInt(v, 10))
}

func int64ListValue(values []int64) *structpb.Value {
	items := make([]*structpb.Value, 0, len(values))
	for _, v := range values {
		items = append(items, int64Value(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

func timeValue(t time.Time) *structpb.Value {
	return structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}

// structReader decodes fields from a Struct, keeping the first error.
type structReader struct {
	fields map[string]*structpb.Value
	err    error
}

func newStructReader(in *structpb.Struct) *structReader {
	r := &structReader{fields: in.GetFields()}
	if in == nil {
		r.err = fmt.Errorf("message is required")
	}
	return r
}

func (r *structReader) fail(key, format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("field %q: %s", key, fmt.Sprintf(format, args...))
	}
}

func (r *structReader) adopt(prefix string, err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", prefix, err)
	}
}

func (r *structReader) present(key string) (*structpb.Value, bool) {
	value, ok := r.fields[key]
	if !ok || value == nil {
		return nil, false
	}
	if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return value, true
}

func (r *structReader) requiredString(key string) string {
	value, ok := r.present(key)
	if !ok {
		r.fail(key, "is required")
		return ""
	}
	s, isString := value.GetKind().(*structpb.Value_StringValue)
	if !isString {
		r.fail(key, "must be a string")
		return ""
	}
	return s.StringValue
}

func (r *structReader) optionalString(key string) string {
	if _, ok := r.present(key); !ok {
		return ""
	}
	return r.requiredString(key)
}

func (r *structReader) boolean(key string) bool {
	value, ok := r.present(key)
	if !ok {
		r.fail(key, "is required")
		return false
	}
	b, isBool := value.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		r.fail(key, "must be a boolean")
		return false
	}
	return b.BoolValue
}

func (r *structReader) integer(key string) int {
	value, ok := r.present(key)
	if !ok {
		r.fail(key, "is required")
		return 0
	}
	n, err := intFromValue(value)
	if err != nil {
		r.fail(key, "%v", err)
	}
	return n
}

func (r *structReader) integer64(key string) int64 {
	value, ok := r.present(key)
	if !ok {
		r.fail(key, "is required")
		return 0
	}
	n, err := int64FromValue(value)
	if err != nil {
		r.fail(key, "%v", err)
	}
	return n
}

func (r *structReader) timestamp(key string) time.Time {
	raw := r.requiredString(key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		r.fail(key, "%v", err)
	}
	return t
}

func (r *structReader) list(key string) []*structpb.Value {
	value, ok := r.present(key)
	if !ok {
		return nil
	}
	list, isList := value.GetKind().(*structpb.Value_ListValue)
	if !isList {
		r.fail(key, "must be a list")
		return nil
	}
	return list.ListValue.GetValues()
}

func (r *structReader) integers(key string) []int {
	items := r.list(key)
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, err := intFromValue(item)
		if err != nil {
			r.fail(key, "item %d: %v", i, err)
			return out
		}
		out = append(out, n)
	}
	return out
}

func (r *structReader) integers64(key string) []int64 {
	items := r.list(key)
	out := make([]int64, 0, len(items))
	for i, item := range items {
		n, err := int64FromValue(item)
		if err != nil {
			r.fail(key, "item %d: %v", i, err)
			return out
		}
		out = append(out, n)
	}
	return out
}

func (r *structReader) optionalStruct(key string) *structpb.Struct {
	value, ok := r.present(key)
	if !ok {
		return nil
	}
	s, isStruct := value.GetKind().(*structpb.Value_StructValue)
	if !isStruct {
		r.fail(key, "must be an object")
		return nil
	}
	return s.StructValue
}

func intFromValue(value *structpb.Value) (int, error) {
	n, isNumber := value.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, fmt.Errorf("must be a number")
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("must be a 32-bit integer")
	}
	return int(f), nil
}

// int64FromValue accepts a decimal string or an exactly representable number.
func int64FromValue(value *structpb.Value) (int64, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("must be a 64-bit integer")
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, fmt.Errorf("must be an exact integer")
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}
