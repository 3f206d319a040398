package value

import "fmt"

// Converter turns a value of one kind into another kind.
type Converter func(Value) (Value, error)

type conversionKey struct {
	from, to Kind
}

// conversions is the complete conversion graph. Pairs are not chained.
var conversions = map[conversionKey]Converter{}

func init() {
	for _, k := range []Kind{KindText, KindHTML, KindCSS, KindJavaScript} {
		conversions[conversionKey{k, KindText}] = textToText
		conversions[conversionKey{k, KindBytes}] = textToBytes
	}
	conversions[conversionKey{KindBlob, KindText}] = blobToText
}

func textToText(v Value) (Value, error) {
	s, ok := TextContents(v)
	if !ok {
		return nil, fmt.Errorf("value: %s is not text", v.Kind())
	}
	return Text{Contents: s}, nil
}

func textToBytes(v Value) (Value, error) {
	s, ok := TextContents(v)
	if !ok {
		return nil, fmt.Errorf("value: %s is not text", v.Kind())
	}
	return Bytes{Data: []byte(s)}, nil
}

func blobToText(v Value) (Value, error) {
	b, ok := v.(*Blob)
	if !ok || b == nil {
		return nil, fmt.Errorf("value: %s is not a blob", v.Kind())
	}
	return Text{Contents: b.URL}, nil
}

// CanConvert reports whether a conversion from one kind to another exists.
func CanConvert(from, to Kind) bool {
	if from == to {
		return true
	}
	_, ok := conversions[conversionKey{from, to}]
	return ok
}

// Into converts v to the target kind. A value already of that kind is
// returned as is. The boolean is false when no conversion exists.
func Into(v Value, target Kind) (Value, bool) {
	if v == nil {
		return nil, false
	}
	if v.Kind() == target {
		return v, true
	}
	conv, ok := conversions[conversionKey{v.Kind(), target}]
	if !ok {
		return nil, false
	}
	out, err := conv(v)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Markdown returns the lossy textual representation used when assembling
// the final post.
func Markdown(v Value) (string, bool) {
	t, ok := Into(v, KindText)
	if !ok {
		return "", false
	}
	return t.(Text).Contents, true
}
