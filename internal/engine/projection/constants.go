// # internal/engine/projection/constants.go
package projection

import (
	"strconv"
	"strings"

	"hlsense/internal/engine/model"
)

var cSuffixes = map[string]model.FundamentalKind{
	"cc":   model.CChar,
	"cs":   model.CShort,
	"ci":   model.CInt,
	"cl":   model.CLong,
	"cll":  model.CLonglong,
	"cuc":  model.CUchar,
	"cus":  model.CUshort,
	"cui":  model.CUint,
	"cul":  model.CUlong,
	"cull": model.CUlonglong,
	"cb":   model.CBool,
}

// ConstantType types a literal token. It returns the type and the literal
// data with its suffix and quotes removed.
func ConstantType(token string) (model.TypeReference, string, bool) {
	switch {
	case token == "true" || token == "false":
		return model.NewBool(), token, true

	case strings.HasPrefix(token, `"`):
		if strings.HasSuffix(token, `"c`) && len(token) >= 3 {
			return model.NewPointer([]model.TypeReference{model.NewFundamental(model.CChar)}, false), token[1 : len(token)-2], true
		}
		if strings.HasSuffix(token, `"`) && len(token) >= 2 {
			return model.NewFundamental(model.String), token[1 : len(token)-1], true
		}
		return nil, "", false
	}

	value, suffix := splitNumberSuffix(token)
	if value == "" {
		return nil, "", false
	}
	if suffix == "" {
		return model.NewInteger(32, true), value, true
	}

	switch suffix[0] {
	case 'i', 'u':
		bits, err := strconv.Atoi(suffix[1:])
		if err != nil {
			return nil, "", false
		}
		return model.NewInteger(bits, suffix[0] == 'i'), value, true
	case 'f':
		switch suffix {
		case "f16":
			return model.NewFundamental(model.Float16), value, true
		case "f32":
			return model.NewFundamental(model.Float32), value, true
		case "f64":
			return model.NewFundamental(model.Float64), value, true
		}
	case 'c':
		if kind, ok := cSuffixes[suffix]; ok {
			return model.NewFundamental(kind), value, true
		}
	}
	return nil, "", false
}

// splitNumberSuffix separates the digits of a number literal from its type
// suffix. Hexadecimal digits are not treated as a suffix.
func splitNumberSuffix(token string) (string, string) {
	digits := strings.TrimPrefix(token, "-")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return "", ""
	}
	isHex := strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X")
	for i := 0; i < len(token); i++ {
		c := token[i]
		isDigit := (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '_'
		if isHex {
			isDigit = isDigit || c == 'x' || c == 'X' || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		}
		if !isDigit {
			return token[:i], token[i:]
		}
	}
	return token, ""
}

// ConstantToken renders a constant back to its source token.
func ConstantToken(t model.TypeReference, data string) string {
	switch v := t.(type) {
	case model.FundamentalType:
		switch v.Kind {
		case model.Bool:
			return data
		case model.String:
			return `"` + data + `"`
		case model.Float16:
			return data + "f16"
		case model.Float32:
			return data + "f32"
		case model.Float64:
			return data + "f64"
		}
		for suffix, kind := range cSuffixes {
			if kind == v.Kind {
				return data + suffix
			}
		}
	case model.IntegerType:
		if v.NumberOfBits == 32 && v.IsSigned {
			return data
		}
		prefix := "u"
		if v.IsSigned {
			prefix = "i"
		}
		return data + prefix + strconv.Itoa(v.NumberOfBits)
	case model.PointerType:
		return `"` + data + `"c`
	}
	return data
}
