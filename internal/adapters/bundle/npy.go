package bundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/retargetlab/mocap/internal/domain/model"
)

// NPY format constants (format version 1.0).
const (
	npyMagic          = "\x93NUMPY"
	npyVersionMajor   = 1
	npyVersionMinor   = 0
	npyHeaderAlign    = 64
	npyFloat64        = "<f8"
	npyFloat32        = "<f4"
	npyInt64          = "<i8"
	npyInt32          = "<i4"
	npyUint8          = "|u1"
	npyBytesPrefix    = "|S"
	npyUnicodePrefix  = "<U"
	npyUnicodeItemLen = 4 // UTF-32LE code unit size
)

// ReadArray decodes a single .npy file into a bundle value.
func ReadArray(path string) (Value, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Value{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Value{}, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := decodeNPY(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return v, nil
}

// WriteArray encodes a single value as a .npy file.
func WriteArray(path string, v Value, allowOverwrite bool) error {
	if !allowOverwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	data, err := encodeNPY(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}

// decodeNPY parses the NPY magic, header dict and payload.
func decodeNPY(raw []byte) (Value, error) {
	if len(raw) < len(npyMagic)+4 || !bytes.HasPrefix(raw, []byte(npyMagic)) {
		return Value{}, fmt.Errorf("missing NPY magic")
	}
	major := raw[6]
	rest := raw[8:]

	var headerLen int
	switch major {
	case 1:
		if len(rest) < 2 {
			return Value{}, fmt.Errorf("truncated header length")
		}
		headerLen = int(binary.LittleEndian.Uint16(rest[:2]))
		rest = rest[2:]
	case 2, 3:
		if len(rest) < 4 {
			return Value{}, fmt.Errorf("truncated header length")
		}
		headerLen = int(binary.LittleEndian.Uint32(rest[:4]))
		rest = rest[4:]
	default:
		return Value{}, fmt.Errorf("unsupported NPY version %d", major)
	}
	if len(rest) < headerLen {
		return Value{}, fmt.Errorf("truncated header: want %d bytes, have %d", headerLen, len(rest))
	}

	descr, fortran, shape, err := parseHeader(string(rest[:headerLen]))
	if err != nil {
		return Value{}, err
	}
	if fortran {
		return Value{}, fmt.Errorf("fortran-ordered arrays are not supported")
	}
	payload := rest[headerLen:]

	count := 1
	for _, d := range shape {
		if d > 0 && count > math.MaxInt/d {
			return Value{}, fmt.Errorf("shape %v overflows the element count", shape)
		}
		count *= d
	}

	switch {
	case strings.HasPrefix(descr, npyBytesPrefix):
		if count != 1 {
			return Value{}, fmt.Errorf("string dtype %q with non-scalar shape %v", descr, shape)
		}
		return decodeBytesString(descr, payload)
	case strings.HasPrefix(descr, npyUnicodePrefix):
		if count != 1 {
			return Value{}, fmt.Errorf("string dtype %q with non-scalar shape %v", descr, shape)
		}
		return decodeUnicodeString(descr, payload)
	default:
		data, err := decodeNumeric(descr, payload, count)
		if err != nil {
			return Value{}, err
		}
		arr, err := model.NewArray(shape, data)
		if err != nil {
			return Value{}, err
		}
		return ArrayValue(arr), nil
	}
}

func decodeNumeric(descr string, payload []byte, count int) ([]float64, error) {
	itemSize := map[string]int{npyFloat64: 8, npyFloat32: 4, npyInt64: 8, npyInt32: 4, npyUint8: 1, "<u1": 1}[descr]
	if itemSize == 0 {
		return nil, fmt.Errorf("unsupported dtype %q", descr)
	}
	// Division keeps the bound safe when count*itemSize would overflow.
	if count > len(payload)/itemSize {
		return nil, fmt.Errorf("payload too short for dtype %q: want %d items of %d bytes, have %d bytes",
			descr, count, itemSize, len(payload))
	}
	data := make([]float64, count)
	for i := 0; i < count; i++ {
		off := i * itemSize
		switch descr {
		case npyFloat64:
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		case npyFloat32:
			data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[off:])))
		case npyInt64:
			data[i] = float64(int64(binary.LittleEndian.Uint64(payload[off:])))
		case npyInt32:
			data[i] = float64(int32(binary.LittleEndian.Uint32(payload[off:])))
		default: // |u1, <u1
			data[i] = float64(payload[off])
		}
	}
	return data, nil
}

// decodeBytesString handles 0-d |S arrays, e.g. a gender tag.
func decodeBytesString(descr string, payload []byte) (Value, error) {
	n, err := strconv.Atoi(descr[len(npyBytesPrefix):])
	if err != nil || n < 0 {
		return Value{}, fmt.Errorf("bad string dtype %q", descr)
	}
	if len(payload) < n {
		return Value{}, fmt.Errorf("payload too short for dtype %q", descr)
	}
	return StringValue(string(bytes.TrimRight(payload[:n], "\x00"))), nil
}

// decodeUnicodeString handles 0-d <U arrays (UTF-32LE), numpy's default for
// np.array("neutral").
func decodeUnicodeString(descr string, payload []byte) (Value, error) {
	n, err := strconv.Atoi(descr[len(npyUnicodePrefix):])
	if err != nil || n < 0 {
		return Value{}, fmt.Errorf("bad string dtype %q", descr)
	}
	if len(payload) < n*npyUnicodeItemLen {
		return Value{}, fmt.Errorf("payload too short for dtype %q", descr)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		r := rune(binary.LittleEndian.Uint32(payload[i*npyUnicodeItemLen:]))
		if r == 0 {
			break
		}
		if !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		sb.WriteRune(r)
	}
	return StringValue(sb.String()), nil
}

// parseHeader pulls descr, fortran_order and shape out of the Python dict
// literal in the NPY header.
func parseHeader(header string) (descr string, fortran bool, shape []int, err error) {
	descr, err = headerString(header, "'descr':")
	if err != nil {
		return "", false, nil, err
	}

	fortranField, err := headerField(header, "'fortran_order':")
	if err != nil {
		return "", false, nil, err
	}
	fortran = strings.HasPrefix(fortranField, "True")

	shapeField, err := headerField(header, "'shape':")
	if err != nil {
		return "", false, nil, err
	}
	shape, err = parseShapeTuple(shapeField)
	if err != nil {
		return "", false, nil, err
	}
	return descr, fortran, shape, nil
}

func headerField(header, key string) (string, error) {
	idx := strings.Index(header, key)
	if idx < 0 {
		return "", fmt.Errorf("header is missing %s", key)
	}
	return strings.TrimLeft(header[idx+len(key):], " "), nil
}

func headerString(header, key string) (string, error) {
	rest, err := headerField(header, key)
	if err != nil {
		return "", err
	}
	if len(rest) == 0 || rest[0] != '\'' {
		return "", fmt.Errorf("malformed value for %s", key)
	}
	end := strings.IndexByte(rest[1:], '\'')
	if end < 0 {
		return "", fmt.Errorf("unterminated value for %s", key)
	}
	return rest[1 : 1+end], nil
}

func parseShapeTuple(field string) ([]int, error) {
	open := strings.IndexByte(field, '(')
	closing := strings.IndexByte(field, ')')
	if open != 0 || closing < 0 {
		return nil, fmt.Errorf("malformed shape tuple in %q", field)
	}
	inner := strings.TrimSpace(field[1:closing])
	if inner == "" {
		return []int{}, nil
	}
	parts := strings.Split(inner, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue // trailing comma of a 1-tuple
		}
		d, err := strconv.Atoi(p)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("bad shape dimension %q", p)
		}
		shape = append(shape, d)
	}
	return shape, nil
}

// encodeNPY serializes a value as NPY v1.0. Numeric arrays are written as
// little-endian float64; strings as fixed-width bytes.
func encodeNPY(v Value) ([]byte, error) {
	var descr string
	var payload []byte

	if v.IsString() {
		descr = fmt.Sprintf("%s%d", npyBytesPrefix, len(v.Str))
		payload = []byte(v.Str)
	} else {
		descr = npyFloat64
		payload = make([]byte, v.Array.Len()*8)
		for i, f := range v.Array.Data() {
			binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(f))
		}
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeTuple(v))
	// Pad with spaces so magic+version+length+header is 64-byte aligned,
	// terminated by a newline.
	preamble := len(npyMagic) + 2 + 2
	total := preamble + len(header) + 1
	if pad := npyHeaderAlign - total%npyHeaderAlign; pad != npyHeaderAlign {
		header += strings.Repeat(" ", pad)
	}
	header += "\n"

	buf := bytes.NewBuffer(make([]byte, 0, preamble+len(header)+len(payload)))
	buf.WriteString(npyMagic)
	buf.WriteByte(npyVersionMajor)
	buf.WriteByte(npyVersionMinor)
	var lenBytes [2]byte
	binary.LittleEndian.PutUint16(lenBytes[:], uint16(len(header)))
	buf.Write(lenBytes[:])
	buf.WriteString(header)
	buf.Write(payload)
	return buf.Bytes(), nil
}

func shapeTuple(v Value) string {
	if v.IsString() {
		return "()"
	}
	shape := v.Array.Shape()
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	default:
		parts := make([]string, len(shape))
		for i, d := range shape {
			parts[i] = strconv.Itoa(d)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
}
