package dataflash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
)

const (
	magic1 = 0xA3
	magic2 = 0x95

	headerLen = 3 // two magic bytes plus message ID

	fmtMsgID      = 0x80
	fmtPayloadLen = 86 // Type, Length, Name[4], Format[16], Columns[64]

	// GPS epoch (1980-01-06) relative to the Unix epoch, and the current
	// GPS-UTC leap second count.
	gpsToUnixOffset = 315964800
	gpsLeapSeconds  = 18
	secondsPerWeek  = 604800
)

// ErrTruncatedLog is returned when the log ends before a single complete
// record could be decoded.
var ErrTruncatedLog = errors.New("truncated log: no complete records")

// fieldDef is one column of a message layout: its name and type code from the
// FMT format string.
type fieldDef struct {
	name string
	code byte
}

type msgDef struct {
	name   string
	length int // full frame length including the header
	fields []fieldDef
}

// WithLogger sets the logger used for skipped-frame warnings.
func WithLogger(logger *slog.Logger) func(*Decoder) {
	return func(d *Decoder) {
		d.logger = logger.With(slog.String("component", "dataflash"))
	}
}

// Decoder reads a complete DataFlash log and materializes all records in file
// order. Decoding is single-pass over an in-memory copy of the log; a second
// in-memory pass anchors timestamps.
//
// The decoder owns the definition of "timestamp": the first GPS record
// carrying a week number (GWk) and milliseconds-of-week (GMS) anchors the
// boot-relative TimeUS clock to absolute Unix time, and every record's
// Timestamp is the anchored TimeUS in seconds. Logs without such a GPS record
// keep boot-relative timestamps, which is reported via the logger.
type Decoder struct {
	logger *slog.Logger

	defs      map[byte]*msgDef
	malformed int
	unknown   int
}

// NewDecoder creates a Decoder with a discard logger.
func NewDecoder(options ...func(*Decoder)) *Decoder {
	d := Decoder{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		defs:   make(map[byte]*msgDef),
	}
	for _, option := range options {
		option(&d)
	}
	return &d
}

// Decode consumes the whole log from r and returns its records in file order.
// Malformed frames are skipped with a warning and never abort the run.
func (d *Decoder) Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	records := d.parse(data)
	if len(records) == 0 {
		return nil, ErrTruncatedLog
	}

	d.anchorTimestamps(records)

	if d.malformed > 0 || d.unknown > 0 {
		d.logger.Warn("skipped unreadable frames",
			slog.Int("malformed", d.malformed),
			slog.Int("unknownType", d.unknown))
	}
	return records, nil
}

func (d *Decoder) parse(data []byte) []Record {
	var records []Record

	i := 0
	for i+headerLen <= len(data) {
		if data[i] != magic1 || data[i+1] != magic2 {
			i++
			d.malformed++
			continue
		}

		msgID := data[i+2]
		if msgID == fmtMsgID {
			if i+headerLen+fmtPayloadLen > len(data) {
				break
			}
			d.parseFormat(data[i+headerLen : i+headerLen+fmtPayloadLen])
			i += headerLen + fmtPayloadLen
			continue
		}

		def, ok := d.defs[msgID]
		if !ok {
			// Unknown message before its FMT definition; resync on the
			// next magic sequence.
			i++
			d.unknown++
			continue
		}
		if i+def.length > len(data) {
			break
		}

		rec, ok := d.parseRecord(def, data[i+headerLen:i+def.length])
		if ok {
			records = append(records, rec)
		}
		i += def.length
	}

	return records
}

// parseFormat registers a message layout from a FMT payload.
func (d *Decoder) parseFormat(payload []byte) {
	msgID := payload[0]
	length := int(payload[1])
	name := cString(payload[2:6])
	format := cString(payload[6:22])

	if name == "" || length < headerLen {
		d.malformed++
		return
	}

	def := msgDef{
		name:   name,
		length: length,
	}

	columns := strings.Split(cString(payload[22:86]), ",")
	for i, code := range []byte(format) {
		if i >= len(columns) {
			break
		}
		def.fields = append(def.fields, fieldDef{
			name: strings.TrimSpace(columns[i]),
			code: code,
		})
	}

	d.defs[msgID] = &def
}

func (d *Decoder) parseRecord(def *msgDef, payload []byte) (Record, bool) {
	rec := Record{
		Type:   def.name,
		Fields: make(map[string]float64, len(def.fields)),
	}

	offset := 0
	for _, f := range def.fields {
		size := fieldSize(f.code)
		if size == 0 || offset+size > len(payload) {
			d.malformed++
			return Record{}, false
		}

		if value, numeric := decodeField(f.code, payload[offset:offset+size]); numeric {
			rec.Fields[f.name] = value
		}
		offset += size
	}

	return rec, true
}

// anchorTimestamps converts the boot-relative TimeUS clock to absolute Unix
// time using the first GPS record that carries week/millisecond-of-week
// fields. Records without TimeUS keep a zero timestamp.
func (d *Decoder) anchorTimestamps(records []Record) {
	var anchor float64
	var anchored bool

	for _, rec := range records {
		if rec.Type != "GPS" {
			continue
		}
		week, wOK := rec.Field("GWk")
		ms, msOK := rec.Field("GMS")
		timeUS, tOK := rec.Field("TimeUS")
		if !wOK || !msOK || !tOK || week <= 0 {
			continue
		}

		unix := week*secondsPerWeek + ms/1000.0 + gpsToUnixOffset - gpsLeapSeconds
		anchor = unix - timeUS/1e6
		anchored = true
		break
	}

	if !anchored {
		d.logger.Warn("no GPS time reference found, timestamps are boot-relative")
	}

	for i := range records {
		if timeUS, ok := records[i].Field("TimeUS"); ok {
			records[i].Timestamp = anchor + timeUS/1e6
		}
	}
}

func cString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// fieldSize returns the encoded size in bytes of a FMT type code, or zero for
// unknown codes.
func fieldSize(code byte) int {
	switch code {
	case 'b', 'B', 'M':
		return 1
	case 'h', 'H', 'c', 'C':
		return 2
	case 'i', 'I', 'f', 'e', 'E', 'L', 'n':
		return 4
	case 'd', 'q', 'Q':
		return 8
	case 'N':
		return 16
	case 'Z':
		return 64
	}
	return 0
}

// decodeField converts one encoded field to float64, applying the standard
// DataFlash scaling (centi-units for c/C/e/E, 1e-7 degrees for L). String
// codes are consumed but not carried: the second return is false.
func decodeField(code byte, b []byte) (float64, bool) {
	le := binary.LittleEndian
	switch code {
	case 'b':
		return float64(int8(b[0])), true
	case 'B', 'M':
		return float64(b[0]), true
	case 'h':
		return float64(int16(le.Uint16(b))), true
	case 'H':
		return float64(le.Uint16(b)), true
	case 'c':
		return float64(int16(le.Uint16(b))) * 0.01, true
	case 'C':
		return float64(le.Uint16(b)) * 0.01, true
	case 'i':
		return float64(int32(le.Uint32(b))), true
	case 'I':
		return float64(le.Uint32(b)), true
	case 'f':
		return float64(math.Float32frombits(le.Uint32(b))), true
	case 'e':
		return float64(int32(le.Uint32(b))) * 0.01, true
	case 'E':
		return float64(le.Uint32(b)) * 0.01, true
	case 'L':
		return float64(int32(le.Uint32(b))) * 1e-7, true
	case 'd':
		return math.Float64frombits(le.Uint64(b)), true
	case 'q':
		return float64(int64(le.Uint64(b))), true
	case 'Q':
		return float64(le.Uint64(b)), true
	}
	return 0, false
}
